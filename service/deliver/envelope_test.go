// Copyright 2021 Optakt Labs OÜ
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

package deliver_test

import (
	"encoding/hex"
	"math"
	"testing"

	"github.com/hyperledger/fabric-protos-go-apiv2/common"
	"github.com/hyperledger/fabric-protos-go-apiv2/orderer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"

	"github.com/optakt/block-edge/service/deliver"
	"github.com/optakt/block-edge/testing/mocks"
)

func TestSeekEnvelope(t *testing.T) {

	t.Run("nominal case", func(t *testing.T) {
		t.Parallel()

		var signed []byte
		signer := mocks.BaselineSigner(t)
		signer.SignFunc = func(message []byte) ([]byte, error) {
			signed = message
			return mocks.GenericSignature, nil
		}

		envelope, err := deliver.SeekEnvelope(signer, mocks.GenericChannel)

		require.NoError(t, err)
		assert.Equal(t, mocks.GenericSignature, envelope.Signature)
		assert.Equal(t, envelope.Payload, signed)

		var payload common.Payload
		require.NoError(t, proto.Unmarshal(envelope.Payload, &payload))

		var header common.ChannelHeader
		require.NoError(t, proto.Unmarshal(payload.Header.ChannelHeader, &header))
		assert.Equal(t, int32(common.HeaderType_DELIVER_SEEK_INFO), header.Type)
		assert.Equal(t, mocks.GenericChannel, header.ChannelId)
		assert.NotNil(t, header.Timestamp)
		id, err := hex.DecodeString(header.TxId)
		require.NoError(t, err)
		assert.Len(t, id, 32)

		var signature common.SignatureHeader
		require.NoError(t, proto.Unmarshal(payload.Header.SignatureHeader, &signature))
		assert.Equal(t, mocks.GenericIdentity, signature.Creator)
		assert.Len(t, signature.Nonce, 24)

		var seek orderer.SeekInfo
		require.NoError(t, proto.Unmarshal(payload.Data, &seek))
		assert.NotNil(t, seek.Start.GetNewest())
		assert.Equal(t, uint64(math.MaxUint64), seek.Stop.GetSpecified().GetNumber())
		assert.Equal(t, orderer.SeekInfo_BLOCK_UNTIL_READY, seek.Behavior)
	})

	t.Run("uses fresh nonce per request", func(t *testing.T) {
		t.Parallel()

		signer := mocks.BaselineSigner(t)

		first, err := deliver.SeekEnvelope(signer, mocks.GenericChannel)
		require.NoError(t, err)
		second, err := deliver.SeekEnvelope(signer, mocks.GenericChannel)
		require.NoError(t, err)

		assert.NotEqual(t, first.Payload, second.Payload)
	})

	t.Run("handles serialization failure", func(t *testing.T) {
		t.Parallel()

		signer := mocks.BaselineSigner(t)
		signer.SerializeFunc = func() ([]byte, error) {
			return nil, mocks.GenericError
		}

		_, err := deliver.SeekEnvelope(signer, mocks.GenericChannel)

		assert.ErrorIs(t, err, mocks.GenericError)
	})

	t.Run("handles signing failure", func(t *testing.T) {
		t.Parallel()

		signer := mocks.BaselineSigner(t)
		signer.SignFunc = func([]byte) ([]byte, error) {
			return nil, mocks.GenericError
		}

		_, err := deliver.SeekEnvelope(signer, mocks.GenericChannel)

		assert.ErrorIs(t, err, mocks.GenericError)
	})
}
