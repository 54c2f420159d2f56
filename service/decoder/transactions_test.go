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

package decoder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optakt/block-edge/models/edge"
	"github.com/optakt/block-edge/service/decoder"
	"github.com/optakt/block-edge/testing/mocks"
)

func collect(t *testing.T, transactions *decoder.Transactions) []*edge.Transaction {
	t.Helper()

	var decoded []*edge.Transaction
	for {
		transaction, err := transactions.Next()
		if err != nil {
			require.ErrorIs(t, err, edge.ErrFinished)
			return decoded
		}
		decoded = append(decoded, transaction)
	}
}

func TestDecode(t *testing.T) {

	t.Run("nominal case", func(t *testing.T) {
		t.Parallel()

		raw := [][]byte{
			mocks.GenericEnvelope(mocks.GenericChannel, mocks.GenericTxID(0), mocks.GenericArguments),
			mocks.GenericEnvelope(mocks.GenericChannel, mocks.GenericTxID(1), mocks.GenericArguments),
			mocks.GenericEnvelope(mocks.GenericChannel, mocks.GenericTxID(2), mocks.GenericArguments),
		}

		transactions := decoder.Decode(mocks.NoopLogger, raw, mocks.GenericChannel)
		got := collect(t, transactions)

		require.Len(t, got, 3)
		for i, transaction := range got {
			assert.Equal(t, mocks.GenericTxID(i), transaction.TxID)
			assert.Equal(t, mocks.GenericChannel, transaction.ChannelID)
			require.Len(t, transaction.Actions, 1)
			assert.Equal(t, mocks.GenericChaincode, transaction.Actions[0].Chaincode)

			arguments := transaction.Actions[0].Invocation.Arguments
			require.Len(t, arguments, len(mocks.GenericArguments))
			for j, argument := range arguments {
				assert.Equal(t, mocks.GenericArguments[j], argument.Buffer)
				assert.Equal(t, 0, argument.Offset)
				assert.Equal(t, len(mocks.GenericArguments[j]), argument.Limit)
			}
		}

		decoded, skipped := transactions.Stats()
		assert.Equal(t, uint(3), decoded)
		assert.Zero(t, skipped)
	})

	t.Run("skips transactions from other channels", func(t *testing.T) {
		t.Parallel()

		raw := [][]byte{
			mocks.GenericEnvelope(mocks.GenericChannel, mocks.GenericTxID(0), mocks.GenericArguments),
			mocks.GenericEnvelope("otherchannel", mocks.GenericTxID(1), mocks.GenericArguments),
			mocks.GenericEnvelope(mocks.GenericChannel, mocks.GenericTxID(2), mocks.GenericArguments),
			mocks.GenericEnvelope("otherchannel", mocks.GenericTxID(3), mocks.GenericArguments),
		}

		transactions := decoder.Decode(mocks.NoopLogger, raw, mocks.GenericChannel)
		got := collect(t, transactions)

		require.Len(t, got, 2)
		assert.Equal(t, mocks.GenericTxID(0), got[0].TxID)
		assert.Equal(t, mocks.GenericTxID(2), got[1].TxID)

		decoded, skipped := transactions.Stats()
		assert.Equal(t, uint(2), decoded)
		assert.Equal(t, uint(2), skipped)
	})

	t.Run("skips undecodable envelopes without aborting", func(t *testing.T) {
		t.Parallel()

		raw := [][]byte{
			{0xff, 0xff, 0xff},
			mocks.GenericEnvelope(mocks.GenericChannel, mocks.GenericTxID(1), mocks.GenericArguments),
		}

		got := collect(t, decoder.Decode(mocks.NoopLogger, raw, mocks.GenericChannel))

		require.Len(t, got, 1)
		assert.Equal(t, mocks.GenericTxID(1), got[0].TxID)
	})

	t.Run("keeps configuration transactions without actions", func(t *testing.T) {
		t.Parallel()

		raw := [][]byte{
			mocks.GenericConfigEnvelope(mocks.GenericChannel, mocks.GenericTxID(0)),
		}

		got := collect(t, decoder.Decode(mocks.NoopLogger, raw, mocks.GenericChannel))

		require.Len(t, got, 1)
		assert.Nil(t, got[0].Actions)
	})

	t.Run("endorser transaction with multiple actions", func(t *testing.T) {
		t.Parallel()

		second := [][]byte{[]byte(`query`), []byte(`alice`)}
		raw := [][]byte{
			mocks.GenericEnvelope(mocks.GenericChannel, mocks.GenericTxID(0), mocks.GenericArguments, second),
		}

		got := collect(t, decoder.Decode(mocks.NoopLogger, raw, mocks.GenericChannel))

		require.Len(t, got, 1)
		require.Len(t, got[0].Actions, 2)
		assert.Len(t, got[0].Actions[1].Invocation.Arguments, 2)
	})

	t.Run("empty block", func(t *testing.T) {
		t.Parallel()

		transactions := decoder.Decode(mocks.NoopLogger, nil, mocks.GenericChannel)

		_, err := transactions.Next()

		assert.ErrorIs(t, err, edge.ErrFinished)
	})

	t.Run("sequence is not restartable", func(t *testing.T) {
		t.Parallel()

		raw := [][]byte{
			mocks.GenericEnvelope(mocks.GenericChannel, mocks.GenericTxID(0), mocks.GenericArguments),
		}
		transactions := decoder.Decode(mocks.NoopLogger, raw, mocks.GenericChannel)

		first := collect(t, transactions)
		second := collect(t, transactions)

		assert.Len(t, first, 1)
		assert.Empty(t, second)
	})
}
