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

package deliver

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"time"

	"github.com/hyperledger/fabric-protos-go-apiv2/common"
	"github.com/hyperledger/fabric-protos-go-apiv2/orderer"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/optakt/block-edge/models/edge"
)

const nonceSize = 24

// SeekEnvelope builds the signed request asking the peer to deliver every
// block of the channel, starting from the newest one and waiting for new
// blocks as they are committed.
func SeekEnvelope(signer edge.Signer, channel string) (*common.Envelope, error) {

	creator, err := signer.Serialize()
	if err != nil {
		return nil, fmt.Errorf("could not serialize identity: %w", err)
	}

	nonce := make([]byte, nonceSize)
	_, err = rand.Read(nonce)
	if err != nil {
		return nil, fmt.Errorf("could not generate nonce: %w", err)
	}

	channelHeader := common.ChannelHeader{
		Type:      int32(common.HeaderType_DELIVER_SEEK_INFO),
		Timestamp: timestamppb.New(time.Now().UTC()),
		ChannelId: channel,
		TxId:      transactionID(nonce, creator),
	}
	signatureHeader := common.SignatureHeader{
		Creator: creator,
		Nonce:   nonce,
	}
	seek := orderer.SeekInfo{
		Start: &orderer.SeekPosition{
			Type: &orderer.SeekPosition_Newest{Newest: &orderer.SeekNewest{}},
		},
		Stop: &orderer.SeekPosition{
			Type: &orderer.SeekPosition_Specified{Specified: &orderer.SeekSpecified{Number: math.MaxUint64}},
		},
		Behavior: orderer.SeekInfo_BLOCK_UNTIL_READY,
	}

	channelHeaderData, err := proto.Marshal(&channelHeader)
	if err != nil {
		return nil, fmt.Errorf("could not encode channel header: %w", err)
	}
	signatureHeaderData, err := proto.Marshal(&signatureHeader)
	if err != nil {
		return nil, fmt.Errorf("could not encode signature header: %w", err)
	}
	seekData, err := proto.Marshal(&seek)
	if err != nil {
		return nil, fmt.Errorf("could not encode seek info: %w", err)
	}

	payload := common.Payload{
		Header: &common.Header{
			ChannelHeader:   channelHeaderData,
			SignatureHeader: signatureHeaderData,
		},
		Data: seekData,
	}
	payloadData, err := proto.Marshal(&payload)
	if err != nil {
		return nil, fmt.Errorf("could not encode payload: %w", err)
	}

	signature, err := signer.Sign(payloadData)
	if err != nil {
		return nil, fmt.Errorf("could not sign payload: %w", err)
	}

	envelope := common.Envelope{
		Payload:   payloadData,
		Signature: signature,
	}

	return &envelope, nil
}

// transactionID derives the request identifier from the nonce and the creator.
func transactionID(nonce []byte, creator []byte) string {
	hash := sha256.New()
	_, _ = hash.Write(nonce)
	_, _ = hash.Write(creator)
	return hex.EncodeToString(hash.Sum(nil))
}
