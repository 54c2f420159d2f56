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

package mocks

import (
	"errors"
	"fmt"
	"io"

	"github.com/hyperledger/fabric-protos-go-apiv2/common"
	"github.com/hyperledger/fabric-protos-go-apiv2/peer"
	"github.com/rs/zerolog"
	"google.golang.org/protobuf/proto"

	"github.com/optakt/block-edge/models/edge"
)

// Global variables that can be used for testing. They are non-nil valid values for the types commonly needed
// to test block edge components.
var (
	NoopLogger = zerolog.New(io.Discard)

	GenericError = errors.New("dummy error")

	GenericBytes = []byte(`test`)

	GenericChannel = edge.ChannelName

	GenericChaincode = "kubecc"

	GenericBlockNumber = uint64(42)

	GenericMSPID = "Org1MSP"

	GenericIdentity = []byte(`identity`)

	GenericSignature = []byte(`signature`)

	GenericArguments = [][]byte{
		[]byte(`transfer`),
		[]byte(`alice`),
		[]byte(`bob`),
		[]byte(`100`),
	}

	GenericArgumentSets = []edge.TransactionArguments{
		{{"transfer", "alice", "bob", "100"}},
		{{"transfer", "alice", "bob", "100"}},
	}
)

// GenericTxID returns a deterministic transaction identifier for the given index.
func GenericTxID(index int) string {
	return fmt.Sprintf("tx-%04d", index)
}

// GenericEnvelope returns an encoded endorser transaction envelope on the
// given channel, with one ledger action per given argument list.
func GenericEnvelope(channel string, txID string, actions ...[][]byte) []byte {

	tx := peer.Transaction{}
	for _, args := range actions {
		spec := peer.ChaincodeInvocationSpec{
			ChaincodeSpec: &peer.ChaincodeSpec{
				Type:        peer.ChaincodeSpec_GOLANG,
				ChaincodeId: &peer.ChaincodeID{Name: GenericChaincode},
				Input:       &peer.ChaincodeInput{Args: args},
			},
		}
		proposal := peer.ChaincodeProposalPayload{
			Input: mustMarshal(&spec),
		}
		actionPayload := peer.ChaincodeActionPayload{
			ChaincodeProposalPayload: mustMarshal(&proposal),
			Action:                   &peer.ChaincodeEndorsedAction{},
		}
		action := peer.TransactionAction{
			Header:  GenericBytes,
			Payload: mustMarshal(&actionPayload),
		}
		tx.Actions = append(tx.Actions, &action)
	}

	return envelope(common.HeaderType_ENDORSER_TRANSACTION, channel, txID, mustMarshal(&tx))
}

// GenericConfigEnvelope returns an encoded configuration envelope on the given
// channel, which carries no ledger actions.
func GenericConfigEnvelope(channel string, txID string) []byte {
	config := common.ConfigEnvelope{
		Config: &common.Config{Sequence: 1},
	}
	return envelope(common.HeaderType_CONFIG, channel, txID, mustMarshal(&config))
}

// GenericBlock returns a block with the given number and raw envelopes.
func GenericBlock(number uint64, envelopes ...[]byte) *common.Block {
	block := common.Block{
		Header: &common.BlockHeader{
			Number: number,
		},
		Data: &common.BlockData{
			Data: envelopes,
		},
		Metadata: &common.BlockMetadata{},
	}
	return &block
}

// GenericBlocks returns a block holding count endorser transactions on the
// generic channel, each with a single ledger action using the generic arguments.
func GenericBlocks(count int) *common.Block {
	envelopes := make([][]byte, 0, count)
	for i := 0; i < count; i++ {
		envelopes = append(envelopes, GenericEnvelope(GenericChannel, GenericTxID(i), GenericArguments))
	}
	return GenericBlock(GenericBlockNumber, envelopes...)
}

func envelope(typ common.HeaderType, channel string, txID string, data []byte) []byte {

	header := common.ChannelHeader{
		Type:      int32(typ),
		ChannelId: channel,
		TxId:      txID,
	}
	payload := common.Payload{
		Header: &common.Header{
			ChannelHeader:   mustMarshal(&header),
			SignatureHeader: GenericBytes,
		},
		Data: data,
	}
	env := common.Envelope{
		Payload:   mustMarshal(&payload),
		Signature: GenericBytes,
	}

	return mustMarshal(&env)
}

func mustMarshal(message proto.Message) []byte {
	data, err := proto.Marshal(message)
	if err != nil {
		panic(err)
	}
	return data
}
