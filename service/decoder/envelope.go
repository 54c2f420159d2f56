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

package decoder

import (
	"errors"
	"fmt"

	"github.com/hyperledger/fabric-protos-go-apiv2/common"
	"github.com/hyperledger/fabric-protos-go-apiv2/peer"
	"google.golang.org/protobuf/proto"

	"github.com/optakt/block-edge/models/edge"
)

func decodeTransaction(data []byte, channel string) (*edge.Transaction, error) {

	var envelope common.Envelope
	err := proto.Unmarshal(data, &envelope)
	if err != nil {
		return nil, fmt.Errorf("could not decode envelope: %w", err)
	}

	var payload common.Payload
	err = proto.Unmarshal(envelope.Payload, &payload)
	if err != nil {
		return nil, fmt.Errorf("could not decode payload: %w", err)
	}
	if payload.Header == nil {
		return nil, errors.New("payload has no header")
	}

	var header common.ChannelHeader
	err = proto.Unmarshal(payload.Header.ChannelHeader, &header)
	if err != nil {
		return nil, fmt.Errorf("could not decode channel header: %w", err)
	}
	if header.ChannelId != channel {
		return nil, fmt.Errorf("%w (channel: %s, expected: %s)", edge.ErrChannelMismatch, header.ChannelId, channel)
	}

	transaction := edge.Transaction{
		TxID:      header.TxId,
		ChannelID: header.ChannelId,
	}

	// Only endorser transactions carry chaincode invocations. Configuration
	// and other envelopes are kept with a nil action list, so that consumers
	// can still account for their position in the block.
	if common.HeaderType(header.Type) != common.HeaderType_ENDORSER_TRANSACTION {
		return &transaction, nil
	}

	actions, err := decodeActions(payload.Data)
	if err != nil {
		return nil, fmt.Errorf("could not decode actions (tx: %s): %w", header.TxId, err)
	}
	transaction.Actions = actions

	return &transaction, nil
}

func decodeActions(data []byte) ([]edge.LedgerAction, error) {

	var transaction peer.Transaction
	err := proto.Unmarshal(data, &transaction)
	if err != nil {
		return nil, fmt.Errorf("could not decode transaction: %w", err)
	}

	actions := make([]edge.LedgerAction, 0, len(transaction.Actions))
	for index, action := range transaction.Actions {
		decoded, err := decodeAction(action)
		if err != nil {
			return nil, fmt.Errorf("could not decode action (index: %d): %w", index, err)
		}
		actions = append(actions, decoded)
	}

	return actions, nil
}

func decodeAction(action *peer.TransactionAction) (edge.LedgerAction, error) {

	var actionPayload peer.ChaincodeActionPayload
	err := proto.Unmarshal(action.GetPayload(), &actionPayload)
	if err != nil {
		return edge.LedgerAction{}, fmt.Errorf("could not decode chaincode action payload: %w", err)
	}

	var proposalPayload peer.ChaincodeProposalPayload
	err = proto.Unmarshal(actionPayload.ChaincodeProposalPayload, &proposalPayload)
	if err != nil {
		return edge.LedgerAction{}, fmt.Errorf("could not decode chaincode proposal payload: %w", err)
	}

	var spec peer.ChaincodeInvocationSpec
	err = proto.Unmarshal(proposalPayload.Input, &spec)
	if err != nil {
		return edge.LedgerAction{}, fmt.Errorf("could not decode chaincode invocation spec: %w", err)
	}

	args := spec.GetChaincodeSpec().GetInput().GetArgs()
	arguments := make([]edge.Argument, 0, len(args))
	for _, arg := range args {
		argument := edge.Argument{
			Buffer: arg,
			Offset: 0,
			Limit:  len(arg),
		}
		arguments = append(arguments, argument)
	}

	ledgerAction := edge.LedgerAction{
		Chaincode:  spec.GetChaincodeSpec().GetChaincodeId().GetName(),
		Invocation: edge.Invocation{Arguments: arguments},
	}

	return ledgerAction, nil
}
