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

package edge

import (
	"context"

	"github.com/hyperledger/fabric-protos-go-apiv2/common"
)

// BlockHandler is notified of every block delivered by the peer.
type BlockHandler interface {
	OnBlock(block *common.Block)
}

// Transactions is a lazy sequence of decoded transactions. Next returns
// ErrFinished once the sequence is exhausted.
type Transactions interface {
	Next() (*Transaction, error)
}

// Relayer forwards extracted argument sets to the upstream aggregator.
type Relayer interface {
	Relay(ctx context.Context, sets []TransactionArguments) error
	Dispatch(sets []TransactionArguments)
}

// Signer is the client identity used to sign requests sent to the peer.
type Signer interface {
	Serialize() ([]byte, error)
	Sign(message []byte) ([]byte, error)
}

// Stream is an open block event stream from a peer.
type Stream interface {
	Recv() (*common.Block, error)
	Close() error
}
