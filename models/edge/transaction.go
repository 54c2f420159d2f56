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

// Transaction is an endorser transaction decoded from a block envelope. A nil
// Actions slice means the transaction carries no ledger actions, which is the
// case for configuration updates.
type Transaction struct {
	TxID      string
	ChannelID string
	Actions   []LedgerAction
}

// LedgerAction is a single chaincode invocation within a transaction.
type LedgerAction struct {
	Chaincode  string
	Invocation Invocation
}

// Invocation holds the positional arguments of a chaincode invocation spec.
type Invocation struct {
	Arguments []Argument
}

// Argument addresses a chaincode argument as a window into a byte buffer.
type Argument struct {
	Buffer []byte
	Offset int
	Limit  int
}
