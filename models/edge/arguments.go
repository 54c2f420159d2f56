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

// ArgumentSet is the ordered list of decoded arguments of one ledger action.
type ArgumentSet []string

// TransactionArguments holds one argument set per ledger action of a single
// transaction. A nil value marks a transaction without ledger actions and is
// kept in place so that positions match the originating transactions.
type TransactionArguments []ArgumentSet

// RelayPayload is the body sent to the upstream aggregator.
type RelayPayload struct {
	Transactions []TransactionArguments `json:"transactions"`
}
