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

package extractor

import (
	"errors"
	"fmt"

	"github.com/optakt/block-edge/models/edge"
)

// Extract consumes the given transactions and returns their chaincode
// arguments, one entry per transaction and in the same order.
func Extract(transactions edge.Transactions) ([]edge.TransactionArguments, error) {

	var sets []edge.TransactionArguments
	for {
		transaction, err := transactions.Next()
		if errors.Is(err, edge.ErrFinished) {
			return sets, nil
		}
		if err != nil {
			return nil, fmt.Errorf("could not get next transaction: %w", err)
		}

		sets = append(sets, Transaction(transaction))
	}
}

// Transaction returns one argument set per ledger action of the transaction.
// Transactions without ledger actions return nil.
func Transaction(transaction *edge.Transaction) edge.TransactionArguments {

	if transaction.Actions == nil {
		return nil
	}

	sets := make(edge.TransactionArguments, 0, len(transaction.Actions))
	for _, action := range transaction.Actions {
		sets = append(sets, Arguments(action.Invocation))
	}

	return sets
}

// Arguments decodes all arguments of an invocation, preserving their order.
func Arguments(invocation edge.Invocation) edge.ArgumentSet {

	set := make(edge.ArgumentSet, 0, len(invocation.Arguments))
	for _, argument := range invocation.Arguments {
		set = append(set, Decode(argument))
	}

	return set
}
