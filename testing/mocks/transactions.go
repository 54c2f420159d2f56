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
	"testing"

	"github.com/optakt/block-edge/models/edge"
)

type Transactions struct {
	NextFunc func() (*edge.Transaction, error)
}

// BaselineTransactions returns a sequence over the given transactions which
// finishes once they are all consumed.
func BaselineTransactions(t *testing.T, transactions ...*edge.Transaction) *Transactions {
	t.Helper()

	index := 0
	s := Transactions{
		NextFunc: func() (*edge.Transaction, error) {
			if index >= len(transactions) {
				return nil, edge.ErrFinished
			}
			transaction := transactions[index]
			index++
			return transaction, nil
		},
	}

	return &s
}

func (s *Transactions) Next() (*edge.Transaction, error) {
	return s.NextFunc()
}
