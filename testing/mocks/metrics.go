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
	"time"
)

type Metrics struct {
	BlockFunc        func()
	TransactionsFunc func(decoded uint, skipped uint)
	RelayedFunc      func(duration time.Duration)
	RelayFailedFunc  func()
	AttemptFunc      func()
	StatusFunc       func(status uint8)
}

func BaselineMetrics(t *testing.T) *Metrics {
	t.Helper()

	m := Metrics{
		BlockFunc:        func() {},
		TransactionsFunc: func(uint, uint) {},
		RelayedFunc:      func(time.Duration) {},
		RelayFailedFunc:  func() {},
		AttemptFunc:      func() {},
		StatusFunc:       func(uint8) {},
	}

	return &m
}

func (m *Metrics) Block() {
	m.BlockFunc()
}

func (m *Metrics) Transactions(decoded uint, skipped uint) {
	m.TransactionsFunc(decoded, skipped)
}

func (m *Metrics) Relayed(duration time.Duration) {
	m.RelayedFunc(duration)
}

func (m *Metrics) RelayFailed() {
	m.RelayFailedFunc()
}

func (m *Metrics) Attempt() {
	m.AttemptFunc()
}

func (m *Metrics) Status(status uint8) {
	m.StatusFunc(status)
}
