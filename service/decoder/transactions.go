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

	"github.com/rs/zerolog"

	"github.com/optakt/block-edge/models/edge"
)

// Transactions is a lazy sequence of the transactions contained in the raw
// envelopes of a block. Envelopes are only decoded when the sequence is
// advanced, and the sequence can be consumed only once.
type Transactions struct {
	log     zerolog.Logger
	raw     [][]byte
	channel string
	index   int
	decoded uint
	skipped uint
}

// Decode returns the sequence of transactions found in the given raw
// envelopes which belong to the given channel.
func Decode(log zerolog.Logger, raw [][]byte, channel string) *Transactions {

	t := Transactions{
		log:     log.With().Str("component", "transaction_decoder").Logger(),
		raw:     raw,
		channel: channel,
	}

	return &t
}

// Next returns the next transaction of the sequence. Envelopes that can't be
// decoded, or that belong to a different channel, are skipped with a
// warning. Once all envelopes were consumed, it returns `edge.ErrFinished`.
func (t *Transactions) Next() (*edge.Transaction, error) {

	for t.index < len(t.raw) {

		index := t.index
		t.index++

		transaction, err := decodeTransaction(t.raw[index], t.channel)
		if errors.Is(err, edge.ErrChannelMismatch) {
			t.skipped++
			t.log.Warn().Int("index", index).Err(err).Msg("skipping transaction from other channel")
			continue
		}
		if err != nil {
			t.skipped++
			t.log.Warn().Int("index", index).Err(err).Msg("skipping undecodable transaction")
			continue
		}

		t.decoded++
		return transaction, nil
	}

	return nil, edge.ErrFinished
}

// Stats returns how many transactions were decoded and skipped so far.
func (t *Transactions) Stats() (decoded uint, skipped uint) {
	return t.decoded, t.skipped
}
