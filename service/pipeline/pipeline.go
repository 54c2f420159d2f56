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

package pipeline

import (
	"github.com/hyperledger/fabric-protos-go-apiv2/common"
	"github.com/rs/zerolog"

	"github.com/optakt/block-edge/models/edge"
	"github.com/optakt/block-edge/service/decoder"
	"github.com/optakt/block-edge/service/extractor"
)

// Metrics records the processing of received blocks.
type Metrics interface {
	Block()
	Transactions(decoded uint, skipped uint)
}

// Pipeline is the block handler which turns every received block into the
// argument sets of its transactions and hands them to the relay.
type Pipeline struct {
	log     zerolog.Logger
	relay   edge.Relayer
	channel string
	metrics Metrics
}

// New creates a pipeline that dispatches extracted arguments to the given relay.
func New(log zerolog.Logger, relay edge.Relayer, options ...Option) *Pipeline {

	cfg := DefaultConfig
	for _, option := range options {
		option(&cfg)
	}

	p := Pipeline{
		log:     log.With().Str("component", "block_pipeline").Logger(),
		relay:   relay,
		channel: cfg.Channel,
		metrics: cfg.Metrics,
	}

	return &p
}

// OnBlock implements the edge.BlockHandler interface. Failures are logged
// and never stop the processing of later blocks.
func (p *Pipeline) OnBlock(block *common.Block) {

	if block == nil || block.Header == nil || block.Data == nil {
		p.log.Warn().Msg("ignoring incomplete block")
		return
	}

	number := block.Header.Number
	p.log.Info().Uint64("block", number).Int("envelopes", len(block.Data.Data)).Msg("received a block")
	p.metrics.Block()

	transactions := decoder.Decode(p.log, block.Data.Data, p.channel)
	sets, err := extractor.Extract(transactions)
	decoded, skipped := transactions.Stats()
	p.metrics.Transactions(decoded, skipped)
	if err != nil {
		p.log.Error().Uint64("block", number).Err(err).Msg("could not extract transaction arguments")
		return
	}

	p.log.Debug().
		Uint64("block", number).
		Interface("arguments", sets).
		Uint("decoded", decoded).
		Uint("skipped", skipped).
		Msg("extracted transaction arguments")

	if len(sets) == 0 || len(sets[0]) == 0 {
		p.log.Debug().Uint64("block", number).Msg("no arguments to relay")
		return
	}

	p.relay.Dispatch(sets)
}
