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
	"github.com/optakt/block-edge/models/edge"
	"github.com/optakt/block-edge/service/metrics"
)

// DefaultConfig is the default configuration for the block pipeline.
var DefaultConfig = Config{
	Channel: edge.ChannelName,
	Metrics: metrics.Noop{},
}

// Config is the configuration for a block pipeline.
type Config struct {
	Channel string
	Metrics Metrics
}

// Option is a function that can be applied to a Config.
type Option func(*Config)

// WithChannel sets the channel whose transactions are relayed. Transactions
// from other channels are skipped.
func WithChannel(channel string) Option {
	return func(cfg *Config) {
		cfg.Channel = channel
	}
}

// WithMetrics sets the collector that records block processing.
func WithMetrics(metrics Metrics) Option {
	return func(cfg *Config) {
		cfg.Metrics = metrics
	}
}
