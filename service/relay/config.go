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

package relay

import (
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/optakt/block-edge/service/metrics"
)

// DefaultConfig is the default configuration for the relay dispatcher.
var DefaultConfig = Config{
	Timeout: 10 * time.Second,
	Metrics: metrics.Noop{},
}

// Config is the configuration for a relay dispatcher.
type Config struct {
	Timeout time.Duration
	Metrics Metrics
	Client  *resty.Client
}

// Option is a function that can be applied to a Config.
type Option func(*Config)

// WithTimeout sets the timeout of a single relay request.
func WithTimeout(timeout time.Duration) Option {
	return func(cfg *Config) {
		cfg.Timeout = timeout
	}
}

// WithMetrics sets the collector that records relay outcomes.
func WithMetrics(metrics Metrics) Option {
	return func(cfg *Config) {
		cfg.Metrics = metrics
	}
}

// WithClient sets the HTTP client used to post relays. The configured timeout
// is applied to it.
func WithClient(client *resty.Client) Option {
	return func(cfg *Config) {
		cfg.Client = client
	}
}
