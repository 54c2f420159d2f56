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

package subscriber

import (
	"time"

	"github.com/optakt/block-edge/service/metrics"
)

// DefaultConfig is the default configuration for the event subscriber.
var DefaultConfig = Config{
	MaxRetries: 8,
	RetryDelay: 10 * time.Second,
	Unbounded:  false,
	Metrics:    metrics.Noop{},
}

// Config is the configuration for an event subscriber.
type Config struct {
	MaxRetries uint
	RetryDelay time.Duration
	Unbounded  bool
	Metrics    Metrics
}

// Option is a function that can be applied to a Config.
type Option func(*Config)

// WithMaxRetries sets how many consecutive failed connection attempts are
// retried before the subscription is declared failed.
func WithMaxRetries(retries uint) Option {
	return func(cfg *Config) {
		cfg.MaxRetries = retries
	}
}

// WithRetryDelay sets the delay between two connection attempts.
func WithRetryDelay(delay time.Duration) Option {
	return func(cfg *Config) {
		cfg.RetryDelay = delay
	}
}

// WithUnboundedRetries makes the subscriber retry forever, ignoring the
// configured maximum number of retries.
func WithUnboundedRetries(unbounded bool) Option {
	return func(cfg *Config) {
		cfg.Unbounded = unbounded
	}
}

// WithMetrics sets the collector that records connection attempts and status
// changes.
func WithMetrics(metrics Metrics) Option {
	return func(cfg *Config) {
		cfg.Metrics = metrics
	}
}
