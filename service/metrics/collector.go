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

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespaceEdge = "block_edge"

// Recorder is implemented by both the prometheus collector and the no-op
// collector used when metrics are disabled.
type Recorder interface {
	Block()
	Transactions(decoded uint, skipped uint)
	Relayed(duration time.Duration)
	RelayFailed()
	Attempt()
	Status(status uint8)
}

// Collector exposes the activity of the block ingestion pipeline as
// prometheus metrics.
type Collector struct {
	blocks   prometheus.Counter
	decoded  prometheus.Counter
	skipped  prometheus.Counter
	relayed  prometheus.Counter
	failed   prometheus.Counter
	duration prometheus.Histogram
	attempts prometheus.Counter
	status   prometheus.Gauge
}

// NewCollector creates the pipeline metrics and registers them with the given
// registerer.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	blockOpts := prometheus.CounterOpts{
		Name:      "received_blocks",
		Namespace: namespaceEdge,
		Help:      "number of blocks received from the peer",
	}
	blocks := factory.NewCounter(blockOpts)

	decodedOpts := prometheus.CounterOpts{
		Name:      "decoded_transactions",
		Namespace: namespaceEdge,
		Help:      "number of transactions decoded on the followed channel",
	}
	decoded := factory.NewCounter(decodedOpts)

	skippedOpts := prometheus.CounterOpts{
		Name:      "skipped_transactions",
		Namespace: namespaceEdge,
		Help:      "number of transactions skipped because of decoding failures or channel mismatch",
	}
	skipped := factory.NewCounter(skippedOpts)

	relayedOpts := prometheus.CounterOpts{
		Name:      "relayed_blocks",
		Namespace: namespaceEdge,
		Help:      "number of blocks successfully relayed to the aggregator",
	}
	relayed := factory.NewCounter(relayedOpts)

	failedOpts := prometheus.CounterOpts{
		Name:      "failed_relays",
		Namespace: namespaceEdge,
		Help:      "number of relay requests that failed and were dropped",
	}
	failed := factory.NewCounter(failedOpts)

	durationOpts := prometheus.HistogramOpts{
		Name:      "relay_duration_seconds",
		Namespace: namespaceEdge,
		Help:      "duration of successful relay requests",
		Buckets:   prometheus.DefBuckets,
	}
	duration := factory.NewHistogram(durationOpts)

	attemptsOpts := prometheus.CounterOpts{
		Name:      "connection_attempts",
		Namespace: namespaceEdge,
		Help:      "number of attempts to subscribe to the peer block stream",
	}
	attempts := factory.NewCounter(attemptsOpts)

	statusOpts := prometheus.GaugeOpts{
		Name:      "subscription_status",
		Namespace: namespaceEdge,
		Help:      "current state of the block stream subscription",
	}
	status := factory.NewGauge(statusOpts)

	c := Collector{
		blocks:   blocks,
		decoded:  decoded,
		skipped:  skipped,
		relayed:  relayed,
		failed:   failed,
		duration: duration,
		attempts: attempts,
		status:   status,
	}

	return &c
}

// Block counts a received block.
func (c *Collector) Block() {
	c.blocks.Inc()
}

// Transactions counts the decoded and skipped transactions of a block.
func (c *Collector) Transactions(decoded uint, skipped uint) {
	c.decoded.Add(float64(decoded))
	c.skipped.Add(float64(skipped))
}

// Relayed records a successful relay request.
func (c *Collector) Relayed(duration time.Duration) {
	c.relayed.Inc()
	c.duration.Observe(duration.Seconds())
}

// RelayFailed counts a dropped relay request.
func (c *Collector) RelayFailed() {
	c.failed.Inc()
}

// Attempt counts a subscription attempt.
func (c *Collector) Attempt() {
	c.attempts.Inc()
}

// Status sets the current subscription state.
func (c *Collector) Status(status uint8) {
	c.status.Set(float64(status))
}
