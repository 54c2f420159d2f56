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
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/optakt/block-edge/models/edge"
)

// Metrics records the outcome of relay requests.
type Metrics interface {
	Relayed(duration time.Duration)
	RelayFailed()
}

// Dispatcher forwards extracted chaincode arguments to the upstream
// aggregator. Delivery is at-most-once: failed requests are logged and
// dropped, without retry.
type Dispatcher struct {
	log     zerolog.Logger
	client  *resty.Client
	url     string
	metrics Metrics
	ctx     context.Context
	cancel  context.CancelFunc
	wg      *sync.WaitGroup
}

// New creates a dispatcher relaying to the aggregator at the given
// `host:port` destination.
func New(log zerolog.Logger, destination string, options ...Option) *Dispatcher {

	cfg := DefaultConfig
	for _, option := range options {
		option(&cfg)
	}

	client := cfg.Client
	if client == nil {
		client = resty.New()
	}
	client.
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")

	ctx, cancel := context.WithCancel(context.Background())
	d := Dispatcher{
		log:     log.With().Str("component", "relay_dispatcher").Logger(),
		client:  client,
		url:     fmt.Sprintf("http://%s/block", destination),
		metrics: cfg.Metrics,
		ctx:     ctx,
		cancel:  cancel,
		wg:      &sync.WaitGroup{},
	}

	return &d
}

// Relay posts the argument sets to the aggregator and waits for the response.
// Nothing is sent when there are no sets or when the first set is empty.
func (d *Dispatcher) Relay(ctx context.Context, sets []edge.TransactionArguments) error {

	if len(sets) == 0 || len(sets[0]) == 0 {
		return nil
	}

	payload := edge.RelayPayload{
		Transactions: sets,
	}

	start := time.Now()
	res, err := d.client.R().
		SetContext(ctx).
		SetBody(payload).
		Post(d.url)
	if err != nil {
		d.metrics.RelayFailed()
		return fmt.Errorf("could not post block (url: %s): %w", d.url, err)
	}
	if !res.IsSuccess() {
		d.metrics.RelayFailed()
		return fmt.Errorf("%w (url: %s, status: %d)", edge.ErrRelayRejected, d.url, res.StatusCode())
	}
	d.metrics.Relayed(time.Since(start))

	return nil
}

// Dispatch relays the argument sets in the background. The caller does not
// wait for delivery, and dispatches for successive blocks are not ordered.
func (d *Dispatcher) Dispatch(sets []edge.TransactionArguments) {

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		err := d.Relay(d.ctx, sets)
		if err != nil {
			d.log.Error().Err(err).Int("transactions", len(sets)).Msg("error during transaction relay")
			return
		}

		d.log.Debug().Int("transactions", len(sets)).Msg("sent block")
	}()
}

// Stop waits for in-flight dispatches to complete. If the context expires
// first, in-flight requests are cancelled.
func (d *Dispatcher) Stop(ctx context.Context) error {

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		<-done
		return fmt.Errorf("could not wait for in-flight relays: %w", ctx.Err())
	}
}
