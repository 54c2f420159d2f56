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
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hyperledger/fabric-protos-go-apiv2/common"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"

	"github.com/optakt/block-edge/models/edge"
)

// Dialer opens a new block event stream to a peer.
type Dialer interface {
	Dial(ctx context.Context) (edge.Stream, error)
}

// Metrics records connection attempts and status changes.
type Metrics interface {
	Attempt()
	Status(status uint8)
}

// Subscriber maintains a block event subscription to a peer and hands every
// received block to the registered handlers. When the stream breaks, it
// reconnects after a fixed delay, until the retry budget is exhausted.
type Subscriber struct {
	log     zerolog.Logger
	cfg     Config
	dial    Dialer
	metrics Metrics

	status   *atomic.Uint32
	attempts *atomic.Uint64
	failures uint

	mutex    *sync.RWMutex
	handlers map[uint64]edge.BlockHandler
	nextID   uint64
	stream   edge.Stream

	ctx    context.Context
	cancel context.CancelFunc
	loop   *sync.WaitGroup
	wg     *sync.WaitGroup
	done   chan struct{}
	once   *sync.Once
}

// New creates a subscriber that uses the given dialer to connect to its peer.
func New(log zerolog.Logger, dial Dialer, options ...Option) *Subscriber {

	cfg := DefaultConfig
	for _, option := range options {
		option(&cfg)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := Subscriber{
		log:      log.With().Str("component", "event_subscriber").Logger(),
		cfg:      cfg,
		dial:     dial,
		metrics:  cfg.Metrics,
		status:   atomic.NewUint32(uint32(StatusDisconnected)),
		attempts: atomic.NewUint64(0),
		failures: 0,
		mutex:    &sync.RWMutex{},
		handlers: make(map[uint64]edge.BlockHandler),
		nextID:   0,
		ctx:      ctx,
		cancel:   cancel,
		loop:     &sync.WaitGroup{},
		wg:       &sync.WaitGroup{},
		done:     make(chan struct{}),
		once:     &sync.Once{},
	}

	s.metrics.Status(uint8(StatusDisconnected))

	return &s
}

// Register adds a handler for received blocks and returns its registration ID.
func (s *Subscriber) Register(handler edge.BlockHandler) uint64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.nextID++
	s.handlers[s.nextID] = handler

	return s.nextID
}

// Unregister removes the handler with the given registration ID. It returns
// false if no such registration exists.
func (s *Subscriber) Unregister(id uint64) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	_, ok := s.handlers[id]
	delete(s.handlers, id)

	return ok
}

// Registrations returns the number of registered handlers.
func (s *Subscriber) Registrations() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return len(s.handlers)
}

// Status returns the current status of the subscriber.
func (s *Subscriber) Status() Status {
	return Status(s.status.Load())
}

// Attempts returns the total number of connection attempts made so far.
func (s *Subscriber) Attempts() uint64 {
	return s.attempts.Load()
}

// Done returns a channel that is closed once the subscriber reaches a terminal
// status.
func (s *Subscriber) Done() <-chan struct{} {
	return s.done
}

// Run connects to the peer and delivers blocks until Stop is called, in which
// case it returns nil, or until the retry budget is exhausted, in which case
// it returns an error wrapping edge.ErrSubscriptionFailed.
func (s *Subscriber) Run() error {

	// Registering with the wait group under the mutex orders it with Stop,
	// which cancels the context before taking the mutex.
	s.mutex.Lock()
	if s.ctx.Err() != nil {
		s.mutex.Unlock()
		s.finish(StatusStopped)
		return nil
	}
	s.loop.Add(1)
	s.mutex.Unlock()
	defer s.loop.Done()

	for {

		if s.ctx.Err() != nil {
			s.finish(StatusStopped)
			return nil
		}

		s.transition(StatusConnecting)
		attempt := s.attempts.Inc()
		s.metrics.Attempt()

		err := s.subscribe()
		if s.ctx.Err() != nil {
			s.finish(StatusStopped)
			return nil
		}

		s.failures++
		if !s.cfg.Unbounded && s.failures > s.cfg.MaxRetries {
			s.log.Error().
				Err(err).
				Uint64("attempts", attempt).
				Uint("max_retries", s.cfg.MaxRetries).
				Msg("retry budget exhausted, giving up on block events")
			s.finish(StatusFailed)
			return fmt.Errorf("%w (attempts: %d): %s", edge.ErrSubscriptionFailed, attempt, err)
		}

		s.transition(StatusRetrying)
		s.log.Warn().
			Err(err).
			Uint("failures", s.failures).
			Dur("delay", s.cfg.RetryDelay).
			Msg("block event subscription interrupted, retrying")

		timer := time.NewTimer(s.cfg.RetryDelay)
		select {
		case <-s.ctx.Done():
			timer.Stop()
		case <-timer.C:
		}
	}
}

// Stop unregisters all handlers, cancels any pending reconnection and closes
// the stream. It then waits for the run loop and in-flight handlers to finish,
// or for the context to expire.
func (s *Subscriber) Stop(ctx context.Context) error {

	s.cancel()

	s.mutex.Lock()
	s.handlers = make(map[uint64]edge.BlockHandler)
	s.mutex.Unlock()

	err := s.detach()
	if err != nil {
		s.log.Warn().Err(err).Msg("could not close block event stream")
	}

	done := make(chan struct{})
	go func() {
		s.loop.Wait()
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("could not wait for subscriber to stop: %w", ctx.Err())
	}

	s.finish(StatusStopped)

	return nil
}

// subscribe opens a stream and delivers its blocks until it breaks. The retry
// counter resets when the first block of the stream arrives.
func (s *Subscriber) subscribe() error {

	stream, err := s.dial.Dial(s.ctx)
	if err != nil {
		return fmt.Errorf("could not connect to peer: %w", err)
	}

	ok := s.attach(stream)
	if !ok {
		_ = stream.Close()
		return s.ctx.Err()
	}
	defer func() {
		err := s.detach()
		if err != nil {
			s.log.Warn().Err(err).Msg("could not close block event stream")
		}
	}()

	s.log.Debug().Msg("connected to peer, waiting for first block")

	// The peer may still reject the request with a status response, so the
	// subscription only counts as established once a block arrives.
	subscribed := false
	for {
		block, err := stream.Recv()
		if err != nil {
			return fmt.Errorf("could not receive block: %w", err)
		}

		if !subscribed {
			subscribed = true
			s.failures = 0
			s.transition(StatusSubscribed)
			s.log.Info().Msg("subscribed to block events")
		}

		s.deliver(block)
	}
}

func (s *Subscriber) deliver(block *common.Block) {

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	for id, handler := range s.handlers {
		s.wg.Add(1)
		go s.handle(id, handler, block)
	}
}

func (s *Subscriber) handle(id uint64, handler edge.BlockHandler, block *common.Block) {
	defer s.wg.Done()
	defer func() {
		r := recover()
		if r != nil {
			s.log.Error().
				Uint64("registration", id).
				Interface("panic", r).
				Msg("block handler panicked")
		}
	}()

	handler.OnBlock(block)
}

// attach stores the stream so that Stop can close it. It refuses the stream
// once the subscriber has been stopped.
func (s *Subscriber) attach(stream edge.Stream) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.ctx.Err() != nil {
		return false
	}
	s.stream = stream

	return true
}

func (s *Subscriber) detach() error {
	s.mutex.Lock()
	stream := s.stream
	s.stream = nil
	s.mutex.Unlock()

	if stream == nil {
		return nil
	}

	return stream.Close()
}

func (s *Subscriber) transition(status Status) {
	s.status.Store(uint32(status))
	s.metrics.Status(uint8(status))
}

// finish moves the subscriber into a terminal status. The first terminal
// status wins.
func (s *Subscriber) finish(status Status) {
	s.once.Do(func() {
		s.transition(status)
		close(s.done)
	})
}
