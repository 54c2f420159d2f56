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

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/ziflex/lecho/v2"
	"golang.org/x/sync/errgroup"

	"github.com/optakt/block-edge/api/status"
	"github.com/optakt/block-edge/identity"
	"github.com/optakt/block-edge/models/edge"
	"github.com/optakt/block-edge/network"
	"github.com/optakt/block-edge/service/deliver"
	"github.com/optakt/block-edge/service/metrics"
	"github.com/optakt/block-edge/service/pipeline"
	"github.com/optakt/block-edge/service/relay"
	"github.com/optakt/block-edge/service/subscriber"
)

const (
	success = 0
	failure = 1
)

func main() {
	os.Exit(run())
}

func run() int {

	// Signal catching for clean shutdown.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)

	// Command line parameter initialization.
	var (
		flagChannel        string
		flagConfig         string
		flagExitOnFailure  bool
		flagLevel          string
		flagMaxMessageSize string
		flagMetrics        string
		flagPeer           string
		flagRelayTimeout   time.Duration
		flagRetries        uint
		flagRetryDelay     time.Duration
		flagStatus         string
		flagUnbounded      bool
	)

	pflag.StringVar(&flagChannel, "channel", edge.ChannelName, "name of the channel whose blocks are relayed")
	pflag.StringVarP(&flagConfig, "config", "c", "/block-edge/network/configuration.json", "path to the network configuration file")
	pflag.BoolVar(&flagExitOnFailure, "exit-on-failure", false, "exit with an error once the subscription gave up reconnecting")
	pflag.StringVarP(&flagLevel, "level", "l", "info", "log output level")
	pflag.StringVar(&flagMaxMessageSize, "max-message-size", "100MB", "maximum size of a block received from the peer")
	pflag.StringVarP(&flagMetrics, "metrics", "m", "", "address on which to expose prometheus metrics (disabled when empty)")
	pflag.StringVarP(&flagPeer, "peer", "p", edge.PeerTag, "capability tag of the peer to subscribe to")
	pflag.DurationVar(&flagRelayTimeout, "relay-timeout", 10*time.Second, "timeout for a single relay request to the parent cluster")
	pflag.UintVar(&flagRetries, "retries", 8, "maximum number of consecutive reconnection attempts")
	pflag.DurationVar(&flagRetryDelay, "retry-delay", 10*time.Second, "delay between two reconnection attempts")
	pflag.StringVarP(&flagStatus, "status", "s", "", "address on which to serve the status API (disabled when empty)")
	pflag.BoolVar(&flagUnbounded, "unbounded-retries", false, "keep reconnecting forever, ignoring the maximum number of attempts")

	pflag.Parse()

	// Logger initialization.
	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }
	log := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.DebugLevel)
	level, err := zerolog.ParseLevel(flagLevel)
	if err != nil {
		log.Error().Str("level", flagLevel).Err(err).Msg("could not parse log level")
		return failure
	}
	log = log.Level(level)

	var maxMessageSize datasize.ByteSize
	err = maxMessageSize.UnmarshalText([]byte(flagMaxMessageSize))
	if err != nil {
		log.Error().Str("max_message_size", flagMaxMessageSize).Err(err).Msg("could not parse maximum message size")
		return failure
	}

	// The parent cluster is the aggregator all extracted arguments are relayed
	// to; without it, there is nothing useful we can do.
	parent := os.Getenv("PARENT")
	if parent == "" {
		log.Error().Msg("no parent cluster found")
		return failure
	}

	// A broken network configuration or identity does not stop the agent. The
	// dialer reports the problem on every connection attempt, so it shows up in
	// the subscription status until the retry budget is exhausted.
	var peer *network.Peer
	var signer edge.Signer
	cfg, err := network.FromFile(flagConfig)
	if err != nil {
		log.Error().Str("config", flagConfig).Err(err).Msg("could not load network configuration")
	}
	if cfg != nil {
		org, ok := cfg.Organization(flagPeer)
		if !ok {
			log.Error().Str("peer", flagPeer).Msg("no organization with matching peer found")
		}
		if ok {
			err = org.Validate(flagPeer)
			if err != nil {
				log.Warn().Str("organization", org.Name).Err(err).Msg("invalid organization configuration")
			}
			peer, _ = org.Peer(flagPeer)

			id, err := identity.FromFiles(org.MSPID, org.User.Key, org.User.Cert)
			if err != nil {
				log.Error().
					Str("user", org.AdminName()).
					Str("organization", org.Name).
					Err(err).
					Msg("could not create user identity")
			} else {
				signer = id
			}
		}
	}

	// Metrics are only collected when they are exposed.
	var recorder metrics.Recorder = metrics.Noop{}
	var mserver *metrics.Server
	if flagMetrics != "" {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		recorder = metrics.NewCollector(registry)
		mserver = metrics.NewServer(log, flagMetrics, registry)
	}

	// The block pipeline decodes every received block, extracts the chaincode
	// arguments and hands them to the relay.
	dispatcher := relay.New(log, parent,
		relay.WithTimeout(flagRelayTimeout),
		relay.WithMetrics(recorder),
	)
	pipe := pipeline.New(log, dispatcher,
		pipeline.WithChannel(flagChannel),
		pipeline.WithMetrics(recorder),
	)
	dialer := deliver.NewDialer(log, peer, signer,
		deliver.WithChannel(flagChannel),
		deliver.WithMaxMessageSize(maxMessageSize),
	)
	sub := subscriber.New(log, dialer,
		subscriber.WithMaxRetries(flagRetries),
		subscriber.WithRetryDelay(flagRetryDelay),
		subscriber.WithUnboundedRetries(flagUnbounded),
		subscriber.WithMetrics(recorder),
	)
	registration := sub.Register(pipe)
	log.Debug().Uint64("registration", registration).Msg("registered block pipeline")

	var server *echo.Echo
	if flagStatus != "" {
		elog := lecho.From(log)
		ctrl := status.NewController(sub, 30*time.Second)

		server = echo.New()
		server.HideBanner = true
		server.HidePort = true
		server.Logger = elog
		server.Use(lecho.Middleware(lecho.Config{Logger: elog}))
		server.GET("/", ctrl.Ready)
		server.GET("/start", ctrl.Start)
		server.GET("/status", ctrl.Status)
		server.POST("/stop", ctrl.Stop)
	}

	// This section launches the main executing components in their own
	// goroutine, so they can run concurrently. Afterwards, we wait for an
	// interrupt signal in order to proceed with the next section.
	done := make(chan struct{})
	failed := make(chan struct{})
	go func() {
		start := time.Now()
		log.Info().Time("start", start).Str("parent", parent).Msg(status.StartMessage)
		err := sub.Run()
		if err != nil {
			log.Error().Err(err).Msg("block edge subscription failed")
			if flagExitOnFailure {
				close(failed)
			}
			return
		}
		close(done)
		log.Info().Str("duration", time.Since(start).Round(time.Second).String()).Msg("block edge subscription stopped")
	}()

	aborted := make(chan struct{})
	var group errgroup.Group
	if mserver != nil {
		group.Go(mserver.Start)
	}
	if server != nil {
		group.Go(func() error {
			log.Info().Str("address", flagStatus).Msg("status server starting")
			err := server.Start(flagStatus)
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	go func() {
		err := group.Wait()
		if err != nil {
			log.Error().Err(err).Msg("could not serve")
			close(aborted)
		}
	}()

	select {
	case <-sig:
		log.Info().Msg("block edge stopping")
	case <-done:
		log.Info().Msg("block edge done")
	case <-failed:
		log.Warn().Msg("block edge aborted")
		return failure
	case <-aborted:
		log.Warn().Msg("block edge aborted")
		return failure
	}
	go func() {
		<-sig
		log.Warn().Msg("forcing exit")
		os.Exit(1)
	}()

	// The following code starts a shut down with a certain timeout and makes
	// sure that the main executing components are shutting down within the
	// allocated shutdown time. Otherwise, we will force the shutdown and log
	// an error. We then wait for shutdown on each component to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	err = sub.Stop(ctx)
	if err != nil {
		log.Error().Err(err).Msg("could not stop subscriber")
		return failure
	}
	err = dispatcher.Stop(ctx)
	if err != nil {
		log.Error().Err(err).Msg("could not stop relay dispatcher")
		return failure
	}
	if server != nil {
		err = server.Shutdown(ctx)
		if err != nil {
			log.Error().Err(err).Msg("could not shut down status server")
			return failure
		}
	}
	if mserver != nil {
		err = mserver.Stop(ctx)
		if err != nil {
			log.Error().Err(err).Msg("could not stop metrics server")
			return failure
		}
	}

	return success
}
