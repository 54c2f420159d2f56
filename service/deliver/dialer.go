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

package deliver

import (
	"context"
	"errors"
	"fmt"

	grpczerolog "github.com/grpc-ecosystem/go-grpc-middleware/providers/zerolog/v2"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"github.com/hyperledger/fabric-protos-go-apiv2/peer"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/optakt/block-edge/models/edge"
	"github.com/optakt/block-edge/network"
)

// Dialer opens deliver streams to a single peer.
type Dialer struct {
	log    zerolog.Logger
	peer   *network.Peer
	signer edge.Signer
	cfg    Config
}

// NewDialer creates a dialer for the given peer. A nil peer or signer is
// accepted, so that a misconfigured agent still runs and reports the problem
// on every connection attempt.
func NewDialer(log zerolog.Logger, peer *network.Peer, signer edge.Signer, options ...Option) *Dialer {

	cfg := DefaultConfig
	for _, option := range options {
		option(&cfg)
	}

	d := Dialer{
		log:    log.With().Str("component", "deliver_dialer").Logger(),
		peer:   peer,
		signer: signer,
		cfg:    cfg,
	}

	return &d
}

// Dial connects to the peer and requests delivery of the channel's blocks.
func (d *Dialer) Dial(ctx context.Context) (edge.Stream, error) {

	if d.peer == nil {
		return nil, edge.ErrNoPeer
	}
	if d.signer == nil {
		return nil, errors.New("no identity available to sign the request")
	}

	envelope, err := SeekEnvelope(d.signer, d.cfg.Channel)
	if err != nil {
		return nil, fmt.Errorf("could not create seek envelope: %w", err)
	}

	creds, err := d.credentials()
	if err != nil {
		return nil, fmt.Errorf("could not load transport credentials: %w", err)
	}

	logOpts := []logging.Option{
		logging.WithLevels(logging.DefaultClientCodeToLevel),
	}
	interceptor := grpczerolog.InterceptorLogger(d.log.With().Str("component", "grpc_client").Logger())

	address := d.peer.Address()
	conn, err := grpc.DialContext(ctx, address,
		grpc.WithTransportCredentials(creds),
		grpc.WithDefaultCallOptions(grpc.MaxCallRecvMsgSize(int(d.cfg.MaxMessageSize.Bytes()))),
		grpc.WithChainStreamInterceptor(logging.StreamClientInterceptor(interceptor, logOpts...)),
	)
	if err != nil {
		return nil, fmt.Errorf("could not dial peer (address: %s): %w", address, err)
	}

	streamCtx, cancel := context.WithCancel(ctx)
	deliver, err := peer.NewDeliverClient(conn).Deliver(streamCtx)
	if err != nil {
		cancel()
		_ = conn.Close()
		return nil, fmt.Errorf("could not open deliver stream (address: %s): %w", address, err)
	}

	err = deliver.Send(envelope)
	if err != nil {
		cancel()
		_ = conn.Close()
		return nil, fmt.Errorf("could not send seek request (address: %s): %w", address, err)
	}

	d.log.Info().
		Str("address", address).
		Str("channel", d.cfg.Channel).
		Bool("tls", d.peer.Secure()).
		Msg("requested block delivery from peer")

	s := Stream{
		log:     d.log,
		conn:    conn,
		deliver: deliver,
		cancel:  cancel,
	}

	return &s, nil
}

func (d *Dialer) credentials() (credentials.TransportCredentials, error) {
	if !d.peer.Secure() {
		return insecure.NewCredentials(), nil
	}
	return credentials.NewClientTLSFromFile(d.peer.TLSCACerts, d.peer.ServerHostname)
}
