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
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/hyperledger/fabric-protos-go-apiv2/common"
	"github.com/hyperledger/fabric-protos-go-apiv2/peer"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"

	"github.com/optakt/block-edge/models/edge"
)

// Stream is an open deliver stream to a peer. It owns the underlying
// connection and closes it together with the stream.
type Stream struct {
	log     zerolog.Logger
	conn    *grpc.ClientConn
	deliver peer.Deliver_DeliverClient
	cancel  context.CancelFunc
}

// Recv blocks until the next block is delivered. A status response ends the
// stream and is returned as an error wrapping edge.ErrStreamStatus.
func (s *Stream) Recv() (*common.Block, error) {

	for {
		res, err := s.deliver.Recv()
		if err != nil {
			return nil, fmt.Errorf("could not receive deliver response: %w", err)
		}

		switch response := res.Type.(type) {
		case *peer.DeliverResponse_Block:
			return response.Block, nil
		case *peer.DeliverResponse_Status:
			return nil, fmt.Errorf("%w (status: %s)", edge.ErrStreamStatus, response.Status)
		default:
			s.log.Debug().Str("type", fmt.Sprintf("%T", response)).Msg("ignoring unexpected deliver response")
		}
	}
}

// Close cancels the stream and closes the connection to the peer.
func (s *Stream) Close() error {

	s.cancel()

	var merr *multierror.Error
	err := s.deliver.CloseSend()
	if err != nil {
		merr = multierror.Append(merr, fmt.Errorf("could not close send direction: %w", err))
	}
	if s.conn != nil {
		err = s.conn.Close()
		if err != nil {
			merr = multierror.Append(merr, fmt.Errorf("could not close connection: %w", err))
		}
	}

	return merr.ErrorOrNil()
}
