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

package mocks

import (
	"testing"

	"github.com/hyperledger/fabric-protos-go-apiv2/common"
)

type Stream struct {
	RecvFunc  func() (*common.Block, error)
	CloseFunc func() error
}

// BaselineStream returns a stream that delivers the given blocks and then
// blocks until it is closed, after which it returns an error.
func BaselineStream(t *testing.T, blocks ...*common.Block) *Stream {
	t.Helper()

	queue := make(chan *common.Block, len(blocks))
	for _, block := range blocks {
		queue <- block
	}
	closed := make(chan struct{})

	s := Stream{
		RecvFunc: func() (*common.Block, error) {
			select {
			case block := <-queue:
				return block, nil
			default:
			}
			<-closed
			return nil, GenericError
		},
		CloseFunc: func() error {
			select {
			case <-closed:
			default:
				close(closed)
			}
			return nil
		},
	}

	return &s
}

func (s *Stream) Recv() (*common.Block, error) {
	return s.RecvFunc()
}

func (s *Stream) Close() error {
	return s.CloseFunc()
}
