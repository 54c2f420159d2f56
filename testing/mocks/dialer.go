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
	"context"
	"testing"

	"github.com/optakt/block-edge/models/edge"
)

type Dialer struct {
	DialFunc func(ctx context.Context) (edge.Stream, error)
}

func BaselineDialer(t *testing.T) *Dialer {
	t.Helper()

	d := Dialer{
		DialFunc: func(context.Context) (edge.Stream, error) {
			return BaselineStream(t), nil
		},
	}

	return &d
}

func (d *Dialer) Dial(ctx context.Context) (edge.Stream, error) {
	return d.DialFunc(ctx)
}
