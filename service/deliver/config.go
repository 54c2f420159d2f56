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
	"github.com/c2h5oh/datasize"

	"github.com/optakt/block-edge/models/edge"
)

// DefaultConfig is the default configuration for the deliver dialer.
var DefaultConfig = Config{
	Channel:        edge.ChannelName,
	MaxMessageSize: 100 * datasize.MB,
}

// Config is the configuration for a deliver dialer.
type Config struct {
	Channel        string
	MaxMessageSize datasize.ByteSize
}

// Option is a function that can be applied to a Config.
type Option func(*Config)

// WithChannel sets the channel whose blocks are requested from the peer.
func WithChannel(channel string) Option {
	return func(cfg *Config) {
		cfg.Channel = channel
	}
}

// WithMaxMessageSize sets the maximum size of a single message received from
// the peer. It bounds the size of the blocks that can be delivered.
func WithMaxMessageSize(size datasize.ByteSize) Option {
	return func(cfg *Config) {
		cfg.MaxMessageSize = size
	}
}
