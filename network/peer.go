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

package network

import (
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Field names reported by the peer validator.
const (
	eventsField = "events"

	addressInvalid = "address"
)

// Address returns the host and port of the peer's event endpoint, without any
// URL scheme.
func (p *Peer) Address() string {
	address, _ := parseEndpoint(p.Events)
	return address
}

// Secure returns whether the peer should be reached over TLS. Endpoints with
// an explicit grpc:// scheme are plaintext; everything else uses TLS as soon
// as a CA certificate is configured.
func (p *Peer) Secure() bool {
	_, scheme := parseEndpoint(p.Events)
	if scheme == "grpc" {
		return false
	}
	return p.TLSCACerts != ""
}

func parseEndpoint(endpoint string) (string, string) {
	if !strings.Contains(endpoint, "://") {
		return endpoint, ""
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", ""
	}
	return u.Host, u.Scheme
}

func peerValidator(sl validator.StructLevel) {
	peer, ok := sl.Current().Interface().(Peer)
	if !ok {
		return
	}

	if peer.Events != "" && peer.Address() == "" {
		sl.ReportError(peer.Events, eventsField, eventsField, addressInvalid, "")
	}
}
