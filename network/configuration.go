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
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
)

// Configuration is the network configuration of the ledger, listing its
// organizations in the order in which they appear in the file.
type Configuration struct {
	Organizations []*Organization
}

// Organization is one member organization of the ledger network. Object
// entries of an organization other than its user are its peers, keyed by their
// capability tag (for example "peer0" or "anchor0").
type Organization struct {
	Key   string           `json:"-"`
	Name  string           `json:"name" validate:"required"`
	MSPID string           `json:"mspid" validate:"required"`
	User  User             `json:"user"`
	Peers map[string]*Peer `json:"-"`
}

// User holds the paths to the PEM files of the organization's admin user.
type User struct {
	Name string `json:"name"`
	Key  string `json:"key" validate:"required"`
	Cert string `json:"cert" validate:"required"`
}

// Peer holds the endpoints and TLS settings of one peer.
type Peer struct {
	Requests       string `json:"requests"`
	Events         string `json:"events" validate:"required"`
	ServerHostname string `json:"server-hostname"`
	TLSCACerts     string `json:"tls_cacerts"`
}

// FromFile reads the network configuration from the file at the given path.
func FromFile(path string) (*Configuration, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open network configuration: %w", err)
	}
	defer f.Close()

	return FromReader(f)
}

// FromReader reads the network configuration from the given reader.
func FromReader(r io.Reader) (*Configuration, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("could not read network configuration: %w", err)
	}

	var cfg Configuration
	err = json.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("could not decode network configuration: %w", err)
	}

	return &cfg, nil
}

// UnmarshalJSON implements json.Unmarshaler. It keeps the organizations in
// file order, so that lookups return the same organization as the file reads.
func (c *Configuration) UnmarshalJSON(data []byte) error {

	dec := json.NewDecoder(bytes.NewReader(data))
	token, err := dec.Token()
	if err != nil {
		return fmt.Errorf("could not read configuration start: %w", err)
	}
	if token != json.Delim('{') {
		return errors.New("configuration is not a JSON object")
	}

	c.Organizations = nil
	for dec.More() {
		token, err := dec.Token()
		if err != nil {
			return fmt.Errorf("could not read organization key: %w", err)
		}
		key := token.(string)

		var raw json.RawMessage
		err = dec.Decode(&raw)
		if err != nil {
			return fmt.Errorf("could not read organization (key: %s): %w", key, err)
		}

		// Non-object entries can't be organizations.
		if !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) {
			continue
		}

		var org Organization
		err = json.Unmarshal(raw, &org)
		if err != nil {
			return fmt.Errorf("could not decode organization (key: %s): %w", key, err)
		}
		org.Key = key

		c.Organizations = append(c.Organizations, &org)
	}

	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Organization) UnmarshalJSON(data []byte) error {

	var fields map[string]json.RawMessage
	err := json.Unmarshal(data, &fields)
	if err != nil {
		return err
	}

	o.Peers = make(map[string]*Peer)
	for key, value := range fields {
		switch key {
		case "name":
			err = json.Unmarshal(value, &o.Name)
		case "mspid":
			err = json.Unmarshal(value, &o.MSPID)
		case "user":
			err = json.Unmarshal(value, &o.User)
		default:
			if !bytes.HasPrefix(bytes.TrimSpace(value), []byte("{")) {
				continue
			}
			var peer Peer
			err = json.Unmarshal(value, &peer)
			o.Peers[key] = &peer
		}
		if err != nil {
			return fmt.Errorf("could not decode field (key: %s): %w", key, err)
		}
	}

	return nil
}

// Organization returns the first organization holding a peer whose key
// contains the given capability tag.
func (c *Configuration) Organization(tag string) (*Organization, bool) {
	for _, org := range c.Organizations {
		for key := range org.Peers {
			if strings.Contains(key, tag) {
				return org, true
			}
		}
	}
	return nil, false
}

// Peer returns the peer with the given key.
func (o *Organization) Peer(tag string) (*Peer, bool) {
	peer, ok := o.Peers[tag]
	return peer, ok
}

// AdminName returns the name under which the organization's admin user is
// known.
func (o *Organization) AdminName() string {
	return "peer" + o.Name + "Admin"
}

// Validate checks that the organization holds everything needed to connect
// to the peer with the given tag. All problems are reported at once.
func (o *Organization) Validate(tag string) error {

	validate := validator.New()
	validate.RegisterStructValidation(peerValidator, Peer{})

	var merr *multierror.Error
	merr = appendInvalid(merr, validate.Struct(o))

	peer, ok := o.Peer(tag)
	if !ok {
		merr = multierror.Append(merr, fmt.Errorf("missing peer (tag: %s)", tag))
		return merr.ErrorOrNil()
	}
	merr = appendInvalid(merr, validate.Struct(peer))

	return merr.ErrorOrNil()
}

func appendInvalid(merr *multierror.Error, err error) *multierror.Error {
	if err == nil {
		return merr
	}

	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		return multierror.Append(merr, fmt.Errorf("could not validate: %w", err))
	}

	for _, field := range fields {
		merr = multierror.Append(merr, fmt.Errorf("invalid field %s (tag: %s)", field.Namespace(), field.Tag()))
	}

	return merr
}
