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

package identity

import (
	"crypto"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"

	gateway "github.com/hyperledger/fabric-gateway/pkg/identity"
)

// Identity is the MSP identity of the organization's admin user. It signs the
// requests sent to the peer.
type Identity struct {
	id   *gateway.X509Identity
	sign gateway.Sign
}

// FromFiles loads an identity from the PEM encoded private key and
// certificate at the given paths.
func FromFiles(mspID string, keyPath string, certPath string) (*Identity, error) {

	keyPEM, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("could not read private key: %w", err)
	}
	certPEM, err := os.ReadFile(certPath)
	if err != nil {
		return nil, fmt.Errorf("could not read certificate: %w", err)
	}

	return FromPEM(mspID, keyPEM, certPEM)
}

// FromPEM creates an identity from a PEM encoded private key and certificate.
func FromPEM(mspID string, keyPEM []byte, certPEM []byte) (*Identity, error) {

	key, err := gateway.PrivateKeyFromPEM(keyPEM)
	if err != nil {
		return nil, fmt.Errorf("could not parse private key: %w", err)
	}
	cert, err := gateway.CertificateFromPEM(certPEM)
	if err != nil {
		return nil, fmt.Errorf("could not parse certificate: %w", err)
	}

	signer, ok := key.(crypto.Signer)
	if !ok {
		return nil, fmt.Errorf("unsupported private key type (%T)", key)
	}
	public, ok := cert.PublicKey.(interface{ Equal(crypto.PublicKey) bool })
	if !ok || !public.Equal(signer.Public()) {
		return nil, errors.New("certificate does not match private key")
	}

	id, err := gateway.NewX509Identity(mspID, cert)
	if err != nil {
		return nil, fmt.Errorf("could not create identity: %w", err)
	}
	sign, err := gateway.NewPrivateKeySign(key)
	if err != nil {
		return nil, fmt.Errorf("could not create signer: %w", err)
	}

	i := Identity{
		id:   id,
		sign: sign,
	}

	return &i, nil
}

// MSPID returns the identifier of the membership service provider the
// identity belongs to.
func (i *Identity) MSPID() string {
	return i.id.MspID()
}

// Serialize returns the identity in the form peers expect as creator of a
// request.
func (i *Identity) Serialize() ([]byte, error) {
	data, err := gateway.Serialize(i.id)
	if err != nil {
		return nil, fmt.Errorf("could not encode identity: %w", err)
	}
	return data, nil
}

// Sign returns the DER encoded ECDSA signature of the SHA-256 digest of the
// message, with S in the lower half of the curve order.
func (i *Identity) Sign(message []byte) ([]byte, error) {
	digest := sha256.Sum256(message)
	signature, err := i.sign(digest[:])
	if err != nil {
		return nil, fmt.Errorf("could not sign message: %w", err)
	}
	return signature, nil
}
