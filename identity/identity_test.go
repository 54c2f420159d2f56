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

package identity_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hyperledger/fabric-protos-go-apiv2/msp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"

	"github.com/optakt/block-edge/identity"
	"github.com/optakt/block-edge/testing/mocks"
)

func credentials(t *testing.T) (*ecdsa.PrivateKey, []byte, []byte) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "Admin@org1.example.com"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	require.NoError(t, err)

	keyDER, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)

	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyDER})
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})

	return key, keyPEM, certPEM
}

func TestFromFiles(t *testing.T) {

	t.Run("nominal case", func(t *testing.T) {
		t.Parallel()

		_, keyPEM, certPEM := credentials(t)
		dir := t.TempDir()
		keyPath := filepath.Join(dir, "key.pem")
		certPath := filepath.Join(dir, "cert.pem")
		require.NoError(t, os.WriteFile(keyPath, keyPEM, 0600))
		require.NoError(t, os.WriteFile(certPath, certPEM, 0600))

		id, err := identity.FromFiles(mocks.GenericMSPID, keyPath, certPath)

		require.NoError(t, err)
		assert.Equal(t, mocks.GenericMSPID, id.MSPID())
	})

	t.Run("handles missing files", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()

		_, err := identity.FromFiles(mocks.GenericMSPID, filepath.Join(dir, "key.pem"), filepath.Join(dir, "cert.pem"))

		assert.Error(t, err)
	})
}

func TestFromPEM(t *testing.T) {

	t.Run("handles invalid key", func(t *testing.T) {
		t.Parallel()

		_, _, certPEM := credentials(t)

		_, err := identity.FromPEM(mocks.GenericMSPID, mocks.GenericBytes, certPEM)
		assert.Error(t, err)

		garbage := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: mocks.GenericBytes})
		_, err = identity.FromPEM(mocks.GenericMSPID, garbage, certPEM)
		assert.Error(t, err)
	})

	t.Run("handles invalid certificate", func(t *testing.T) {
		t.Parallel()

		_, keyPEM, _ := credentials(t)

		_, err := identity.FromPEM(mocks.GenericMSPID, keyPEM, mocks.GenericBytes)

		assert.Error(t, err)
	})

	t.Run("handles certificate of other key", func(t *testing.T) {
		t.Parallel()

		_, keyPEM, _ := credentials(t)
		_, _, certPEM := credentials(t)

		_, err := identity.FromPEM(mocks.GenericMSPID, keyPEM, certPEM)

		assert.Error(t, err)
	})
}

func TestIdentity_Serialize(t *testing.T) {
	_, keyPEM, certPEM := credentials(t)
	id, err := identity.FromPEM(mocks.GenericMSPID, keyPEM, certPEM)
	require.NoError(t, err)

	data, err := id.Serialize()
	require.NoError(t, err)

	var serialized msp.SerializedIdentity
	err = proto.Unmarshal(data, &serialized)
	require.NoError(t, err)
	assert.Equal(t, mocks.GenericMSPID, serialized.Mspid)
	assert.Equal(t, certPEM, serialized.IdBytes)
}

func TestIdentity_Sign(t *testing.T) {
	key, keyPEM, certPEM := credentials(t)
	id, err := identity.FromPEM(mocks.GenericMSPID, keyPEM, certPEM)
	require.NoError(t, err)

	half := new(big.Int).Rsh(elliptic.P256().Params().N, 1)
	digest := sha256.Sum256(mocks.GenericBytes)
	for i := 0; i < 16; i++ {
		signature, err := id.Sign(mocks.GenericBytes)
		require.NoError(t, err)

		assert.True(t, ecdsa.VerifyASN1(&key.PublicKey, digest[:], signature))

		var decoded struct {
			R *big.Int
			S *big.Int
		}
		_, err = asn1.Unmarshal(signature, &decoded)
		require.NoError(t, err)
		assert.LessOrEqual(t, decoded.S.Cmp(half), 0)
	}
}
