// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-keychain.
//
// go-keychain is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package ocspcache

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"path/filepath"
	"testing"
	"time"

	"github.com/evse-security/certstore/pkg/certwrapper"
	"github.com/evse-security/certstore/pkg/cryptoprovider"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ocsp"
)

func makeOCSPResponse(t *testing.T) []byte {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(42),
		Subject:               pkix.Name{CommonName: "responder"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		BasicConstraintsValid: true,
		IsCA:                  true,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	resp, err := ocsp.CreateResponse(cert, cert, ocsp.Response{
		Status:       ocsp.Good,
		SerialNumber: big.NewInt(42),
		ThisUpdate:   time.Now(),
		NextUpdate:   time.Now().Add(time.Hour),
	}, key)
	require.NoError(t, err)
	return resp
}

func TestUpdateAndRetrieve(t *testing.T) {
	dir := t.TempDir()
	certPath := filepath.Join(dir, "leaf.pem")

	hash := certHash(t)
	response := makeOCSPResponse(t)

	require.NoError(t, Update(certPath, hash, response))

	derPath, err := Retrieve(certPath, hash)
	require.NoError(t, err)
	require.NotEmpty(t, derPath)
}

func TestUpdateOverwritesInPlace(t *testing.T) {
	dir := t.TempDir()
	certPath := filepath.Join(dir, "leaf.pem")
	hash := certHash(t)

	require.NoError(t, Update(certPath, hash, makeOCSPResponse(t)))
	entries, err := List(certPath)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	firstPath := entries[0].DERPath

	require.NoError(t, Update(certPath, hash, makeOCSPResponse(t)))
	entries, err = List(certPath)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, firstPath, entries[0].DERPath)
}

func TestUpdateMalformedRejected(t *testing.T) {
	dir := t.TempDir()
	certPath := filepath.Join(dir, "leaf.pem")
	hash := certHash(t)

	err := Update(certPath, hash, []byte("not an ocsp response"))
	require.Error(t, err)
}

func certHash(t *testing.T) certwrapper.CertHash {
	t.Helper()
	return certwrapper.CertHash{
		Algorithm:      cryptoprovider.SHA256,
		IssuerNameHash: "aabbccdd",
		IssuerKeyHash:  "11223344",
		SerialNumber:   "2a",
	}
}
