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

package hierarchy

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"testing"
	"time"

	"github.com/evse-security/certstore/pkg/certwrapper"
	"github.com/evse-security/certstore/pkg/cryptoprovider"
	"github.com/stretchr/testify/require"
)

type testCA struct {
	cert *x509.Certificate
	key  *ecdsa.PrivateKey
}

func mustRoot(t *testing.T, cn string) testCA {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(time.Now().UnixNano()),
		Subject:               pkix.Name{CommonName: cn},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		BasicConstraintsValid: true,
		IsCA:                  true,
		KeyUsage:              x509.KeyUsageCertSign,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)
	return testCA{cert: cert, key: key}
}

func mustChild(t *testing.T, cn string, parent testCA, isCA bool) testCA {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(time.Now().UnixNano()),
		Subject:               pkix.Name{CommonName: cn},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		BasicConstraintsValid: true,
		IsCA:                  isCA,
		KeyUsage:              x509.KeyUsageDigitalSignature,
	}
	if isCA {
		tmpl.KeyUsage |= x509.KeyUsageCertSign
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, parent.cert, &key.PublicKey, parent.key)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)
	return testCA{cert: cert, key: key}
}

func TestBuildSimpleChain(t *testing.T) {
	provider := cryptoprovider.New()
	root := mustRoot(t, "root")
	sub := mustChild(t, "sub-ca", root, true)
	leaf := mustChild(t, "leaf", sub, false)

	certs := []*certwrapper.Certificate{
		certwrapper.Wrap(provider, leaf.cert, ""),
		certwrapper.Wrap(provider, root.cert, ""),
		certwrapper.Wrap(provider, sub.cert, ""),
	}

	h := Build(provider, cryptoprovider.SHA256, certs)
	require.Len(t, h.Roots(), 1)
	require.True(t, h.IsRoot(certs[1]))

	descendants := h.CollectDescendants(certs[1])
	require.Len(t, descendants, 2)
}

func TestOrphanResolvedOnFinalPrune(t *testing.T) {
	provider := cryptoprovider.New()
	root := mustRoot(t, "root")
	sub := mustChild(t, "sub-ca", root, true)
	leaf := mustChild(t, "leaf", sub, false)

	// Insert leaf and root first; sub-ca (the missing link) arrives last.
	certs := []*certwrapper.Certificate{
		certwrapper.Wrap(provider, leaf.cert, ""),
		certwrapper.Wrap(provider, root.cert, ""),
		certwrapper.Wrap(provider, sub.cert, ""),
	}

	h := Build(provider, cryptoprovider.SHA256, certs)
	require.Len(t, h.Roots(), 1)

	rootHash, ok := h.GetCertificateHash(certs[1])
	require.True(t, ok)
	require.True(t, rootHash.IsValid())
}

func TestPermanentOrphan(t *testing.T) {
	provider := cryptoprovider.New()
	a := mustRoot(t, "a")
	b := mustChild(t, "b", a, false)

	// Only the child is known; its issuer is never inserted.
	certs := []*certwrapper.Certificate{certwrapper.Wrap(provider, b.cert, "")}
	h := Build(provider, cryptoprovider.SHA256, certs)

	require.Len(t, h.Roots(), 1)
	require.True(t, h.Roots()[0].IsOrphan)
}

func TestFindCertificatesMulti(t *testing.T) {
	provider := cryptoprovider.New()
	root := mustRoot(t, "root")
	leaf1 := mustChild(t, "leaf1", root, false)

	certs := []*certwrapper.Certificate{
		certwrapper.Wrap(provider, root.cert, ""),
		certwrapper.Wrap(provider, leaf1.cert, ""),
	}
	h := Build(provider, cryptoprovider.SHA256, certs)

	hash, ok := h.GetCertificateHash(certs[1])
	require.True(t, ok)
	matches := h.FindCertificatesMulti(hash)
	require.Len(t, matches, 1)
}
