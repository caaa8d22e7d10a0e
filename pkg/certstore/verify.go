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

package certstore

import (
	"fmt"

	"github.com/evse-security/certstore/pkg/certwrapper"
	"github.com/evse-security/certstore/pkg/cryptoprovider"
)

// leafCAType maps one leaf type to the single CA bundle that is its trust
// anchor, one to one: CSMS leaves verify only against the CSMS bundle, V2G
// leaves only against V2G, never a union of unrelated bundles.
func leafCAType(t LeafCertificateType) (CaCertificateType, bool) {
	switch t {
	case LeafCSMS:
		return CaCSMS, true
	case LeafV2G:
		return CaV2G, true
	case LeafMF:
		return CaMF, true
	case LeafMO:
		return CaMO, true
	default:
		return "", false
	}
}

// VerifyCertificate checks a received chain against the union of CA bundles
// trusted for leafTypes, accepting the chain if any one of them validates
// it.
func (m *Manager) VerifyCertificate(chainPEM []byte, leafTypes []LeafCertificateType) (cryptoprovider.ChainValidationError, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.verifyCertificateLocked(chainPEM, leafTypes)
}

// verifyCertificateLocked is VerifyCertificate's body, callable by other
// Manager methods that already hold mu (e.g. UpdateLeafCertificate).
func (m *Manager) verifyCertificateLocked(chainPEM []byte, leafTypes []LeafCertificateType) (cryptoprovider.ChainValidationError, error) {
	caTypes := map[CaCertificateType]struct{}{}
	for _, t := range leafTypes {
		if caType, ok := leafCAType(t); ok {
			caTypes[caType] = struct{}{}
		}
	}
	if len(caTypes) == 0 {
		return cryptoprovider.ChainIssuerNotFound, nil
	}

	chain, err := certwrapper.ParseAll(m.provider, chainPEM, "")
	if err != nil || len(chain) == 0 {
		return cryptoprovider.ChainInvalid, nil
	}
	leaf := chain[0]
	intermediates := toX509(chain[1:])

	var last cryptoprovider.ChainValidationError = cryptoprovider.ChainIssuerNotFound
	for caType := range caTypes {
		b, err := m.loadCABundle(caType)
		if err != nil {
			continue
		}
		result := m.provider.VerifyChain(leaf.X509, intermediates, toX509(b.Split()), true)
		if result == cryptoprovider.ChainValid {
			return cryptoprovider.ChainValid, nil
		}
		last = result
	}
	return last, nil
}

// GetVerifyLocation returns the CA bundle directory a TLS stack should use as
// its trust store for caType, after refreshing its openssl-rehash symlinks.
func (m *Manager) GetVerifyLocation(caType CaCertificateType) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	path, err := m.caBundlePath(caType)
	if err != nil {
		return "", err
	}
	if _, isDir := pathSourceKind(m, caType); !isDir {
		return "", fmt.Errorf("certstore: %s CA bundle is a single file, not a trust directory", caType)
	}
	if err := m.provider.HashDir(path); err != nil {
		return "", err
	}
	return path, nil
}

// GetVerifyFile returns the single-file CA bundle path for caType, suitable
// for a TLS stack that wants one PEM blob of trust anchors.
func (m *Manager) GetVerifyFile(caType CaCertificateType) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.caBundlePath(caType)
}
