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
	"sort"
	"time"

	"github.com/evse-security/certstore/pkg/certwrapper"
	"github.com/evse-security/certstore/pkg/hierarchy"
	"github.com/evse-security/certstore/pkg/keypair"
	"github.com/evse-security/certstore/pkg/ocspcache"
)

// GetLeafCertificateInfo returns the currently installed leaf certificate
// for leafType along with its private key path and cached OCSP references.
func (m *Manager) GetLeafCertificateInfo(leafType LeafCertificateType, includeOCSP bool) (CertificateInfoStatus, *LeafCertificateInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, keyDir, caType, err := m.leafDirs(leafType)
	if err != nil {
		return InfoRejected, nil, err
	}

	leafBundle, err := m.loadLeafBundle(leafType)
	if err != nil {
		return InfoRejected, nil, err
	}

	type chainCandidate struct {
		path  string
		chain []*certwrapper.Certificate
	}
	var candidates []chainCandidate
	leafBundle.IterateChains(func(path string, certs []*certwrapper.Certificate) {
		if len(certs) == 0 {
			return
		}
		candidates = append(candidates, chainCandidate{path: path, chain: certs})
	})
	if len(candidates) == 0 {
		return InfoNotFound, nil, nil
	}

	// Newest to oldest by the leaf's own expiry, so a renewal in progress
	// (two chain files present before garbage collection sweeps the old
	// one) always prefers the fresher certificate.
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].chain[0].X509.NotAfter.After(candidates[j].chain[0].X509.NotAfter)
	})

	caBundle, caBundleErr := m.loadCABundle(caType)

	sawValid := false
	for _, cand := range candidates {
		leaf := cand.chain[0]
		if !leaf.IsValid() {
			continue
		}
		sawValid = true

		keyPath, err := keypair.FindKeyForCertificate(m.provider, leaf, keyDir, nil)
		if err != nil {
			return InfoRejected, nil, err
		}
		if keyPath == "" {
			continue
		}

		info := &LeafCertificateInfo{
			Type:            leafType,
			PrivateKeyPath:  keyPath,
			CertificatePath: cand.path,
			ChainPath:       cand.path,
		}

		if caBundleErr == nil {
			h := hierarchy.Build(m.provider, m.cfg.HashAlgorithm, caBundle.Split(), cand.chain)
			if root := h.FindRoot(leaf); root != nil {
				rootPEM, err := root.EncodePEM()
				if err != nil {
					return InfoRejected, nil, err
				}
				info.RootPEM = rootPEM
			}
		}

		if includeOCSP {
			entries, err := ocspcache.List(leaf.Path)
			if err != nil {
				return InfoRejected, nil, err
			}
			for _, e := range entries {
				info.OCSP = append(info.OCSP, ocspReference{Hash: e.Hash, DERPath: e.DERPath})
			}
		}

		return InfoAccepted, info, nil
	}

	if !sawValid {
		return InfoNotFoundValid, nil, nil
	}
	return InfoPrivateKeyNotFound, nil, nil
}

// GetAllValidCertificatesInfo returns, for every requested CA type, the
// currently valid roots and the hashes of their installed descendants.
func (m *Manager) GetAllValidCertificatesInfo(caTypes []CaCertificateType) (CertificateInfoStatus, []CertificateHashDataChain, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(caTypes) == 0 {
		caTypes = []CaCertificateType{CaCSMS, CaMF, CaMO, CaV2G}
	}

	var out []CertificateHashDataChain
	for _, caType := range caTypes {
		b, err := m.loadCABundle(caType)
		if err != nil {
			continue
		}
		h := b.Hierarchy()
		for _, root := range h.Roots() {
			if !root.Cert.IsValid() || root.Hash == nil {
				continue
			}
			var children []certwrapper.CertHash
			for _, d := range h.CollectDescendants(root.Cert) {
				if d.Hash != nil {
					children = append(children, *d.Hash)
				}
			}
			out = append(out, CertificateHashDataChain{
				CertificateType: caType,
				Hash:            *root.Hash,
				ChildHashes:     children,
			})
		}
	}
	if len(out) == 0 {
		return InfoNotFound, nil, nil
	}
	return InfoAccepted, out, nil
}

// GetLeafExpiryDaysCount returns the number of whole days remaining until
// the latest-expiring certificate installed for leafType expires, or 0 when
// no leaf certificate is installed.
func (m *Manager) GetLeafExpiryDaysCount(leafType LeafCertificateType) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	leafBundle, err := m.loadLeafBundle(leafType)
	if err != nil {
		return 0, err
	}

	var newest *certwrapper.Certificate
	leafBundle.IterateChains(func(_ string, certs []*certwrapper.Certificate) {
		if len(certs) == 0 {
			return
		}
		if newest == nil || certs[0].X509.NotAfter.After(newest.X509.NotAfter) {
			newest = certs[0]
		}
	})
	if newest == nil {
		return 0, nil
	}

	remaining := time.Until(newest.X509.NotAfter)
	return int(remaining.Hours() / 24), nil
}
