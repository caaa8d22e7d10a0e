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
	"github.com/evse-security/certstore/pkg/certwrapper"
	"github.com/evse-security/certstore/pkg/hierarchy"
	"github.com/evse-security/certstore/pkg/ocspcache"
)

// GetV2GOCSPRequestData returns deduplicated OCSP request entries for every
// currently valid V2G leaf chain installed in storage, walking each chain
// from its self-signed V2G root down to the leaf.
func (m *Manager) GetV2GOCSPRequestData() ([]OCSPRequestDataItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	leafBundle, err := m.loadLeafBundle(LeafV2G)
	if err != nil {
		return nil, err
	}
	rootBundle, err := m.loadCABundle(CaV2G)
	if err != nil {
		return nil, err
	}
	roots := rootBundle.Split()

	var out []OCSPRequestDataItem
	leafBundle.IterateChains(func(_ string, chain []*certwrapper.Certificate) {
		if len(chain) == 0 || !chain[0].IsValid() {
			return
		}
		for _, item := range m.generateOCSPRequestData(roots, chain) {
			out = appendUniqueOCSPItem(out, item)
		}
	})
	return out, nil
}

// GetMOOCSPRequestData returns deduplicated OCSP request entries for the
// supplied MO leaf chain, checked against both the installed V2G and MO
// root bundles.
func (m *Manager) GetMOOCSPRequestData(chainPEM []byte) ([]OCSPRequestDataItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	chain, err := certwrapper.ParseAll(m.provider, chainPEM, "")
	if err != nil {
		return nil, err
	}

	var roots []*certwrapper.Certificate
	for _, caType := range []CaCertificateType{CaV2G, CaMO} {
		b, err := m.loadCABundle(caType)
		if err != nil {
			continue
		}
		roots = append(roots, b.Split()...)
	}

	return m.generateOCSPRequestData(roots, chain), nil
}

// generateOCSPRequestData builds a hierarchy from roots plus leafChain, then
// walks the descendants of each valid self-signed root looking for one whose
// subtree contains every certificate in leafChain. For the first such root it
// emits deduplicated, non-empty-responder-URL entries from leaf up to (but
// excluding) the root itself.
func (m *Manager) generateOCSPRequestData(roots, leafChain []*certwrapper.Certificate) []OCSPRequestDataItem {
	if len(leafChain) == 0 {
		return nil
	}

	h := hierarchy.Build(m.provider, m.cfg.HashAlgorithm, roots, leafChain)

	var out []OCSPRequestDataItem
	for _, root := range h.Roots() {
		if !root.IsRoot || !root.Cert.IsValid() {
			continue
		}

		descendants := h.CollectDescendants(root.Cert)
		if len(descendants) == 0 {
			continue
		}

		missingLink := false
		for _, link := range leafChain {
			found := false
			for _, d := range descendants {
				if d.Cert.Equal(link) {
					found = true
					break
				}
			}
			if !found {
				missingLink = true
				break
			}
		}
		if missingLink {
			continue
		}

		for i := len(descendants) - 1; i >= 0; i-- {
			node := descendants[i]
			url := node.Cert.ResponderURL()
			if url == "" || node.Hash == nil {
				continue
			}
			out = appendUniqueOCSPItem(out, OCSPRequestDataItem{Hash: *node.Hash, ResponderURL: url})
		}
	}
	return out
}

func appendUniqueOCSPItem(items []OCSPRequestDataItem, item OCSPRequestDataItem) []OCSPRequestDataItem {
	for _, existing := range items {
		if existing.Hash.Equal(item.Hash, false) {
			return items
		}
	}
	return append(items, item)
}

// UpdateOCSPCache caches response for the certificate identified by hash,
// searching every CA bundle and leaf directory the manager knows about.
func (m *Manager) UpdateOCSPCache(hash certwrapper.CertHash, response []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	certPath, err := m.resolveCertPathForHash(hash)
	if err != nil {
		return err
	}
	return ocspcache.Update(certPath, hash, response)
}

// RetrieveOCSPCache returns the path to the cached DER-encoded OCSP response
// for hash, or "" if none is cached.
func (m *Manager) RetrieveOCSPCache(hash certwrapper.CertHash) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	certPath, err := m.resolveCertPathForHash(hash)
	if err != nil {
		return "", err
	}
	return ocspcache.Retrieve(certPath, hash)
}

func (m *Manager) resolveCertPathForHash(hash certwrapper.CertHash) (string, error) {
	for _, caType := range []CaCertificateType{CaCSMS, CaMF, CaMO, CaV2G} {
		b, err := m.loadCABundle(caType)
		if err != nil {
			continue
		}
		if node := b.Hierarchy().FindCertificate(hash); node != nil {
			return node.Cert.Path, nil
		}
	}
	for _, leafType := range []LeafCertificateType{LeafCSMS, LeafV2G} {
		certDir, _, _, err := m.leafDirs(leafType)
		if err != nil || certDir == "" {
			continue
		}
		b, err := m.loadLeafBundle(leafType)
		if err != nil {
			continue
		}
		if node := b.Hierarchy().FindCertificate(hash); node != nil {
			return node.Cert.Path, nil
		}
	}
	return "", ErrUnknownCaType
}
