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

// IsCACertificateInstalled reports whether caType's bundle currently holds
// at least one valid, self-signed root.
func (m *Manager) IsCACertificateInstalled(caType CaCertificateType) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, err := m.loadCABundle(caType)
	if err != nil {
		return false, err
	}
	for _, root := range b.Hierarchy().Roots() {
		if root.IsRoot && root.Cert.IsValid() {
			return true, nil
		}
	}
	return false, nil
}

// GetCountOfInstalledCertificates returns the total number of certificates
// across the given CA bundles, deduplicating bundles that share the same
// underlying path (e.g. CSMS and MF may point at the same file). When
// includeV2GLeafChain is set, the V2G leaf directory's certificates
// (including expired or unused ones) are added to the total as well.
func (m *Manager) GetCountOfInstalledCertificates(caTypes []CaCertificateType, includeV2GLeafChain bool) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := map[string]bool{}
	count := 0
	for _, caType := range caTypes {
		path, err := m.caBundlePath(caType)
		if err != nil || seen[path] {
			continue
		}
		seen[path] = true

		b, err := m.loadCABundle(caType)
		if err != nil {
			continue
		}
		count += len(b.Split())
	}

	if includeV2GLeafChain {
		b, err := m.loadLeafBundle(LeafV2G)
		if err != nil {
			return count, err
		}
		count += len(b.Split())
	}

	return count, nil
}
