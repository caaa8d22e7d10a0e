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
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/evse-security/certstore/pkg/certwrapper"
	"github.com/evse-security/certstore/pkg/keypair"
	"github.com/evse-security/certstore/pkg/metrics"
	"github.com/evse-security/certstore/pkg/ocspcache"
)

// GarbageCollect runs the four reclamation phases the store uses to stay
// under its filesystem quota: it evicts the oldest expired leaf chains down
// to MinimumCertificateEntries, deletes private keys in a leaf key
// directory with no matching certificate, expires CSR keys that were never
// paired with a signed certificate, and removes OCSP sidecar files whose
// certificate is gone.
func (m *Manager) GarbageCollect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.gcExpiredLeaves(LeafCSMS); err != nil {
		return err
	}
	if err := m.gcExpiredLeaves(LeafV2G); err != nil {
		return err
	}
	if err := m.gcOrphanKeys(LeafCSMS); err != nil {
		return err
	}
	if err := m.gcOrphanKeys(LeafV2G); err != nil {
		return err
	}
	m.gcExpiredCSRs()
	if err := m.gcDanglingOCSP(LeafCSMS); err != nil {
		return err
	}
	if err := m.gcDanglingOCSP(LeafV2G); err != nil {
		return err
	}
	return nil
}

// gcExpiredLeaves removes expired chains from leafType's directory, keeping
// at least MinimumCertificateEntries of the newest chains regardless of
// expiry.
func (m *Manager) gcExpiredLeaves(leafType LeafCertificateType) error {
	b, err := m.loadLeafBundle(leafType)
	if err != nil {
		return err
	}

	type chainEntry struct {
		path string
		leaf *certwrapper.Certificate
	}
	var entries []chainEntry
	b.IterateChains(func(path string, certs []*certwrapper.Certificate) {
		if len(certs) > 0 {
			entries = append(entries, chainEntry{path: path, leaf: certs[0]})
		}
	})
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].leaf.X509.NotAfter.After(entries[j].leaf.X509.NotAfter)
	})

	var removed float64
	for i, e := range entries {
		if i < m.cfg.MinimumCertificateEntries {
			continue
		}
		if !e.leaf.IsExpired() {
			continue
		}
		for _, c := range b.Chains()[e.path] {
			b.DeleteCertificate(c, false)
		}
		removed++
	}
	if removed > 0 {
		if err := b.Sync(); err != nil {
			return err
		}
		metrics.RecordGarbageCollected("expired_leaf", removed)
	}
	return nil
}

// gcOrphanKeys deletes any private key file under leafType's key directory
// that no longer matches an installed certificate and is older than
// CSRExpiry.
func (m *Manager) gcOrphanKeys(leafType LeafCertificateType) error {
	certDir, keyDir, _, err := m.leafDirs(leafType)
	if err != nil || keyDir == "" {
		return nil
	}

	entries, err := os.ReadDir(keyDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var removed float64
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if time.Since(info.ModTime()) < m.cfg.CSRExpiry {
			continue
		}
		keyPath := filepath.Join(keyDir, e.Name())
		matches, err := keypair.FindCertificatesForKey(m.provider, keyPath, nil, certDir)
		if err != nil || len(matches) > 0 {
			continue
		}
		if os.Remove(keyPath) == nil {
			delete(m.managedCSRs, keyPath)
			removed++
		}
	}
	if removed > 0 {
		metrics.RecordGarbageCollected("orphan_key", removed)
	}
	return nil
}

// gcExpiredCSRs forgets any key the manager generated via GenerateCSR that
// is still unpaired after CSRExpiry has elapsed (the file itself is removed
// by gcOrphanKeys once its age crosses the same threshold).
func (m *Manager) gcExpiredCSRs() {
	var removed float64
	for path, issued := range m.managedCSRs {
		if time.Since(issued) < m.cfg.CSRExpiry {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			delete(m.managedCSRs, path)
			removed++
		}
	}
	if removed > 0 {
		metrics.RecordGarbageCollected("expired_csr", removed)
	}
}

// gcDanglingOCSP removes cached OCSP sidecar entries whose hash no longer
// identifies a certificate installed under leafType. All chain files in a
// leaf directory share the same "ocsp" sidecar subdirectory, so this scans
// it once per leaf type.
func (m *Manager) gcDanglingOCSP(leafType LeafCertificateType) error {
	certDir, _, _, err := m.leafDirs(leafType)
	if err != nil || certDir == "" {
		return nil
	}
	sidecarDir := filepath.Join(certDir, "ocsp")
	if _, err := os.Stat(sidecarDir); os.IsNotExist(err) {
		return nil
	}

	b, err := m.loadLeafBundle(leafType)
	if err != nil {
		return err
	}
	h := b.Hierarchy()

	entries, err := ocspcache.List(filepath.Join(certDir, "any.pem"))
	if err != nil {
		return err
	}

	var removed float64
	for _, e := range entries {
		if h.ContainsHash(e.Hash, false) {
			continue
		}
		if err := ocspcache.DeleteEntry(e); err == nil {
			removed++
		}
	}
	if removed > 0 {
		metrics.RecordGarbageCollected("dangling_ocsp", removed)
	}
	return nil
}
