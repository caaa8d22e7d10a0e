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
	"os"

	"github.com/evse-security/certstore/pkg/certwrapper"
	"github.com/evse-security/certstore/pkg/keypair"
)

// UpdateCertificateLinks refreshes the stable symlinks an EVSE's TLS stack
// reads on boot (v2g leaf cert, v2g leaf key, v2g chain) to point at the
// currently installed V2G leaf identity.
func (m *Manager) UpdateCertificateLinks() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.refreshLinksLocked(); err != nil {
		return false, err
	}
	return true, nil
}

func (m *Manager) refreshLinksLocked() error {
	if m.cfg.V2GLeafCertLink == "" && m.cfg.V2GLeafKeyLink == "" && m.cfg.V2GChainLink == "" {
		return nil
	}

	_, keyDir, _, err := m.leafDirs(LeafV2G)
	if err != nil {
		return err
	}
	leafBundle, err := m.loadLeafBundle(LeafV2G)
	if err != nil {
		return err
	}

	var chainPath string
	var chain []*certwrapper.Certificate
	leafBundle.IterateChains(func(path string, certs []*certwrapper.Certificate) {
		if len(certs) == 0 {
			return
		}
		if chainPath == "" || certs[0].X509.NotBefore.After(chain[0].X509.NotBefore) {
			chainPath = path
			chain = certs
		}
	})
	if chainPath == "" {
		return nil
	}

	keyPath, err := keypair.FindKeyForCertificate(m.provider, chain[0], keyDir, nil)
	if err != nil {
		return err
	}

	if err := relink(m.cfg.V2GLeafCertLink, chainPath); err != nil {
		return err
	}
	if keyPath != "" {
		if err := relink(m.cfg.V2GLeafKeyLink, keyPath); err != nil {
			return err
		}
	}
	if err := relink(m.cfg.V2GChainLink, chainPath); err != nil {
		return err
	}
	return nil
}

func relink(link, target string) error {
	if link == "" {
		return nil
	}
	if err := os.Remove(link); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("certstore: remove stale link %s: %w", link, err)
	}
	if err := os.Symlink(target, link); err != nil {
		return fmt.Errorf("certstore: link %s -> %s: %w", link, target, err)
	}
	return nil
}
