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
)

// IsFilesystemFull reports whether installing another certificate would
// exceed either the configured entry count or byte-size quota.
func (m *Manager) IsFilesystemFull() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.IsFilesystemFullLocked()
}

// IsFilesystemFullLocked is IsFilesystemFull for callers that already hold mu.
func (m *Manager) IsFilesystemFullLocked() (bool, error) {
	entries, size, err := m.usageLocked()
	if err != nil {
		return false, err
	}
	if entries >= m.cfg.MaxFilesystemEntries {
		return true, nil
	}
	if size >= m.cfg.MaxFilesystemUsageBytes {
		return true, nil
	}
	return false, nil
}

// usageLocked sums the file count and byte size across every CA bundle and
// leaf directory the manager is configured to manage.
func (m *Manager) usageLocked() (entries int, sizeBytes int64, err error) {
	for _, path := range m.managedPaths() {
		n, sz, err := walkUsage(path)
		if err != nil {
			return 0, 0, err
		}
		entries += n
		sizeBytes += sz
	}
	return entries, sizeBytes, nil
}

func (m *Manager) managedPaths() []string {
	paths := []string{
		m.cfg.CSMSCABundle, m.cfg.MFCABundle, m.cfg.MOCABundle, m.cfg.V2GCABundle,
		m.cfg.CSMSLeafCertDir, m.cfg.CSMSLeafKeyDir,
		m.cfg.V2GLeafCertDir, m.cfg.V2GLeafKeyDir,
	}
	var out []string
	for _, p := range paths {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func walkUsage(path string) (entries int, sizeBytes int64, err error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, err
	}
	if !info.IsDir() {
		return 1, info.Size(), nil
	}

	err = filepath.Walk(path, func(p string, fi os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if fi.IsDir() {
			return nil
		}
		entries++
		sizeBytes += fi.Size()
		return nil
	})
	return entries, sizeBytes, err
}
