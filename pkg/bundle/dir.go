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

package bundle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/evse-security/certstore/pkg/certwrapper"
	"github.com/evse-security/certstore/pkg/cryptoprovider"
)

// DirSource is a directory containing one certificate (or small chain) per
// file, such as a CA bundle directory of individually-installed roots.
type DirSource struct {
	Dir string
}

var _ Source = (*DirSource)(nil)

func (d *DirSource) Load(provider cryptoprovider.Provider) (map[string][]*certwrapper.Certificate, error) {
	chains := map[string][]*certwrapper.Certificate{}

	if err := os.MkdirAll(d.Dir, 0700); err != nil {
		return nil, fmt.Errorf("bundle: create dir %s: %w", d.Dir, err)
	}

	entries, err := os.ReadDir(d.Dir)
	if err != nil {
		return nil, fmt.Errorf("bundle: read dir %s: %w", d.Dir, err)
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".pem" && ext != ".der" && ext != ".crt" {
			continue
		}
		path := filepath.Join(d.Dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		certs, err := certwrapper.ParseAll(provider, data, path)
		if err != nil {
			continue
		}
		chains[path] = certs
	}
	return chains, nil
}

// Export rewrites every non-empty chain to its file, deletes files for
// chains that became empty, and removes any on-disk file no longer
// represented in memory.
func (d *DirSource) Export(chains map[string][]*certwrapper.Certificate) error {
	existing, err := os.ReadDir(d.Dir)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("bundle: read dir %s: %w", d.Dir, err)
	}

	wanted := map[string]bool{}
	for path, chain := range chains {
		if len(chain) == 0 {
			continue
		}
		wanted[path] = true

		var out []byte
		for _, cert := range chain {
			pemBytes, err := cert.EncodePEM()
			if err != nil {
				return fmt.Errorf("bundle: encode %s: %w", path, err)
			}
			out = append(out, pemBytes...)
		}
		if err := atomicWriteFile(path, out, certsFilePerms); err != nil {
			return err
		}
	}

	for _, e := range existing {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(d.Dir, e.Name())
		if !wanted[path] {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("bundle: remove stale %s: %w", path, err)
			}
		}
	}
	return nil
}

func (d *DirSource) AllowsPath(path string) bool {
	if path == "" {
		return false
	}
	rel, err := filepath.Rel(d.Dir, path)
	if err != nil {
		return false
	}
	return !strings.HasPrefix(rel, "..")
}
