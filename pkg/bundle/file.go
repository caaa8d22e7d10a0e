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

	"github.com/evse-security/certstore/pkg/certwrapper"
	"github.com/evse-security/certstore/pkg/cryptoprovider"
)

const certsFilePerms = 0644

// FileSource is a single file holding one or more PEM-encoded certificates
// (a leaf cert, or a leaf-plus-intermediates chain).
type FileSource struct {
	Path string
}

var _ Source = (*FileSource)(nil)

func (f *FileSource) Load(provider cryptoprovider.Provider) (map[string][]*certwrapper.Certificate, error) {
	data, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return map[string][]*certwrapper.Certificate{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("bundle: read %s: %w", f.Path, err)
	}
	certs, err := certwrapper.ParseAll(provider, data, f.Path)
	if err != nil {
		return nil, fmt.Errorf("bundle: parse %s: %w", f.Path, err)
	}
	return map[string][]*certwrapper.Certificate{f.Path: certs}, nil
}

// Export writes every certificate back to f.Path using a write-then-rename
// so a reader never observes a partially written file. An empty chain
// deletes the file.
func (f *FileSource) Export(chains map[string][]*certwrapper.Certificate) error {
	chain := chains[f.Path]
	if len(chain) == 0 {
		if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("bundle: remove %s: %w", f.Path, err)
		}
		return nil
	}

	var out []byte
	for _, cert := range chain {
		pemBytes, err := cert.EncodePEM()
		if err != nil {
			return fmt.Errorf("bundle: encode %s: %w", f.Path, err)
		}
		out = append(out, pemBytes...)
	}

	return atomicWriteFile(f.Path, out, certsFilePerms)
}

func (f *FileSource) AllowsPath(path string) bool { return path == f.Path }

func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("bundle: create temp file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("bundle: write %s: %w", tmpPath, err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return fmt.Errorf("bundle: chmod %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("bundle: close %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("bundle: rename %s to %s: %w", tmpPath, path, err)
	}
	return nil
}
