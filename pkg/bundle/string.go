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
	"github.com/evse-security/certstore/pkg/certwrapper"
	"github.com/evse-security/certstore/pkg/cryptoprovider"
)

// StringSource is an in-memory, non-exportable certificate source: useful
// for verifying a chain supplied inline in a request body without writing
// anything to disk.
type StringSource struct {
	Data []byte
}

var _ Source = (*StringSource)(nil)

func (s *StringSource) Load(provider cryptoprovider.Provider) (map[string][]*certwrapper.Certificate, error) {
	certs, err := certwrapper.ParseAll(provider, s.Data, "")
	if err != nil {
		return nil, err
	}
	return map[string][]*certwrapper.Certificate{"": certs}, nil
}

func (s *StringSource) Export(map[string][]*certwrapper.Certificate) error {
	return ErrStringSourceNotExportable
}

func (s *StringSource) AllowsPath(path string) bool { return path == "" }
