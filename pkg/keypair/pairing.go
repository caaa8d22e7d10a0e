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

// Package keypair pairs private key files with certificate files by trial
// decryption: a key is considered to belong to a certificate only once the
// crypto provider confirms its public key matches.
package keypair

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/evse-security/certstore/pkg/certwrapper"
	"github.com/evse-security/certstore/pkg/cryptoprovider"
)

// DefaultKeyExtensions lists the file extensions considered private keys
// when scanning a key directory.
var DefaultKeyExtensions = []string{".key"}

// FindKeyForCertificate searches keyDir for the private key matching cert,
// trying the certificate's own file stem first as an optimization. Returns
// an empty path (no error) if no key matches.
func FindKeyForCertificate(provider cryptoprovider.Provider, cert *certwrapper.Certificate, keyDir string, password []byte, extraExtensions ...string) (string, error) {
	candidates, err := listKeyFiles(keyDir, extraExtensions...)
	if err != nil {
		return "", err
	}
	candidates = preferMatchingStem(candidates, cert.Path)

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if provider.CheckPrivateKey(cert.X509, data, password) {
			return path, nil
		}
	}
	return "", nil
}

// FindCertificatesForKey searches certDir for every bundle file containing a
// certificate matching the key at keyPath, trying the key's own file stem
// first as an optimization.
func FindCertificatesForKey(provider cryptoprovider.Provider, keyPath string, password []byte, certDir string) ([]string, error) {
	keyData, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(certDir)
	if err != nil {
		return nil, err
	}

	var candidates []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".pem" && ext != ".der" && ext != ".crt" {
			continue
		}
		candidates = append(candidates, filepath.Join(certDir, e.Name()))
	}
	candidates = preferMatchingStem(candidates, keyPath)

	var matches []string
	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		certs, err := certwrapper.ParseAll(provider, data, path)
		if err != nil {
			continue
		}
		for _, cert := range certs {
			if provider.CheckPrivateKey(cert.X509, keyData, password) {
				matches = append(matches, path)
				break
			}
		}
	}
	return matches, nil
}

func listKeyFiles(dir string, extraExtensions ...string) ([]string, error) {
	extensions := append([]string{}, DefaultKeyExtensions...)
	extensions = append(extensions, extraExtensions...)

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		for _, want := range extensions {
			if ext == want {
				files = append(files, filepath.Join(dir, e.Name()))
				break
			}
		}
	}
	return files, nil
}

// preferMatchingStem moves any candidate sharing referencePath's file stem
// to the front of the list.
func preferMatchingStem(candidates []string, referencePath string) []string {
	if referencePath == "" {
		return candidates
	}
	stem := stemOf(referencePath)

	var preferred, rest []string
	for _, c := range candidates {
		if stemOf(c) == stem {
			preferred = append(preferred, c)
		} else {
			rest = append(rest, c)
		}
	}
	return append(preferred, rest...)
}

func stemOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
