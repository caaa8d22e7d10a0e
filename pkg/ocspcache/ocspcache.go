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

// Package ocspcache stores and retrieves cached OCSP responses as sidecar
// files next to the certificate they describe. It never performs a live
// OCSP request; it only maintains a local hash-keyed response cache.
package ocspcache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/evse-security/certstore/pkg/certwrapper"
	"github.com/google/uuid"
	"golang.org/x/crypto/ocsp"
)

const sidecarFilePerms = 0600

// Entry pairs a cached response's hash identity with the file holding its
// DER-encoded OCSP response bytes.
type Entry struct {
	Hash    certwrapper.CertHash
	DERPath string
}

// dirFor returns the sidecar directory for a certificate stored at certPath.
func dirFor(certPath string) string {
	return filepath.Join(filepath.Dir(certPath), "ocsp")
}

// List returns every cached OCSP entry for the certificate at certPath.
func List(certPath string) ([]Entry, error) {
	dir := dirFor(certPath)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ocspcache: list %s: %w", dir, err)
	}

	var out []Entry
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".hash") {
			continue
		}
		hashPath := filepath.Join(dir, e.Name())
		hash, err := readHashFile(hashPath)
		if err != nil {
			continue
		}
		stem := strings.TrimSuffix(e.Name(), ".hash")
		out = append(out, Entry{Hash: hash, DERPath: filepath.Join(dir, stem+".der")})
	}
	return out, nil
}

// Retrieve returns the path to the cached DER response matching hash, or ""
// if none is cached.
func Retrieve(certPath string, hash certwrapper.CertHash) (string, error) {
	entries, err := List(certPath)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if e.Hash.Equal(hash, false) {
			return e.DERPath, nil
		}
	}
	return "", nil
}

// Update writes response as the cached OCSP response for hash, overwriting
// any previously cached response for the same hash in place. response is
// opportunistically parsed with golang.org/x/crypto/ocsp to reject a
// malformed blob before it is cached.
func Update(certPath string, hash certwrapper.CertHash, response []byte) error {
	if _, err := ocsp.ParseResponse(response, nil); err != nil {
		return fmt.Errorf("ocspcache: malformed OCSP response: %w", err)
	}

	dir := dirFor(certPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("ocspcache: create %s: %w", dir, err)
	}

	entries, err := List(certPath)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.Hash.Equal(hash, false) {
			return os.WriteFile(e.DERPath, response, sidecarFilePerms)
		}
	}

	stem := uuid.NewString()
	hashPath := filepath.Join(dir, stem+".hash")
	derPath := filepath.Join(dir, stem+".der")

	if err := os.WriteFile(hashPath, encodeHashFile(hash), sidecarFilePerms); err != nil {
		return fmt.Errorf("ocspcache: write %s: %w", hashPath, err)
	}
	if err := os.WriteFile(derPath, response, sidecarFilePerms); err != nil {
		return fmt.Errorf("ocspcache: write %s: %w", derPath, err)
	}
	return nil
}

// DeleteEntry removes both files of a cached entry.
func DeleteEntry(e Entry) error {
	hashPath := strings.TrimSuffix(e.DERPath, ".der") + ".hash"
	if err := os.Remove(hashPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := os.Remove(e.DERPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func encodeHashFile(hash certwrapper.CertHash) []byte {
	return []byte(fmt.Sprintf("%s\n%s\n%s\n%s\n", hash.Algorithm, hash.IssuerNameHash, hash.IssuerKeyHash, hash.SerialNumber))
}

func readHashFile(path string) (certwrapper.CertHash, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return certwrapper.CertHash{}, err
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		return certwrapper.CertHash{}, fmt.Errorf("ocspcache: malformed hash file %s", path)
	}
	return certwrapper.CertHash{
		Algorithm:      algFromString(lines[0]),
		IssuerNameHash: lines[1],
		IssuerKeyHash:  lines[2],
		SerialNumber:   lines[3],
	}, nil
}
