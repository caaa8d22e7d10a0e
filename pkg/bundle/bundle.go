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

// Package bundle provides a uniform view over a collection of certificates
// backed by an in-memory string, a single PEM file, or a directory of PEM
// files, with idempotent mutation and atomic synchronization back to disk.
package bundle

import (
	"fmt"

	"github.com/evse-security/certstore/pkg/certwrapper"
	"github.com/evse-security/certstore/pkg/cryptoprovider"
	"github.com/evse-security/certstore/pkg/hierarchy"
)

// Source abstracts where a Bundle's certificates live: a string, a single
// file, or a directory of files. Each chain is keyed by its originating
// path ("" for the string source, since it has only one chain).
type Source interface {
	Load(provider cryptoprovider.Provider) (map[string][]*certwrapper.Certificate, error)
	Export(chains map[string][]*certwrapper.Certificate) error
	// AllowsPath reports whether a certificate destined for the given file
	// path may be added to this source (directory sources require the path
	// to be a descendant of the directory root).
	AllowsPath(path string) bool
}

// Bundle holds the loaded certificates for one Source, keyed by chain path.
type Bundle struct {
	source   Source
	provider cryptoprovider.Provider
	alg      cryptoprovider.HashAlgorithm
	chains   map[string][]*certwrapper.Certificate
	h        *hierarchy.Hierarchy
}

// Load reads every certificate the source currently holds.
func Load(source Source, provider cryptoprovider.Provider, alg cryptoprovider.HashAlgorithm) (*Bundle, error) {
	chains, err := source.Load(provider)
	if err != nil {
		return nil, fmt.Errorf("bundle: load: %w", err)
	}
	return &Bundle{source: source, provider: provider, alg: alg, chains: chains}, nil
}

// Split flattens every chain into a single slice of certificates.
func (b *Bundle) Split() []*certwrapper.Certificate {
	var all []*certwrapper.Certificate
	for _, chain := range b.chains {
		all = append(all, chain...)
	}
	return all
}

// Chains returns the raw chain map (path -> ordered certificates).
func (b *Bundle) Chains() map[string][]*certwrapper.Certificate { return b.chains }

func (b *Bundle) invalidate() { b.h = nil }

// Hierarchy lazily builds (or returns the cached) hierarchy over every
// certificate currently in the bundle.
func (b *Bundle) Hierarchy() *hierarchy.Hierarchy {
	if b.h == nil {
		b.h = hierarchy.Build(b.provider, b.alg, b.Split())
	}
	return b.h
}

// Contains reports whether cert (by identity) is present in the bundle.
func (b *Bundle) Contains(cert *certwrapper.Certificate) bool {
	for _, chain := range b.chains {
		for _, c := range chain {
			if c.Equal(cert) {
				return true
			}
		}
	}
	return false
}

// ContainsHash reports whether any certificate in the bundle has the given
// hash identity.
func (b *Bundle) ContainsHash(hash certwrapper.CertHash, caseInsensitive bool) bool {
	return b.Hierarchy().ContainsHash(hash, caseInsensitive)
}

// Find returns the first certificate in the bundle matching hash.
func (b *Bundle) Find(hash certwrapper.CertHash) *certwrapper.Certificate {
	node := b.Hierarchy().FindCertificate(hash)
	if node == nil {
		return nil
	}
	return node.Cert
}

// AddCertificate inserts cert under its own path (for directory sources the
// path must be a descendant of the directory root).
func (b *Bundle) AddCertificate(cert *certwrapper.Certificate) error {
	if !b.source.AllowsPath(cert.Path) {
		return ErrPathNotAllowed
	}
	b.chains[cert.Path] = append(b.chains[cert.Path], cert)
	b.invalidate()
	return nil
}

// AddCertificateUnique adds cert only if an equal certificate is not already
// present.
func (b *Bundle) AddCertificateUnique(cert *certwrapper.Certificate) error {
	if b.Contains(cert) {
		return nil
	}
	return b.AddCertificate(cert)
}

// UpdateCertificate replaces the first certificate equal to cert's path-mate
// in place, matched by identity.
func (b *Bundle) UpdateCertificate(cert *certwrapper.Certificate) bool {
	for path, chain := range b.chains {
		for i, c := range chain {
			if c.Equal(cert) {
				chain[i] = cert
				b.chains[path] = chain
				b.invalidate()
				return true
			}
		}
	}
	return false
}

// DeleteCertificate removes cert from the bundle. When includeIssued is
// true, every descendant of cert in the bundle's hierarchy is removed too.
func (b *Bundle) DeleteCertificate(cert *certwrapper.Certificate, includeIssued bool) bool {
	toRemove := map[*certwrapper.Certificate]bool{cert: true}
	if includeIssued {
		for _, n := range b.Hierarchy().CollectDescendants(cert) {
			toRemove[n.Cert] = true
		}
	}
	return b.removeCerts(toRemove)
}

// DeleteCertificateByHash resolves hash to a certificate (or several) in the
// hierarchy and deletes them, optionally including descendants.
func (b *Bundle) DeleteCertificateByHash(hash certwrapper.CertHash, includeIssued, caseInsensitive bool) bool {
	var nodes []*hierarchy.Node
	if caseInsensitive {
		h := b.Hierarchy()
		for _, n := range allNodes(h) {
			if n.Hash != nil && n.Hash.Equal(hash, true) {
				nodes = append(nodes, n)
			}
		}
	} else {
		nodes = b.Hierarchy().FindCertificatesMulti(hash)
	}
	if len(nodes) == 0 {
		return false
	}

	toRemove := map[*certwrapper.Certificate]bool{}
	for _, n := range nodes {
		toRemove[n.Cert] = true
		if includeIssued {
			for _, d := range b.Hierarchy().CollectDescendants(n.Cert) {
				toRemove[d.Cert] = true
			}
		}
	}
	return b.removeCerts(toRemove)
}

func allNodes(h *hierarchy.Hierarchy) []*hierarchy.Node {
	var out []*hierarchy.Node
	var rec func([]*hierarchy.Node)
	rec = func(nodes []*hierarchy.Node) {
		for _, n := range nodes {
			out = append(out, n)
			rec(n.Children)
		}
	}
	rec(h.Roots())
	return out
}

func (b *Bundle) removeCerts(toRemove map[*certwrapper.Certificate]bool) bool {
	removedAny := false
	for path, chain := range b.chains {
		kept := chain[:0:0]
		for _, c := range chain {
			remove := false
			for target := range toRemove {
				if c.Equal(target) {
					remove = true
					break
				}
			}
			if remove {
				removedAny = true
				continue
			}
			kept = append(kept, c)
		}
		b.chains[path] = kept
	}
	if removedAny {
		b.invalidate()
	}
	return removedAny
}

// IterateChains visits every chain in the bundle.
func (b *Bundle) IterateChains(visit func(path string, chain []*certwrapper.Certificate)) {
	for path, chain := range b.chains {
		visit(path, chain)
	}
}

// Sync writes the bundle's current in-memory state back to its source.
func (b *Bundle) Sync() error {
	for path, chain := range b.chains {
		if len(chain) == 0 {
			delete(b.chains, path)
		}
	}
	if err := b.source.Export(b.chains); err != nil {
		return fmt.Errorf("bundle: sync: %w", err)
	}
	return nil
}
