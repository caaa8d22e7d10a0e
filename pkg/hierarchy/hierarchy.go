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

// Package hierarchy reconstructs the parent/child forest of an unordered bag
// of X.509 certificates and answers search queries against it: which
// certificate issued which, what hash identifies a node, which nodes
// descend from a given certificate.
package hierarchy

import (
	"github.com/evse-security/certstore/pkg/certwrapper"
	"github.com/evse-security/certstore/pkg/cryptoprovider"
)

// Node is one certificate's position in the forest.
type Node struct {
	Cert       *certwrapper.Certificate
	Hash       *certwrapper.CertHash
	IssuerCert *certwrapper.Certificate
	IsRoot     bool
	IsOrphan   bool
	Children   []*Node
}

// Hierarchy is an ordered forest of top-level nodes built from a set of
// certificates. It is not safe for concurrent mutation; callers serialize
// access (the store manager does this with its single mutex).
type Hierarchy struct {
	roots    []*Node
	alg      cryptoprovider.HashAlgorithm
	provider cryptoprovider.Provider
}

// New creates an empty hierarchy that will hash nodes with alg.
func New(provider cryptoprovider.Provider, alg cryptoprovider.HashAlgorithm) *Hierarchy {
	return &Hierarchy{provider: provider, alg: alg}
}

// Build constructs a hierarchy from an unordered set of certificates,
// draining trust anchors and candidates into the same insertion sequence.
func Build(provider cryptoprovider.Provider, alg cryptoprovider.HashAlgorithm, certs ...[]*certwrapper.Certificate) *Hierarchy {
	h := New(provider, alg)
	for _, set := range certs {
		for _, c := range set {
			h.Insert(c)
		}
	}
	h.finalPrune()
	return h
}

// Roots returns the top-level nodes of the forest.
func (h *Hierarchy) Roots() []*Node { return h.roots }

// Insert adds one certificate to the forest, following the insertion rule
// described in SPEC_FULL.md §4.2: self-signed certificates become roots and
// adopt any matching top-level orphans; otherwise the new certificate either
// becomes the parent of an existing top-level node, a child of one, or (if
// neither) a new top-level orphan.
func (h *Hierarchy) Insert(cert *certwrapper.Certificate) {
	if cert.IsSelfSigned() {
		hash, err := cert.HashData(h.alg)
		var hashPtr *certwrapper.CertHash
		if err == nil {
			hashPtr = &hash
		}
		root := &Node{Cert: cert, Hash: hashPtr, IssuerCert: cert, IsRoot: true}
		h.roots = append(h.roots, root)
		h.adoptOrphansUnder(root)
		return
	}

	for i, top := range h.roots {
		if top.Cert.IsChildOf(cert) {
			// The new certificate is the parent of an existing top-level
			// node: swap the existing top under the new node.
			hash, _ := top.Cert.HashDataAgainst(cert, h.alg)
			top.Hash = &hash
			top.IsOrphan = false
			top.IssuerCert = cert

			newTop := &Node{Cert: cert, IsOrphan: true}
			newTop.Children = append(newTop.Children, top)
			h.roots[i] = newTop
			return
		}
		if cert.IsChildOf(top.Cert) {
			hash, _ := cert.HashDataAgainst(top.Cert, h.alg)
			child := &Node{Cert: cert, Hash: &hash, IssuerCert: top.Cert}
			top.Children = append(top.Children, child)
			return
		}
	}

	h.roots = append(h.roots, &Node{Cert: cert, IsOrphan: true})
}

// adoptOrphansUnder scans the top level for any orphan that is in fact a
// child of newRoot, and moves it under newRoot with a freshly computed hash.
func (h *Hierarchy) adoptOrphansUnder(newRoot *Node) {
	remaining := h.roots[:0]
	for _, top := range h.roots {
		if top != newRoot && top.IsOrphan && top.Cert.IsChildOf(newRoot.Cert) {
			hash, err := top.Cert.HashDataAgainst(newRoot.Cert, h.alg)
			if err == nil {
				top.Hash = &hash
			}
			top.IsOrphan = false
			top.IssuerCert = newRoot.Cert
			newRoot.Children = append(newRoot.Children, top)
			continue
		}
		remaining = append(remaining, top)
	}
	h.roots = remaining
}

// finalPrune re-scans the remaining top-level orphans once all certificates
// have been inserted, attaching any whose issuer was only discovered later.
func (h *Hierarchy) finalPrune() {
	changed := true
	for changed {
		changed = false
		remaining := h.roots[:0:0]
		for _, top := range h.roots {
			if !top.IsOrphan {
				remaining = append(remaining, top)
				continue
			}
			issuer, issuerNode := h.findIssuer(top.Cert)
			if issuer == nil {
				remaining = append(remaining, top)
				continue
			}
			hash, err := top.Cert.HashDataAgainst(issuer, h.alg)
			if err == nil {
				top.Hash = &hash
			}
			top.IsOrphan = false
			top.IssuerCert = issuer
			issuerNode.Children = append(issuerNode.Children, top)
			changed = true
		}
		h.roots = remaining
	}
}

// findIssuer searches the whole forest (not just the top level) for a
// certificate that issued cert.
func (h *Hierarchy) findIssuer(cert *certwrapper.Certificate) (*certwrapper.Certificate, *Node) {
	var found *Node
	h.walk(func(n *Node) bool {
		if cert.IsChildOf(n.Cert) {
			found = n
			return false
		}
		return true
	})
	if found == nil {
		return nil, nil
	}
	return found.Cert, found
}

// walk visits every node in pre-order, stopping early if visit returns false.
func (h *Hierarchy) walk(visit func(*Node) bool) {
	var rec func(nodes []*Node) bool
	rec = func(nodes []*Node) bool {
		for _, n := range nodes {
			if !visit(n) {
				return false
			}
			if !rec(n.Children) {
				return false
			}
		}
		return true
	}
	rec(h.roots)
}

// IsRoot reports whether cert is a top-level, self-signed node.
func (h *Hierarchy) IsRoot(cert *certwrapper.Certificate) bool {
	for _, top := range h.roots {
		if top.IsRoot && top.Cert.Equal(cert) {
			return true
		}
	}
	return false
}

// FindCertificate returns the first node whose hash matches, or nil.
func (h *Hierarchy) FindCertificate(query certwrapper.CertHash) *Node {
	var found *Node
	h.walk(func(n *Node) bool {
		if n.Hash != nil && n.Hash.Equal(query, false) {
			found = n
			return false
		}
		return true
	})
	return found
}

// FindCertificatesMulti returns every node whose hash matches.
func (h *Hierarchy) FindCertificatesMulti(query certwrapper.CertHash) []*Node {
	var found []*Node
	h.walk(func(n *Node) bool {
		if n.Hash != nil && n.Hash.Equal(query, false) {
			found = append(found, n)
		}
		return true
	})
	return found
}

// ContainsHash reports whether any node matches query.
func (h *Hierarchy) ContainsHash(query certwrapper.CertHash, caseInsensitive bool) bool {
	found := false
	h.walk(func(n *Node) bool {
		if n.Hash != nil && n.Hash.Equal(query, caseInsensitive) {
			found = true
			return false
		}
		return true
	})
	return found
}

// CollectDescendants returns every node strictly beneath cert's node, in
// pre-order, excluding cert itself.
func (h *Hierarchy) CollectDescendants(cert *certwrapper.Certificate) []*Node {
	node := h.findNode(cert)
	if node == nil {
		return nil
	}
	var out []*Node
	var rec func([]*Node)
	rec = func(children []*Node) {
		for _, c := range children {
			out = append(out, c)
			rec(c.Children)
		}
	}
	rec(node.Children)
	return out
}

// FindRootNode returns the top-level node of the subtree containing leaf.
func (h *Hierarchy) FindRootNode(leaf *certwrapper.Certificate) *Node {
	for _, top := range h.roots {
		found := false
		h2 := &Hierarchy{roots: []*Node{top}}
		h2.walk(func(n *Node) bool {
			if n.Cert.Equal(leaf) {
				found = true
				return false
			}
			return true
		})
		if found {
			return top
		}
	}
	return nil
}

// FindRoot returns the root certificate of the subtree containing leaf, or
// nil if leaf is not present in the forest.
func (h *Hierarchy) FindRoot(leaf *certwrapper.Certificate) *certwrapper.Certificate {
	node := h.FindRootNode(leaf)
	if node == nil {
		return nil
	}
	return node.Cert
}

// GetCertificateHash returns the hash recorded for cert, if present in the
// forest; for a self-signed input it computes the self-hash directly, whether
// or not the certificate is in the forest.
func (h *Hierarchy) GetCertificateHash(cert *certwrapper.Certificate) (certwrapper.CertHash, bool) {
	if cert.IsSelfSigned() {
		if hash, err := cert.HashData(h.alg); err == nil {
			return hash, true
		}
	}
	node := h.findNode(cert)
	if node == nil || node.Hash == nil {
		return certwrapper.CertHash{}, false
	}
	return *node.Hash, true
}

func (h *Hierarchy) findNode(cert *certwrapper.Certificate) *Node {
	var found *Node
	h.walk(func(n *Node) bool {
		if n.Cert.Equal(cert) {
			found = n
			return false
		}
		return true
	})
	return found
}
