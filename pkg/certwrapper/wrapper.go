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

// Package certwrapper wraps a single parsed X.509 certificate with the
// identity and validity queries the certificate store needs, without
// exposing crypto/x509 details to its callers.
package certwrapper

import (
	"crypto/x509"
	"fmt"
	"strings"
	"time"

	"github.com/evse-security/certstore/pkg/cryptoprovider"
)

// CertHash is the OCPP-style certificate hash identity: an algorithm plus the
// issuer name hash, issuer key hash, and serial number of one certificate.
type CertHash struct {
	Algorithm      cryptoprovider.HashAlgorithm
	IssuerNameHash string
	IssuerKeyHash  string
	SerialNumber   string
}

// IsValid reports whether every field of the hash is populated.
func (h CertHash) IsValid() bool {
	return h.Algorithm != "" && h.IssuerNameHash != "" && h.IssuerKeyHash != "" && h.SerialNumber != ""
}

// Equal compares two hashes, optionally ignoring case in the hex fields.
func (h CertHash) Equal(other CertHash, caseInsensitive bool) bool {
	if h.Algorithm != other.Algorithm {
		return false
	}
	if caseInsensitive {
		return strings.EqualFold(h.IssuerNameHash, other.IssuerNameHash) &&
			strings.EqualFold(h.IssuerKeyHash, other.IssuerKeyHash) &&
			strings.EqualFold(h.SerialNumber, other.SerialNumber)
	}
	return h.IssuerNameHash == other.IssuerNameHash &&
		h.IssuerKeyHash == other.IssuerKeyHash &&
		h.SerialNumber == other.SerialNumber
}

// Certificate owns one parsed X.509 certificate plus the file path it was
// loaded from, if any. The path may be reassigned when a certificate is
// moved between bundles.
type Certificate struct {
	X509 *x509.Certificate
	Path string

	provider cryptoprovider.Provider
}

// Wrap attaches crypto-provider-backed query methods to an already parsed
// certificate.
func Wrap(provider cryptoprovider.Provider, cert *x509.Certificate, path string) *Certificate {
	return &Certificate{X509: cert, Path: path, provider: provider}
}

// Parse decodes pemOrDER and wraps the first certificate found. Use
// ParseAll for multi-certificate input.
func Parse(provider cryptoprovider.Provider, data []byte, path string) (*Certificate, error) {
	certs, err := provider.ParseCertificates(data)
	if err != nil {
		return nil, err
	}
	return Wrap(provider, certs[0], path), nil
}

// ParseAll decodes every certificate in pemOrDER.
func ParseAll(provider cryptoprovider.Provider, data []byte, path string) ([]*Certificate, error) {
	certs, err := provider.ParseCertificates(data)
	if err != nil {
		return nil, err
	}
	wrapped := make([]*Certificate, len(certs))
	for i, c := range certs {
		wrapped[i] = Wrap(provider, c, path)
	}
	return wrapped, nil
}

func (c *Certificate) CommonName() string    { return c.provider.CommonName(c.X509) }
func (c *Certificate) ResponderURL() string  { return c.provider.ResponderURL(c.X509) }
func (c *Certificate) SerialNumber() string  { return c.provider.SerialNumberHex(c.X509) }
func (c *Certificate) IsSelfSigned() bool    { return c.provider.IsSelfSigned(c.X509) }

func (c *Certificate) IsChildOf(issuer *Certificate) bool {
	return c.provider.IsChildOf(c.X509, issuer.X509)
}

func (c *Certificate) Equal(other *Certificate) bool {
	if other == nil {
		return false
	}
	return c.provider.IsEqual(c.X509, other.X509)
}

func (c *Certificate) Validity(now time.Time) cryptoprovider.Validity {
	return c.provider.Validity(c.X509, now)
}

func (c *Certificate) IsValid() bool   { return c.Validity(time.Now()).IsValid() }
func (c *Certificate) IsExpired() bool { return c.Validity(time.Now()).IsExpired() }

// HashData computes this certificate's own hash identity, treating it as
// self-issued (used for root certificates).
func (c *Certificate) HashData(alg cryptoprovider.HashAlgorithm) (CertHash, error) {
	return c.HashDataAgainst(c, alg)
}

// HashDataAgainst computes this certificate's hash identity relative to the
// given issuer certificate. Returns an error if c is not a child of issuer
// (self-issuance counts as being its own issuer).
func (c *Certificate) HashDataAgainst(issuer *Certificate, alg cryptoprovider.HashAlgorithm) (CertHash, error) {
	if issuer != c && !c.IsChildOf(issuer) {
		return CertHash{}, fmt.Errorf("certwrapper: %q is not a child of %q", c.CommonName(), issuer.CommonName())
	}
	nameHash, err := c.provider.IssuerNameHash(issuer.X509, alg)
	if err != nil {
		return CertHash{}, err
	}
	keyHash, err := c.provider.KeyHash(issuer.X509, alg)
	if err != nil {
		return CertHash{}, err
	}
	return CertHash{
		Algorithm:      alg,
		IssuerNameHash: nameHash,
		IssuerKeyHash:  keyHash,
		SerialNumber:   c.SerialNumber(),
	}, nil
}

// EncodePEM renders the certificate back to canonical PEM.
func (c *Certificate) EncodePEM() ([]byte, error) {
	return c.provider.EncodeCertificatePEM(c.X509)
}
