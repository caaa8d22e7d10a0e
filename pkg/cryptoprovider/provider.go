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

// Package cryptoprovider isolates every raw cryptographic operation the
// certificate store needs behind a single capability interface, so the rest
// of the store never imports crypto/x509 directly.
package cryptoprovider

import (
	"crypto"
	"crypto/x509"
	"time"
)

// HashAlgorithm identifies a digest algorithm used for certificate hash identities.
type HashAlgorithm string

const (
	SHA256 HashAlgorithm = "SHA256"
	SHA384 HashAlgorithm = "SHA384"
	SHA512 HashAlgorithm = "SHA512"
)

// KeyType identifies the key algorithm and size to generate for a CSR.
type KeyType string

const (
	KeyTypeECP256   KeyType = "EC_P256"
	KeyTypeECP384   KeyType = "EC_P384"
	KeyTypeRSA2048  KeyType = "RSA_2048"
	KeyTypeRSA3072  KeyType = "RSA_3072"
	KeyTypeRSA7680  KeyType = "RSA_7680"
)

// ChainValidationError mirrors the original implementation's coarse
// chain-verification outcomes.
type ChainValidationError string

const (
	ChainValid                ChainValidationError = "Valid"
	ChainExpired              ChainValidationError = "Expired"
	ChainInvalidSignature     ChainValidationError = "InvalidSignature"
	ChainIssuerNotFound       ChainValidationError = "IssuerNotFound"
	ChainInvalidLeafSignature ChainValidationError = "InvalidLeafSignature"
	ChainInvalid              ChainValidationError = "InvalidChain"
	ChainUnknown              ChainValidationError = "Unknown"
)

// CSRInfo carries the parameters needed to generate a certificate signing request.
type CSRInfo struct {
	Country            string
	Organization       string
	CommonName         string
	DNSName            string
	IPAddress          string
	KeyType            KeyType
	OnCustomProvider   bool
	PrivateKeyPassword []byte
}

// Validity is the time window a certificate is valid for, expressed the same
// way the original implementation does: signed seconds offsets from now.
type Validity struct {
	ValidInSeconds int64
	ValidToSeconds int64
}

func (v Validity) IsValid() bool  { return v.ValidInSeconds <= 0 && v.ValidToSeconds >= 0 }
func (v Validity) IsExpired() bool { return v.ValidToSeconds < 0 }

// Provider is the capability set every cryptographic operation in the store
// goes through. The production implementation is built directly on the Go
// standard library plus github.com/youmark/pkcs8 for PKCS#8 key encoding.
type Provider interface {
	// ParseCertificates loads every certificate contained in PEM or DER data.
	ParseCertificates(data []byte) ([]*x509.Certificate, error)

	// EncodeCertificatePEM renders a certificate back to canonical PEM.
	EncodeCertificatePEM(cert *x509.Certificate) ([]byte, error)

	CommonName(cert *x509.Certificate) string
	ResponderURL(cert *x509.Certificate) string
	SerialNumberHex(cert *x509.Certificate) string
	IssuerNameHash(cert *x509.Certificate, alg HashAlgorithm) (string, error)
	KeyHash(cert *x509.Certificate, alg HashAlgorithm) (string, error)
	Validity(cert *x509.Certificate, now time.Time) Validity

	IsSelfSigned(cert *x509.Certificate) bool
	IsChildOf(child, parent *x509.Certificate) bool
	IsEqual(a, b *x509.Certificate) bool

	// VerifyChain checks target against trusted roots, with any number of
	// untrusted intermediates supplied separately, allowing certificates that
	// are not yet valid (the original implementation's allow_future_certificates).
	VerifyChain(target *x509.Certificate, untrustedIntermediates []*x509.Certificate, roots []*x509.Certificate, allowFutureCertificates bool) ChainValidationError

	// CheckPrivateKey reports whether keyPEM (optionally password protected)
	// is the private key matching cert's public key.
	CheckPrivateKey(cert *x509.Certificate, keyPEM []byte, password []byte) bool

	VerifySignature(cert *x509.Certificate, signature, data []byte) bool

	// GenerateCSR creates a new private key per info.KeyType and emits a PKCS#10
	// CSR. Returns the PEM-encoded CSR and the PEM (optionally encrypted PKCS#8)
	// encoded private key.
	GenerateCSR(info CSRInfo) (csrPEM []byte, keyPEM []byte, err error)

	DigestFileSHA256(path string) ([]byte, error)
	Base64Encode(data []byte) string
	Base64Decode(s string) ([]byte, error)

	// HashDir rebuilds openssl-rehash-style symlinks (hash.N -> certificate
	// file) inside dir so it can be used directly as a TLS trust store.
	HashDir(dir string) error
}

// PublicKeyEqual reports whether two public keys are cryptographically the same.
func PublicKeyEqual(a, b crypto.PublicKey) bool {
	type equaler interface {
		Equal(x crypto.PublicKey) bool
	}
	ea, ok := a.(equaler)
	if !ok {
		return false
	}
	return ea.Equal(b)
}
