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

package cryptoprovider

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	youmarkpkcs8 "github.com/youmark/pkcs8"
)

// StdProvider is the production Provider implementation, built directly on
// the Go standard library plus github.com/youmark/pkcs8 for PKCS#8 key
// marshaling with optional password encryption.
type StdProvider struct{}

// New returns the standard library backed crypto provider.
func New() *StdProvider { return &StdProvider{} }

var _ Provider = (*StdProvider)(nil)

// ParseCertificates splits concatenated PEM or raw DER data into individual
// certificates, the same way pkg/storage/adapters.go does for stored chains.
func (p *StdProvider) ParseCertificates(data []byte) ([]*x509.Certificate, error) {
	if block, _ := pem.Decode(data); block != nil {
		var certs []*x509.Certificate
		rest := data
		for {
			block, remainder := pem.Decode(rest)
			if block == nil {
				break
			}
			if block.Type == "CERTIFICATE" {
				cert, err := x509.ParseCertificate(block.Bytes)
				if err != nil {
					return nil, fmt.Errorf("cryptoprovider: parse PEM certificate: %w", err)
				}
				certs = append(certs, cert)
			}
			rest = remainder
		}
		if len(certs) == 0 {
			return nil, ErrNoCertificatesFound
		}
		return certs, nil
	}

	// Fall back to a concatenated-DER split, mirroring
	// pkg/storage/adapters.go's GetCertChainParsed loop.
	var certs []*x509.Certificate
	rest := data
	for len(rest) > 0 {
		var raw asn1.RawValue
		tail, err := asn1.Unmarshal(rest, &raw)
		if err != nil {
			return nil, fmt.Errorf("cryptoprovider: parse DER certificate: %w", err)
		}
		cert, err := x509.ParseCertificate(rest[:len(rest)-len(tail)])
		if err != nil {
			return nil, fmt.Errorf("cryptoprovider: parse DER certificate: %w", err)
		}
		certs = append(certs, cert)
		rest = tail
	}
	if len(certs) == 0 {
		return nil, ErrNoCertificatesFound
	}
	return certs, nil
}

func (p *StdProvider) EncodeCertificatePEM(cert *x509.Certificate) ([]byte, error) {
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw}), nil
}

func (p *StdProvider) CommonName(cert *x509.Certificate) string {
	return cert.Subject.CommonName
}

func (p *StdProvider) ResponderURL(cert *x509.Certificate) string {
	if len(cert.OCSPServer) > 0 {
		return cert.OCSPServer[0]
	}
	return ""
}

func (p *StdProvider) SerialNumberHex(cert *x509.Certificate) string {
	return hex.EncodeToString(cert.SerialNumber.Bytes())
}

func newHasher(alg HashAlgorithm) (func([]byte) []byte, error) {
	switch alg {
	case SHA256, "":
		return func(b []byte) []byte { s := sha256.Sum256(b); return s[:] }, nil
	case SHA384:
		return func(b []byte) []byte { s := sha512.Sum384(b); return s[:] }, nil
	case SHA512:
		return func(b []byte) []byte { s := sha512.Sum512(b); return s[:] }, nil
	default:
		return nil, fmt.Errorf("cryptoprovider: unsupported hash algorithm %q", alg)
	}
}

// IssuerNameHash hashes cert's own raw subject bytes (the DER encoding of the
// pkix.Name), matching the OCPP CertificateHashData.issuerNameHash semantics
// when cert is itself used as the issuer of a child.
func (p *StdProvider) IssuerNameHash(cert *x509.Certificate, alg HashAlgorithm) (string, error) {
	hash, err := newHasher(alg)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(hash(cert.RawSubject)), nil
}

// KeyHash hashes the DER bytes of cert's SubjectPublicKeyInfo.
func (p *StdProvider) KeyHash(cert *x509.Certificate, alg HashAlgorithm) (string, error) {
	hash, err := newHasher(alg)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(hash(cert.RawSubjectPublicKeyInfo)), nil
}

func (p *StdProvider) Validity(cert *x509.Certificate, now time.Time) Validity {
	return Validity{
		ValidInSeconds: int64(cert.NotBefore.Sub(now).Seconds()),
		ValidToSeconds: int64(cert.NotAfter.Sub(now).Seconds()),
	}
}

func (p *StdProvider) IsSelfSigned(cert *x509.Certificate) bool {
	if !bytesEqual(cert.RawSubject, cert.RawIssuer) {
		return false
	}
	return cert.CheckSignatureFrom(cert) == nil
}

func (p *StdProvider) IsChildOf(child, parent *x509.Certificate) bool {
	if !bytesEqual(child.RawIssuer, parent.RawSubject) {
		return false
	}
	return parent.CheckSignatureFrom(child) == nil || child.CheckSignatureFrom(parent) == nil
}

func (p *StdProvider) IsEqual(a, b *x509.Certificate) bool {
	if a == nil || b == nil {
		return a == b
	}
	return bytesEqual(a.Raw, b.Raw)
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (p *StdProvider) VerifyChain(target *x509.Certificate, untrustedIntermediates []*x509.Certificate, roots []*x509.Certificate, allowFutureCertificates bool) ChainValidationError {
	if len(roots) == 0 {
		return ChainIssuerNotFound
	}

	rootPool := x509.NewCertPool()
	for _, r := range roots {
		rootPool.AddCert(r)
	}
	interPool := x509.NewCertPool()
	for _, i := range untrustedIntermediates {
		interPool.AddCert(i)
	}

	opts := x509.VerifyOptions{
		Roots:         rootPool,
		Intermediates: interPool,
		KeyUsages:     []x509.ExtKeyUsage{x509.ExtKeyUsageAny},
	}
	if allowFutureCertificates {
		opts.CurrentTime = target.NotBefore.Add(time.Second)
	}

	if _, err := target.Verify(opts); err != nil {
		switch err.(type) {
		case x509.CertificateInvalidError:
			if cie, ok := err.(x509.CertificateInvalidError); ok && cie.Reason == x509.Expired {
				return ChainExpired
			}
			return ChainInvalid
		case x509.UnknownAuthorityError:
			return ChainIssuerNotFound
		default:
			return ChainInvalidSignature
		}
	}
	return ChainValid
}

func (p *StdProvider) CheckPrivateKey(cert *x509.Certificate, keyPEM []byte, password []byte) bool {
	block, _ := pem.Decode(keyPEM)
	der := keyPEM
	if block != nil {
		der = block.Bytes
	}

	key, err := youmarkpkcs8.ParsePKCS8PrivateKey(der, password)
	if err != nil {
		return false
	}

	switch priv := key.(type) {
	case *rsa.PrivateKey:
		pub, ok := cert.PublicKey.(*rsa.PublicKey)
		return ok && priv.PublicKey.Equal(pub)
	case *ecdsa.PrivateKey:
		pub, ok := cert.PublicKey.(*ecdsa.PublicKey)
		return ok && priv.PublicKey.Equal(pub)
	case ed25519.PrivateKey:
		pub, ok := cert.PublicKey.(ed25519.PublicKey)
		return ok && priv.Public().(ed25519.PublicKey).Equal(pub)
	default:
		return false
	}
}

func (p *StdProvider) VerifySignature(cert *x509.Certificate, signature, data []byte) bool {
	return cert.CheckSignature(cert.SignatureAlgorithm, data, signature) == nil
}

func (p *StdProvider) GenerateCSR(info CSRInfo) ([]byte, []byte, error) {
	var (
		signer interface{}
		err    error
	)

	switch info.KeyType {
	case KeyTypeECP384:
		signer, err = ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	case KeyTypeRSA2048:
		signer, err = rsa.GenerateKey(rand.Reader, 2048)
	case KeyTypeRSA3072:
		signer, err = rsa.GenerateKey(rand.Reader, 3072)
	case KeyTypeRSA7680:
		signer, err = rsa.GenerateKey(rand.Reader, 7680)
	case KeyTypeECP256, "":
		signer, err = ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	default:
		return nil, nil, fmt.Errorf("cryptoprovider: unsupported key type %q", info.KeyType)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("cryptoprovider: key generation: %w", err)
	}

	template := x509.CertificateRequest{
		Subject: pkix.Name{
			Country:      nonEmptySlice(info.Country),
			Organization: nonEmptySlice(info.Organization),
			CommonName:   info.CommonName,
		},
		SignatureAlgorithm: signatureAlgorithmFor(signer),
	}
	if info.DNSName != "" {
		template.DNSNames = []string{info.DNSName}
	}
	if info.IPAddress != "" {
		if ip := net.ParseIP(info.IPAddress); ip != nil {
			template.IPAddresses = []net.IP{ip}
		}
	}

	csrDER, err := x509.CreateCertificateRequest(rand.Reader, &template, signer)
	if err != nil {
		return nil, nil, fmt.Errorf("cryptoprovider: create CSR: %w", err)
	}
	csrPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE REQUEST", Bytes: csrDER})

	var keyDER []byte
	if len(info.PrivateKeyPassword) > 0 && !info.OnCustomProvider {
		keyDER, err = youmarkpkcs8.MarshalPrivateKey(signer, info.PrivateKeyPassword, nil)
	} else {
		keyDER, err = youmarkpkcs8.MarshalPrivateKey(signer, nil, nil)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("cryptoprovider: marshal private key: %w", err)
	}
	keyPEMType := "PRIVATE KEY"
	if len(info.PrivateKeyPassword) > 0 && !info.OnCustomProvider {
		keyPEMType = "ENCRYPTED PRIVATE KEY"
	}
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: keyPEMType, Bytes: keyDER})

	return csrPEM, keyPEM, nil
}

func signatureAlgorithmFor(signer interface{}) x509.SignatureAlgorithm {
	switch k := signer.(type) {
	case *ecdsa.PrivateKey:
		switch k.Curve {
		case elliptic.P384():
			return x509.ECDSAWithSHA384
		default:
			return x509.ECDSAWithSHA256
		}
	case *rsa.PrivateKey:
		return x509.SHA256WithRSA
	default:
		return x509.UnknownSignatureAlgorithm
	}
}

func nonEmptySlice(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}

func (p *StdProvider) DigestFileSHA256(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cryptoprovider: digest file: %w", err)
	}
	sum := sha256.Sum256(data)
	return sum[:], nil
}

func (p *StdProvider) Base64Encode(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

func (p *StdProvider) Base64Decode(s string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("cryptoprovider: base64 decode: %w", err)
	}
	return data, nil
}

// HashDir rebuilds openssl-rehash-style symlinks for every certificate file in
// dir, so the directory can be handed to a TLS stack as a trust store (the
// Go equivalent of the original's hashed-directory helper used by
// SSL_CTX_load_verify_locations with a directory path).
func (p *StdProvider) HashDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("cryptoprovider: hash dir: %w", err)
	}

	// Remove stale numeric symlinks from a previous run first.
	for _, e := range entries {
		if e.Type()&os.ModeSymlink != 0 {
			_ = os.Remove(filepath.Join(dir, e.Name()))
		}
	}

	counts := map[uint32]int{}
	for _, e := range entries {
		if e.IsDir() || e.Type()&os.ModeSymlink != 0 {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext != ".pem" && ext != ".crt" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		certs, err := p.ParseCertificates(data)
		if err != nil || len(certs) == 0 {
			continue
		}
		h := subjectNameHash(certs[0])
		n := counts[h]
		counts[h] = n + 1
		link := filepath.Join(dir, fmt.Sprintf("%08x.%d", h, n))
		_ = os.Remove(link)
		if err := os.Symlink(e.Name(), link); err != nil {
			return fmt.Errorf("cryptoprovider: symlink %s: %w", link, err)
		}
	}
	return nil
}

// subjectNameHash reproduces OpenSSL's X509_NAME_hash: the first four bytes
// of SHA-1 over the DER-encoded subject name, read little-endian.
func subjectNameHash(cert *x509.Certificate) uint32 {
	sum := sha1.Sum(cert.RawSubject)
	return binary.LittleEndian.Uint32(sum[:4])
}
