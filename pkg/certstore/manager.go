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

// Package certstore implements the certificate and key management store for
// an EVSE controller: a mutex-guarded Manager that installs and deletes CA
// trust anchors, pairs and issues leaf certificates and keys, verifies
// received chains, maintains an OCSP response cache, and periodically
// garbage-collects abandoned keys and exhausted chains.
package certstore

import (
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/evse-security/certstore/pkg/bundle"
	"github.com/evse-security/certstore/pkg/certwrapper"
	"github.com/evse-security/certstore/pkg/cryptoprovider"
	"github.com/evse-security/certstore/pkg/hierarchy"
	"github.com/evse-security/certstore/pkg/keypair"
	"github.com/evse-security/certstore/pkg/logging"
	"github.com/evse-security/certstore/pkg/ocspcache"
	"github.com/google/uuid"
)

// Config describes the filesystem layout and policy knobs the Manager
// enforces. Every path is local to the host; the Manager never talks to a
// network filesystem or object store directly.
type Config struct {
	CSMSCABundle string
	MFCABundle   string
	MOCABundle   string
	V2GCABundle  string

	CSMSLeafCertDir string
	CSMSLeafKeyDir  string
	V2GLeafCertDir  string
	V2GLeafKeyDir   string

	V2GLeafCertLink string
	V2GLeafKeyLink  string
	V2GChainLink    string

	MaxFilesystemEntries    int
	MaxFilesystemUsageBytes int64
	CSRExpiry               time.Duration
	GarbageCollectInterval  time.Duration
	MinimumCertificateEntries int

	HashAlgorithm cryptoprovider.HashAlgorithm
}

func (c *Config) applyDefaults() {
	if c.HashAlgorithm == "" {
		c.HashAlgorithm = cryptoprovider.SHA256
	}
	if c.MaxFilesystemEntries == 0 {
		c.MaxFilesystemEntries = DefaultMaxCertificateEntries
	}
	if c.MaxFilesystemUsageBytes == 0 {
		c.MaxFilesystemUsageBytes = DefaultMaxFilesystemUsageBytes
	}
	if c.CSRExpiry == 0 {
		c.CSRExpiry = DefaultCSRExpiry
	}
	if c.GarbageCollectInterval == 0 {
		c.GarbageCollectInterval = DefaultGarbageCollectInterval
	}
	if c.MinimumCertificateEntries == 0 {
		c.MinimumCertificateEntries = DefaultMinimumCertificateEntries
	}
}

// Manager is the certificate store's public façade. Every exported method
// acquires mu for its full duration, mirroring the single coarse-grained
// mutex the store manager's ambient filesystem demands.
type Manager struct {
	mu       sync.Mutex
	cfg      Config
	provider cryptoprovider.Provider
	log      *logging.Logger

	managedCSRs map[string]time.Time
	closed      bool
}

// New creates a Manager over the given configuration. It does not touch the
// filesystem until an operation is invoked.
func New(cfg Config, provider cryptoprovider.Provider, log *logging.Logger) (*Manager, error) {
	cfg.applyDefaults()
	if cfg.CSMSCABundle == "" || cfg.MFCABundle == "" || cfg.MOCABundle == "" || cfg.V2GCABundle == "" {
		return nil, fmt.Errorf("%w: all four CA bundle paths are required", ErrInvalidConfig)
	}
	if log == nil {
		log = logging.DefaultLogger()
	}
	return &Manager{
		cfg:         cfg,
		provider:    provider,
		log:         log,
		managedCSRs: map[string]time.Time{},
	}, nil
}

// Close marks the manager closed; subsequent operations return ErrStoreClosed.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *Manager) caBundlePath(t CaCertificateType) (string, error) {
	switch t {
	case CaCSMS:
		return m.cfg.CSMSCABundle, nil
	case CaMF:
		return m.cfg.MFCABundle, nil
	case CaMO:
		return m.cfg.MOCABundle, nil
	case CaV2G:
		return m.cfg.V2GCABundle, nil
	default:
		return "", ErrUnknownCaType
	}
}

// caSource resolves a CA bundle path to a bundle.Source: a path ending in a
// recognized certificate file extension is a single-file source, anything
// else is treated as a directory of individually-installed roots.
func (m *Manager) caSource(t CaCertificateType) (bundle.Source, error) {
	path, err := m.caBundlePath(t)
	if err != nil {
		return nil, err
	}
	return pathSource(path), nil
}

func pathSource(path string) bundle.Source {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".pem" || ext == ".crt" {
		return &bundle.FileSource{Path: path}
	}
	return &bundle.DirSource{Dir: path}
}

func (m *Manager) loadCABundle(t CaCertificateType) (*bundle.Bundle, error) {
	src, err := m.caSource(t)
	if err != nil {
		return nil, err
	}
	return bundle.Load(src, m.provider, m.cfg.HashAlgorithm)
}

func (m *Manager) leafDirs(t LeafCertificateType) (certDir, keyDir string, caType CaCertificateType, err error) {
	switch t {
	case LeafCSMS:
		return m.cfg.CSMSLeafCertDir, m.cfg.CSMSLeafKeyDir, CaCSMS, nil
	case LeafV2G:
		return m.cfg.V2GLeafCertDir, m.cfg.V2GLeafKeyDir, CaV2G, nil
	default:
		return "", "", "", ErrUnknownLeafType
	}
}

func (m *Manager) loadLeafBundle(t LeafCertificateType) (*bundle.Bundle, error) {
	certDir, _, _, err := m.leafDirs(t)
	if err != nil {
		return nil, err
	}
	return bundle.Load(&bundle.DirSource{Dir: certDir}, m.provider, m.cfg.HashAlgorithm)
}

// InstallCA parses pemData as a single certificate and installs it into the
// bundle for caType, rejecting anything that is not currently valid.
func (m *Manager) InstallCA(pemData []byte, caType CaCertificateType) (InstallCertificateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.caBundlePath(caType); err != nil {
		return InstallInvalidFormat, err
	}

	certs, err := certwrapper.ParseAll(m.provider, pemData, "")
	if err != nil {
		return InstallInvalidFormat, nil
	}
	cert := certs[0]

	if !cert.IsValid() {
		return InstallExpired, nil
	}

	full, err := m.IsFilesystemFullLocked()
	if err != nil {
		return InstallWriteError, err
	}
	if full {
		return InstallCertificateStoreMaxLength, nil
	}

	b, err := m.loadCABundle(caType)
	if err != nil {
		return InstallWriteError, err
	}

	if _, isDir := pathSourceKind(m, caType); isDir && cert.Path == "" {
		path, _ := m.caBundlePath(caType)
		cert.Path = filepath.Join(path, fmt.Sprintf("%s_ROOT_%s.pem", caType, uuid.NewString()))
	}

	if b.Contains(cert) {
		b.UpdateCertificate(cert)
	} else if err := b.AddCertificate(cert); err != nil {
		return InstallWriteError, err
	}

	if err := b.Sync(); err != nil {
		return InstallWriteError, err
	}
	return InstallAccepted, nil
}

func pathSourceKind(m *Manager, t CaCertificateType) (bundle.Source, bool) {
	path, err := m.caBundlePath(t)
	if err != nil {
		return nil, false
	}
	src := pathSource(path)
	_, isDir := src.(*bundle.DirSource)
	return src, isDir
}

// DeleteCertificate removes the certificate identified by hash. A CA root
// deletion returns immediately without touching leaves; deleting a CSMS
// leaf independently of its root is rejected by policy.
func (m *Manager) DeleteCertificate(hash certwrapper.CertHash) (DeleteCertificateResult, CaCertificateType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, caType := range []CaCertificateType{CaCSMS, CaMF, CaMO, CaV2G} {
		b, err := m.loadCABundle(caType)
		if err != nil {
			continue
		}
		if b.ContainsHash(hash, false) {
			if !b.DeleteCertificateByHash(hash, true, false) {
				continue
			}
			if err := b.Sync(); err != nil {
				return DeleteFailed, caType, err
			}
			return DeleteAccepted, caType, nil
		}
	}

	for _, leafType := range []LeafCertificateType{LeafCSMS, LeafV2G} {
		certDir, keyDir, caType, err := m.leafDirs(leafType)
		if err != nil || certDir == "" {
			continue
		}
		leafBundle, err := m.loadLeafBundle(leafType)
		if err != nil {
			continue
		}
		caBundle, err := m.loadCABundle(caType)
		if err != nil {
			continue
		}

		h := hierarchy.Build(m.provider, m.cfg.HashAlgorithm, caBundle.Split(), leafBundle.Split())
		matches := h.FindCertificatesMulti(hash)
		if len(matches) == 0 {
			continue
		}

		if leafType == LeafCSMS {
			return DeleteFailed, caType, ErrCSMSLeafDeleteNotAllowed
		}

		for _, node := range matches {
			leafBundle.DeleteCertificate(node.Cert, false)
			m.deleteMatchingKey(keyDir, node.Cert)
			m.deleteMatchingOCSP(node.Cert)
		}
		if err := leafBundle.Sync(); err != nil {
			return DeleteFailed, caType, err
		}
		return DeleteAccepted, caType, nil
	}

	return DeleteNotFound, "", nil
}

func (m *Manager) deleteMatchingKey(keyDir string, cert *certwrapper.Certificate) {
	if keyDir == "" {
		return
	}
	path, err := keypair.FindKeyForCertificate(m.provider, cert, keyDir, nil)
	if err != nil || path == "" {
		return
	}
	_ = os.Remove(path)
}

func (m *Manager) deleteMatchingOCSP(cert *certwrapper.Certificate) {
	entries, err := ocspcache.List(cert.Path)
	if err != nil {
		return
	}
	for _, e := range entries {
		_ = ocspcache.DeleteEntry(e)
	}
}

// UpdateLeafCertificate installs a freshly signed leaf (plus any
// intermediates present in the same PEM blob) as the active identity for
// leafType, replacing whatever chain previously occupied that file. The new
// chain's private key is located among the pending CSR keys by trial
// decryption and paired permanently under the chain's own file stem.
func (m *Manager) UpdateLeafCertificate(chainPEM []byte, leafType LeafCertificateType) (InstallCertificateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	certDir, keyDir, _, err := m.leafDirs(leafType)
	if err != nil {
		return InstallInvalidFormat, err
	}

	chain, err := certwrapper.ParseAll(m.provider, chainPEM, "")
	if err != nil || len(chain) == 0 {
		return InstallInvalidFormat, nil
	}
	leaf := chain[0]
	if !leaf.IsValid() {
		return InstallExpired, nil
	}

	if result, err := m.verifyCertificateLocked(chainPEM, []LeafCertificateType{leafType}); err != nil {
		return InstallWriteError, err
	} else if result != cryptoprovider.ChainValid {
		return InstallInvalidCertificateChain, nil
	}

	full, err := m.IsFilesystemFullLocked()
	if err != nil {
		return InstallWriteError, err
	}
	if full {
		return InstallCertificateStoreMaxLength, nil
	}

	keyPath, err := m.findPendingKeyFor(leaf, keyDir)
	if err != nil {
		return InstallWriteError, err
	}
	if keyPath == "" {
		return InstallWriteError, nil
	}

	stem := strings.TrimSuffix(filepath.Base(keyPath), filepath.Ext(keyPath))
	chainPath := filepath.Join(certDir, stem+".pem")
	for i, c := range chain {
		c.Path = chainPath
		chain[i] = c
	}

	leafBundle, err := m.loadLeafBundle(leafType)
	if err != nil {
		return InstallWriteError, err
	}
	leafBundle.IterateChains(func(path string, existing []*certwrapper.Certificate) {
		if path == chainPath {
			return
		}
		for _, c := range existing {
			leafBundle.DeleteCertificate(c, false)
		}
	})
	for _, c := range chain {
		if err := leafBundle.AddCertificate(c); err != nil {
			return InstallWriteError, err
		}
	}
	if err := leafBundle.Sync(); err != nil {
		return InstallWriteError, err
	}

	delete(m.managedCSRs, keyPath)

	if err := m.refreshLinksLocked(); err != nil {
		return InstallWriteError, err
	}
	return InstallAccepted, nil
}

// findPendingKeyFor looks for a private key in keyDir whose public key
// matches leaf, preferring one of the keys the manager itself generated via
// GenerateCSR.
func (m *Manager) findPendingKeyFor(leaf *certwrapper.Certificate, keyDir string) (string, error) {
	for path := range m.managedCSRs {
		if filepath.Dir(path) != keyDir {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if m.provider.CheckPrivateKey(leaf.X509, data, nil) {
			return path, nil
		}
	}
	return keypair.FindKeyForCertificate(m.provider, leaf, keyDir, nil)
}

func toX509(certs []*certwrapper.Certificate) []*x509.Certificate {
	out := make([]*x509.Certificate, len(certs))
	for i, c := range certs {
		out[i] = c.X509
	}
	return out
}

// GenerateCSR creates a new private key and certificate signing request for
// the requested leaf identity, storing the key under that identity's key
// directory so a subsequent UpdateLeafCertificate can pair it.
func (m *Manager) GenerateCSR(req CSRRequest) (CSRResult, []byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, keyDir, _, err := m.leafDirs(req.Type)
	if err != nil {
		return CSRInvalidRequestedType, nil, err
	}

	csrPEM, keyPEM, err := m.provider.GenerateCSR(cryptoprovider.CSRInfo{
		Country:            req.Country,
		Organization:       req.Organization,
		CommonName:         req.CommonName,
		KeyType:            cryptoprovider.KeyTypeECP256,
		OnCustomProvider:   req.UseCustomProvider,
		PrivateKeyPassword: req.PrivateKeyPassword,
	})
	if err != nil {
		return CSRGenerationError, nil, err
	}

	if err := os.MkdirAll(keyDir, 0700); err != nil {
		return CSRGenerationError, nil, err
	}
	keyPath := filepath.Join(keyDir, fmt.Sprintf("%s_%s.key", req.Type, uuid.NewString()))
	if err := os.WriteFile(keyPath, keyPEM, 0600); err != nil {
		return CSRGenerationError, nil, err
	}
	m.managedCSRs[keyPath] = time.Now()

	return CSRAccepted, csrPEM, nil
}

// CertificateSigningRequestFailed reports that the CSR encoded in csrPEM was
// rejected or abandoned by whoever requested it (e.g. the CSMS returned an
// error instead of a signed chain). It locates the pending key GenerateCSR
// wrote for that CSR's public key under leafType's key directory and deletes
// it immediately, rather than waiting for gcExpiredCSRs' time-based sweep.
func (m *Manager) CertificateSigningRequestFailed(csrPEM []byte, leafType LeafCertificateType) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, keyDir, _, err := m.leafDirs(leafType)
	if err != nil {
		return err
	}

	block, _ := pem.Decode(csrPEM)
	if block == nil {
		return ErrInvalidPEM
	}
	csr, err := x509.ParseCertificateRequest(block.Bytes)
	if err != nil {
		return ErrInvalidPEM
	}
	pubCert := &x509.Certificate{PublicKey: csr.PublicKey}

	for path := range m.managedCSRs {
		if filepath.Dir(path) != keyDir {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if m.provider.CheckPrivateKey(pubCert, data, nil) {
			delete(m.managedCSRs, path)
			return os.Remove(path)
		}
	}
	return nil
}
