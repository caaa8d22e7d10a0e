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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/evse-security/certstore/pkg/cryptoprovider"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Server:  ServerConfig{Host: "0.0.0.0", RESTPort: 8443},
		Logging: LoggingConfig{Level: "info"},
		CertStore: CertStoreConfig{
			CSMSCABundle:    "/data/ca/csms.pem",
			MFCABundle:      "/data/ca/mf.pem",
			MOCABundle:      "/data/ca/mo.pem",
			V2GCABundle:     "/data/ca/v2g.pem",
			CSMSLeafCertDir: "/data/leaf/csms/certs",
			CSMSLeafKeyDir:  "/data/leaf/csms/keys",
			V2GLeafCertDir:  "/data/leaf/v2g/certs",
			V2GLeafKeyDir:   "/data/leaf/v2g/keys",
			CSRExpiry:       "168h",
		},
	}
}

func TestValidateAcceptsWellFormedConfig(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadPort(t *testing.T) {
	cfg := validConfig()
	cfg.Server.RESTPort = 0
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "verbose"
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsMissingCABundle(t *testing.T) {
	cfg := validConfig()
	cfg.CertStore.MOCABundle = ""
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsMissingLeafDir(t *testing.T) {
	cfg := validConfig()
	cfg.CertStore.V2GLeafKeyDir = ""
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsOverlappingPaths(t *testing.T) {
	cfg := validConfig()
	cfg.CertStore.V2GLeafCertDir = cfg.CertStore.CSMSLeafCertDir
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsTLSWithoutCertFile(t *testing.T) {
	cfg := validConfig()
	cfg.TLS.Enabled = true
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsBadCSRExpiry(t *testing.T) {
	cfg := validConfig()
	cfg.CertStore.CSRExpiry = "not-a-duration"
	require.Error(t, cfg.Validate())
}

func TestManagerConfigParsesDurationsAndHashAlgorithm(t *testing.T) {
	cfg := validConfig()
	cfg.CertStore.GarbageCollectInterval = "1h"
	cfg.CertStore.HashAlgorithm = "sha384"

	mgrCfg, err := cfg.CertStore.ManagerConfig()
	require.NoError(t, err)
	require.Equal(t, cfg.CertStore.CSMSCABundle, mgrCfg.CSMSCABundle)
	require.Equal(t, 7*24*time.Hour, mgrCfg.CSRExpiry)
	require.Equal(t, time.Hour, mgrCfg.GarbageCollectInterval)
	require.Equal(t, cryptoprovider.SHA384, mgrCfg.HashAlgorithm)
}

func TestManagerConfigRejectsUnknownHashAlgorithm(t *testing.T) {
	cfg := validConfig()
	cfg.CertStore.HashAlgorithm = "md5"
	_, err := cfg.CertStore.ManagerConfig()
	require.Error(t, err)
}

func TestLoadReadsYAMLAndAppliesEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	contents := `
server:
  host: "127.0.0.1"
  rest_port: 9443
logging:
  level: info
certstore:
  csms_ca_bundle: /data/ca/csms.pem
  mf_ca_bundle: /data/ca/mf.pem
  mo_ca_bundle: /data/ca/mo.pem
  v2g_ca_bundle: /data/ca/v2g.pem
  csms_leaf_cert_directory: /data/leaf/csms/certs
  csms_leaf_key_directory: /data/leaf/csms/keys
  secc_leaf_cert_directory: /data/leaf/v2g/certs
  secc_leaf_key_directory: /data/leaf/v2g/keys
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0600))

	t.Setenv("CERTSTORE_REST_PORT", "8090")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 8090, cfg.Server.RESTPort)
	require.Equal(t, "/data/ca/v2g.pem", cfg.CertStore.V2GCABundle)
}
