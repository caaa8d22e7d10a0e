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
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/evse-security/certstore/pkg/certstore"
	"github.com/evse-security/certstore/pkg/cryptoprovider"
	"gopkg.in/yaml.v3"
)

// Config represents the complete server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	TLS       TLSConfig       `yaml:"tls"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Health    HealthConfig    `yaml:"health"`
	CertStore CertStoreConfig `yaml:"certstore"`
}

// ServerConfig contains server-level settings.
type ServerConfig struct {
	Host     string `yaml:"host"`
	RESTPort int    `yaml:"rest_port"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// TLSConfig controls TLS/SSL settings for the REST server.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// RateLimitConfig controls rate limiting.
type RateLimitConfig struct {
	Enabled        bool `yaml:"enabled"`
	RequestsPerMin int  `yaml:"requests_per_min"`
}

// MetricsConfig controls the Prometheus scrape endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// HealthConfig controls the health check endpoints.
type HealthConfig struct {
	Enabled bool `yaml:"enabled"`
}

// CertStoreConfig configures the certificate store manager's filesystem
// layout, quotas, and background garbage collection.
type CertStoreConfig struct {
	CSMSCABundle string `yaml:"csms_ca_bundle"`
	MFCABundle   string `yaml:"mf_ca_bundle"`
	MOCABundle   string `yaml:"mo_ca_bundle"`
	V2GCABundle  string `yaml:"v2g_ca_bundle"`

	CSMSLeafCertDir string `yaml:"csms_leaf_cert_directory"`
	CSMSLeafKeyDir  string `yaml:"csms_leaf_key_directory"`
	V2GLeafCertDir  string `yaml:"secc_leaf_cert_directory"`
	V2GLeafKeyDir   string `yaml:"secc_leaf_key_directory"`

	V2GLeafCertLink string `yaml:"secc_leaf_cert_link"`
	V2GLeafKeyLink  string `yaml:"secc_leaf_key_link"`
	V2GChainLink    string `yaml:"cpo_cert_chain_link"`

	MaxFilesystemEntries      int    `yaml:"max_filesystem_entries"`
	MaxFilesystemUsageBytes   int64  `yaml:"max_filesystem_usage_bytes"`
	MinimumCertificateEntries int    `yaml:"minimum_certificate_entries"`
	CSRExpiry                 string `yaml:"csr_expiry"`
	GarbageCollectInterval    string `yaml:"garbage_collect_interval"`
	HashAlgorithm             string `yaml:"hash_algorithm"`
}

// ManagerConfig translates the YAML-facing CertStoreConfig into the
// certstore.Config the Store Manager constructor expects, parsing the
// duration strings and defaulting the hash algorithm.
func (c CertStoreConfig) ManagerConfig() (certstore.Config, error) {
	cfg := certstore.Config{
		CSMSCABundle:              c.CSMSCABundle,
		MFCABundle:                c.MFCABundle,
		MOCABundle:                c.MOCABundle,
		V2GCABundle:               c.V2GCABundle,
		CSMSLeafCertDir:           c.CSMSLeafCertDir,
		CSMSLeafKeyDir:            c.CSMSLeafKeyDir,
		V2GLeafCertDir:            c.V2GLeafCertDir,
		V2GLeafKeyDir:             c.V2GLeafKeyDir,
		V2GLeafCertLink:           c.V2GLeafCertLink,
		V2GLeafKeyLink:            c.V2GLeafKeyLink,
		V2GChainLink:              c.V2GChainLink,
		MaxFilesystemEntries:      c.MaxFilesystemEntries,
		MaxFilesystemUsageBytes:   c.MaxFilesystemUsageBytes,
		MinimumCertificateEntries: c.MinimumCertificateEntries,
	}

	if c.CSRExpiry != "" {
		d, err := time.ParseDuration(c.CSRExpiry)
		if err != nil {
			return cfg, fmt.Errorf("invalid csr_expiry: %w", err)
		}
		cfg.CSRExpiry = d
	}
	if c.GarbageCollectInterval != "" {
		d, err := time.ParseDuration(c.GarbageCollectInterval)
		if err != nil {
			return cfg, fmt.Errorf("invalid garbage_collect_interval: %w", err)
		}
		cfg.GarbageCollectInterval = d
	}

	switch strings.ToUpper(c.HashAlgorithm) {
	case "", "SHA256":
		cfg.HashAlgorithm = cryptoprovider.SHA256
	case "SHA384":
		cfg.HashAlgorithm = cryptoprovider.SHA384
	case "SHA512":
		cfg.HashAlgorithm = cryptoprovider.SHA512
	default:
		return cfg, fmt.Errorf("unknown hash_algorithm: %s", c.HashAlgorithm)
	}

	return cfg, nil
}

// Load reads configuration from a YAML file and applies environment
// variable overrides.
func Load(path string) (*Config, error) {
	// #nosec G304 - Config file path is provided by the operator.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration.
func applyEnvOverrides(cfg *Config) {
	if host := os.Getenv("CERTSTORE_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if restPort := os.Getenv("CERTSTORE_REST_PORT"); restPort != "" {
		port, err := strconv.Atoi(restPort)
		if err != nil {
			log.Printf("Warning: invalid CERTSTORE_REST_PORT value %q, using default %d: %v",
				restPort, cfg.Server.RESTPort, err)
		} else if port < 1 || port > 65535 {
			log.Printf("Warning: invalid CERTSTORE_REST_PORT value %q (out of range 1-65535), using default %d",
				restPort, cfg.Server.RESTPort)
		} else {
			cfg.Server.RESTPort = port
		}
	}

	if level := os.Getenv("CERTSTORE_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}

	if dir := os.Getenv("CERTSTORE_CSMS_CA_BUNDLE"); dir != "" {
		cfg.CertStore.CSMSCABundle = dir
	}
	if dir := os.Getenv("CERTSTORE_MF_CA_BUNDLE"); dir != "" {
		cfg.CertStore.MFCABundle = dir
	}
	if dir := os.Getenv("CERTSTORE_MO_CA_BUNDLE"); dir != "" {
		cfg.CertStore.MOCABundle = dir
	}
	if dir := os.Getenv("CERTSTORE_V2G_CA_BUNDLE"); dir != "" {
		cfg.CertStore.V2GCABundle = dir
	}
}

// Validate checks the configuration for internal consistency, mirroring the
// teacher's port/format validation style.
func (c *Config) Validate() error {
	if c.Server.RESTPort < 1 || c.Server.RESTPort > 65535 {
		return fmt.Errorf("invalid REST port: %d", c.Server.RESTPort)
	}

	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true,
	}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, error, or fatal)", c.Logging.Level)
	}

	if c.TLS.Enabled {
		if c.TLS.CertFile == "" {
			return fmt.Errorf("TLS cert_file is required when TLS is enabled")
		}
		if c.TLS.KeyFile == "" {
			return fmt.Errorf("TLS key_file is required when TLS is enabled")
		}
	}

	cs := c.CertStore
	if cs.CSMSCABundle == "" || cs.MFCABundle == "" || cs.MOCABundle == "" || cs.V2GCABundle == "" {
		return fmt.Errorf("all four CA bundle paths (csms, mf, mo, v2g) must be configured")
	}
	if cs.CSMSLeafCertDir == "" || cs.CSMSLeafKeyDir == "" || cs.V2GLeafCertDir == "" || cs.V2GLeafKeyDir == "" {
		return fmt.Errorf("all four leaf directories (CSMS cert/key, V2G cert/key) must be configured")
	}

	leafAndBundlePaths := map[string]string{
		"csms_ca_bundle":            cs.CSMSCABundle,
		"mf_ca_bundle":              cs.MFCABundle,
		"mo_ca_bundle":              cs.MOCABundle,
		"v2g_ca_bundle":             cs.V2GCABundle,
		"csms_leaf_cert_directory":  cs.CSMSLeafCertDir,
		"csms_leaf_key_directory":   cs.CSMSLeafKeyDir,
		"secc_leaf_cert_directory":  cs.V2GLeafCertDir,
		"secc_leaf_key_directory":   cs.V2GLeafKeyDir,
	}
	seen := make(map[string]string, len(leafAndBundlePaths))
	for field, path := range leafAndBundlePaths {
		if other, ok := seen[path]; ok {
			return fmt.Errorf("%s and %s must not point at the same path (%s)", field, other, path)
		}
		seen[path] = field
	}

	if cs.CSRExpiry != "" {
		if _, err := time.ParseDuration(cs.CSRExpiry); err != nil {
			return fmt.Errorf("invalid certstore.csr_expiry: %w", err)
		}
	}
	if cs.GarbageCollectInterval != "" {
		if _, err := time.ParseDuration(cs.GarbageCollectInterval); err != nil {
			return fmt.Errorf("invalid certstore.garbage_collect_interval: %w", err)
		}
	}

	return nil
}
