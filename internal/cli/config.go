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

package cli

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"
	"time"
)

// Config holds global CLI configuration.
type Config struct {
	// ConfigFile is the path to the server's configuration file (used by
	// the serve command).
	ConfigFile string

	// ServerURL is the base URL of the certificate store's REST API.
	ServerURL string

	// OutputFormat controls output formatting (json, text, table).
	OutputFormat string

	// Verbose enables verbose logging.
	Verbose bool

	// TLSInsecure skips TLS certificate verification (not recommended).
	TLSInsecure bool

	// TLSCACert is the path to a CA certificate trusted for the server's
	// TLS certificate, in addition to the system trust store.
	TLSCACert string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		ServerURL:    "http://localhost:8443",
		OutputFormat: "text",
	}
}

// HTTPClient builds an *http.Client honoring the TLS flags.
func (c *Config) HTTPClient() (*http.Client, error) {
	transport := &http.Transport{}

	if c.TLSInsecure || c.TLSCACert != "" {
		tlsConfig := &tls.Config{InsecureSkipVerify: c.TLSInsecure} // #nosec G402 - opt-in via explicit flag

		if c.TLSCACert != "" {
			// #nosec G304 - CA certificate path provided by the operator.
			pem, err := os.ReadFile(c.TLSCACert)
			if err != nil {
				return nil, fmt.Errorf("failed to read CA certificate: %w", err)
			}
			pool := x509.NewCertPool()
			if !pool.AppendCertsFromPEM(pem) {
				return nil, fmt.Errorf("failed to parse CA certificate at %s", c.TLSCACert)
			}
			tlsConfig.RootCAs = pool
		}

		transport.TLSClientConfig = tlsConfig
	}

	return &http.Client{
		Transport: transport,
		Timeout:   30 * time.Second,
	}, nil
}
