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
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global configuration
	globalConfig *Config
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "certstore",
	Short: "certstore CLI - EVSE certificate store operator tool",
	Long: `certstore CLI operates and queries an EVSE certificate store server:
installing trust anchors, rotating leaf identities, generating CSRs,
servicing OCSP cache lookups, and running the server itself.

Most subcommands talk to a running server's REST API over --server; the
"serve" subcommand runs the server in this process instead.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	globalConfig = NewConfig()

	rootCmd.PersistentFlags().StringVar(&globalConfig.ConfigFile, "config", "",
		"server configuration file (used by the serve command)")
	rootCmd.PersistentFlags().StringVar(&globalConfig.ServerURL, "server", globalConfig.ServerURL,
		"base URL of the certificate store REST API")
	rootCmd.PersistentFlags().StringVarP(&globalConfig.OutputFormat, "output", "o", "text",
		"output format (text, json)")
	rootCmd.PersistentFlags().BoolVarP(&globalConfig.Verbose, "verbose", "v", false,
		"verbose output")
	rootCmd.PersistentFlags().BoolVar(&globalConfig.TLSInsecure, "tls-insecure", false,
		"skip TLS certificate verification")
	rootCmd.PersistentFlags().StringVar(&globalConfig.TLSCACert, "tls-ca-cert", "",
		"path to a CA certificate trusted for the server's TLS certificate")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(caCmd)
	rootCmd.AddCommand(leafCmd)
	rootCmd.AddCommand(csrCmd)
	rootCmd.AddCommand(ocspCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(linksCmd)
}

// getConfig returns the global configuration.
func getConfig() *Config {
	return globalConfig
}

// handleError prints an error and exits with code 1.
func handleError(err error) {
	printer := NewPrinter(globalConfig.OutputFormat, os.Stderr)
	_ = printer.PrintError(err) // Error printing to stderr is best-effort
	os.Exit(1)
}

// printVerbose prints a message if verbose mode is enabled.
func printVerbose(format string, args ...interface{}) {
	if globalConfig.Verbose {
		fmt.Fprintf(os.Stderr, "[VERBOSE] "+format+"\n", args...)
	}
}
