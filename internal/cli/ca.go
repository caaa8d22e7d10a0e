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
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/evse-security/certstore/internal/rest"
)

// caCmd groups trust-anchor operations.
var caCmd = &cobra.Command{
	Use:   "ca",
	Short: "Manage trust-anchor (CA) bundles",
}

var caInstallCmd = &cobra.Command{
	Use:   "install [CSMS|MF|MO|V2G] <certificate-file>",
	Short: "Install a root or intermediate certificate into a trust-anchor bundle",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pemData, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("failed to read certificate file: %w", err)
		}

		c, err := newClient(getConfig())
		if err != nil {
			return err
		}
		resp, err := c.installCA(rest.InstallCARequest{Type: args[0], CertificatePEM: string(pemData)})
		if err != nil {
			return err
		}
		return NewPrinter(getConfig().OutputFormat, os.Stdout).PrintInstallResult(resp)
	},
}

var caDeleteCmd = &cobra.Command{
	Use:   "delete <hash-json>",
	Short: "Delete a certificate by its hash identity",
	Long: `Delete a certificate by its hash identity, given as a JSON object with
algorithm, issuer_name_hash, issuer_key_hash, and serial_number fields.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var hash rest.HashDTO
		if err := json.Unmarshal([]byte(args[0]), &hash); err != nil {
			return fmt.Errorf("failed to parse hash: %w", err)
		}

		c, err := newClient(getConfig())
		if err != nil {
			return err
		}
		resp, err := c.deleteCertificate(hash)
		if err != nil {
			return err
		}
		return NewPrinter(getConfig().OutputFormat, os.Stdout).PrintDeleteResult(resp)
	},
}

var caListCmd = &cobra.Command{
	Use:   "list [type...]",
	Short: "List installed trust anchors and their descendant certificates",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(getConfig())
		if err != nil {
			return err
		}
		resp, err := c.getAllValidCertificatesInfo(args)
		if err != nil {
			return err
		}
		return NewPrinter(getConfig().OutputFormat, os.Stdout).PrintCertificatesInfo(resp)
	},
}

var caInstalledCmd = &cobra.Command{
	Use:   "installed <CSMS|MF|MO|V2G>",
	Short: "Report whether a trust-anchor bundle has a valid installed root",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(getConfig())
		if err != nil {
			return err
		}
		resp, err := c.isCACertificateInstalled(args[0])
		if err != nil {
			return err
		}
		return NewPrinter(getConfig().OutputFormat, os.Stdout).PrintCAInstalled(resp)
	},
}

var caCountCmd = &cobra.Command{
	Use:   "count [type...]",
	Short: "Count installed certificates across one or more trust-anchor bundles",
	RunE: func(cmd *cobra.Command, args []string) error {
		includeV2G, err := cmd.Flags().GetBool("include-v2g-leaf-chain")
		if err != nil {
			return err
		}

		c, err := newClient(getConfig())
		if err != nil {
			return err
		}
		resp, err := c.getCountOfInstalledCertificates(rest.CertificateCountRequest{
			CaTypes:             args,
			IncludeV2GLeafChain: includeV2G,
		})
		if err != nil {
			return err
		}
		return NewPrinter(getConfig().OutputFormat, os.Stdout).PrintCertificateCount(resp)
	},
}

func init() {
	caCountCmd.Flags().Bool("include-v2g-leaf-chain", false, "also count certificates in the V2G leaf chain")

	caCmd.AddCommand(caInstallCmd)
	caCmd.AddCommand(caDeleteCmd)
	caCmd.AddCommand(caListCmd)
	caCmd.AddCommand(caInstalledCmd)
	caCmd.AddCommand(caCountCmd)
}
