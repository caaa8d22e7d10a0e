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

	"github.com/evse-security/certstore/internal/rest"
)

// leafCmd groups operations on the two managed leaf identities (CSMS, V2G).
var leafCmd = &cobra.Command{
	Use:   "leaf",
	Short: "Manage leaf (operational) certificates",
}

var leafUpdateCmd = &cobra.Command{
	Use:   "update [CSMS|V2G] <chain-file>",
	Short: "Install a new leaf certificate chain",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		chainPEM, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("failed to read chain file: %w", err)
		}

		c, err := newClient(getConfig())
		if err != nil {
			return err
		}
		resp, err := c.updateLeafCertificate(args[0], rest.UpdateLeafCertificateRequest{ChainPEM: string(chainPEM)})
		if err != nil {
			return err
		}
		return NewPrinter(getConfig().OutputFormat, os.Stdout).PrintInstallResult(resp)
	},
}

var leafInfoCmd = &cobra.Command{
	Use:   "info [CSMS|V2G]",
	Short: "Show the status and paths of a managed leaf identity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		includeOCSP, _ := cmd.Flags().GetBool("ocsp")

		c, err := newClient(getConfig())
		if err != nil {
			return err
		}
		resp, err := c.getLeafCertificateInfo(args[0], includeOCSP)
		if err != nil {
			return err
		}
		return NewPrinter(getConfig().OutputFormat, os.Stdout).PrintLeafInfo(resp)
	},
}

var leafExpiryCmd = &cobra.Command{
	Use:   "expiry [CSMS|V2G]",
	Short: "Show days until the leaf identity's latest-expiring certificate expires",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(getConfig())
		if err != nil {
			return err
		}
		resp, err := c.getLeafExpiryDaysCount(args[0])
		if err != nil {
			return err
		}
		return NewPrinter(getConfig().OutputFormat, os.Stdout).PrintExpiry(resp)
	},
}

func init() {
	leafInfoCmd.Flags().Bool("ocsp", false, "include cached OCSP response references")
	leafCmd.AddCommand(leafUpdateCmd)
	leafCmd.AddCommand(leafInfoCmd)
	leafCmd.AddCommand(leafExpiryCmd)
}
