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

// verifyCmd validates a certificate chain against the installed trust
// anchors for one or more leaf types.
var verifyCmd = &cobra.Command{
	Use:   "verify [CSMS|V2G|MF|MO...] <chain-file>",
	Short: "Verify a certificate chain against the installed trust anchors",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		leafTypes := args[:len(args)-1]
		chainFile := args[len(args)-1]

		chainPEM, err := os.ReadFile(chainFile)
		if err != nil {
			return fmt.Errorf("failed to read chain file: %w", err)
		}

		c, err := newClient(getConfig())
		if err != nil {
			return err
		}
		resp, err := c.verifyCertificate(rest.VerifyCertificateRequest{
			ChainPEM:  string(chainPEM),
			LeafTypes: leafTypes,
		})
		if err != nil {
			return err
		}
		return NewPrinter(getConfig().OutputFormat, os.Stdout).PrintVerifyResult(resp)
	},
}
