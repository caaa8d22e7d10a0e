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

// csrCmd generates a certificate signing request for a leaf identity.
var csrCmd = &cobra.Command{
	Use:   "csr",
	Short: "Generate a certificate signing request",
	RunE: func(cmd *cobra.Command, args []string) error {
		leafType, _ := cmd.Flags().GetString("type")
		country, _ := cmd.Flags().GetString("country")
		organization, _ := cmd.Flags().GetString("organization")
		commonName, _ := cmd.Flags().GetString("common-name")
		useCustomProvider, _ := cmd.Flags().GetBool("use-custom-provider")
		password, _ := cmd.Flags().GetString("password")

		var passwordBytes []byte
		if password != "" {
			passwordBytes = []byte(password)
		}

		c, err := newClient(getConfig())
		if err != nil {
			return err
		}
		resp, err := c.generateCSR(rest.GenerateCSRRequest{
			Type:               leafType,
			Country:            country,
			Organization:       organization,
			CommonName:         commonName,
			UseCustomProvider:  useCustomProvider,
			PrivateKeyPassword: passwordBytes,
		})
		if err != nil {
			return err
		}
		return NewPrinter(getConfig().OutputFormat, os.Stdout).PrintCSRResult(resp)
	},
}

// csrFailedCmd reports a CSR as rejected or abandoned, so its pending
// private key is deleted immediately instead of waiting for garbage
// collection to sweep it up once it ages out.
var csrFailedCmd = &cobra.Command{
	Use:   "failed <CSMS|V2G> <csr-file>",
	Short: "Report a CSR as failed and delete its pending private key",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		csrPEM, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("failed to read CSR file: %w", err)
		}

		c, err := newClient(getConfig())
		if err != nil {
			return err
		}
		if err := c.certificateSigningRequestFailed(args[0], rest.CertificateSigningRequestFailedRequest{
			CSRPEM: string(csrPEM),
		}); err != nil {
			return err
		}
		return NewPrinter(getConfig().OutputFormat, os.Stdout).PrintSuccess("pending key removed")
	},
}

func init() {
	csrCmd.Flags().String("type", "", "leaf type (CSMS or V2G)")
	csrCmd.Flags().String("country", "", "subject country code")
	csrCmd.Flags().String("organization", "", "subject organization")
	csrCmd.Flags().String("common-name", "", "subject common name")
	csrCmd.Flags().Bool("use-custom-provider", false, "use a custom key provider (e.g. HSM) instead of generating the key locally")
	csrCmd.Flags().String("password", "", "password to encrypt the generated private key")
	_ = csrCmd.MarkFlagRequired("type")
	_ = csrCmd.MarkFlagRequired("common-name")

	csrCmd.AddCommand(csrFailedCmd)
}
