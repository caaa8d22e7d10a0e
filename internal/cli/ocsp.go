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

// ocspCmd groups OCSP sidecar-cache operations.
var ocspCmd = &cobra.Command{
	Use:   "ocsp",
	Short: "Manage the OCSP response cache",
}

var ocspV2GCmd = &cobra.Command{
	Use:   "v2g-request-data",
	Short: "Get the hash/responder-URL pairs needed to refresh V2G OCSP responses",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(getConfig())
		if err != nil {
			return err
		}
		resp, err := c.getV2GOCSPRequestData()
		if err != nil {
			return err
		}
		return NewPrinter(getConfig().OutputFormat, os.Stdout).PrintOCSPRequestData(resp)
	},
}

var ocspMOCmd = &cobra.Command{
	Use:   "mo-request-data <chain-file>",
	Short: "Get the hash/responder-URL pairs needed to refresh MO OCSP responses for a chain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		chainPEM, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read chain file: %w", err)
		}

		c, err := newClient(getConfig())
		if err != nil {
			return err
		}
		resp, err := c.getMOOCSPRequestData(rest.GetMOOCSPRequestDataRequest{ChainPEM: string(chainPEM)})
		if err != nil {
			return err
		}
		return NewPrinter(getConfig().OutputFormat, os.Stdout).PrintOCSPRequestData(resp)
	},
}

var ocspUpdateCmd = &cobra.Command{
	Use:   "update <hash-json> <response-der-file>",
	Short: "Cache a fresh OCSP response for a certificate hash",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var hash rest.HashDTO
		if err := json.Unmarshal([]byte(args[0]), &hash); err != nil {
			return fmt.Errorf("failed to parse hash: %w", err)
		}
		der, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("failed to read OCSP response file: %w", err)
		}

		c, err := newClient(getConfig())
		if err != nil {
			return err
		}
		if err := c.updateOCSPCache(hash, rest.UpdateOCSPCacheRequest{ResponseDER: der}); err != nil {
			return err
		}
		return NewPrinter(getConfig().OutputFormat, os.Stdout).PrintSuccess("OCSP cache updated")
	},
}

var ocspRetrieveCmd = &cobra.Command{
	Use:   "retrieve <hash-json>",
	Short: "Get the cached OCSP response path for a certificate hash",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var hash rest.HashDTO
		if err := json.Unmarshal([]byte(args[0]), &hash); err != nil {
			return fmt.Errorf("failed to parse hash: %w", err)
		}

		c, err := newClient(getConfig())
		if err != nil {
			return err
		}
		resp, err := c.retrieveOCSPCache(hash)
		if err != nil {
			return err
		}
		return NewPrinter(getConfig().OutputFormat, os.Stdout).PrintOCSPCachePath(resp)
	},
}

func init() {
	ocspCmd.AddCommand(ocspV2GCmd)
	ocspCmd.AddCommand(ocspMOCmd)
	ocspCmd.AddCommand(ocspUpdateCmd)
	ocspCmd.AddCommand(ocspRetrieveCmd)
}
