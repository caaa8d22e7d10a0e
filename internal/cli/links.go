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
	"os"

	"github.com/spf13/cobra"
)

// linksCmd refreshes the V2G leaf certificate, key and chain symlinks so they
// point at the currently installed V2G leaf identity.
var linksCmd = &cobra.Command{
	Use:   "links",
	Short: "Refresh the V2G leaf certificate, key and chain symlinks",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(getConfig())
		if err != nil {
			return err
		}
		resp, err := c.updateCertificateLinks()
		if err != nil {
			return err
		}
		return NewPrinter(getConfig().OutputFormat, os.Stdout).PrintLinksResult(resp)
	},
}
