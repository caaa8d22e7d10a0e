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

	"github.com/spf13/cobra"

	"github.com/evse-security/certstore/internal/config"
	"github.com/evse-security/certstore/internal/server"
)

// serveCmd runs the certificate store server in this process.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the certificate store server",
	Long:  `Run the REST API server fronting the certificate store, blocking until a shutdown signal is received.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		if cfg.ConfigFile == "" {
			return fmt.Errorf("--config is required")
		}

		serverCfg, err := config.Load(cfg.ConfigFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		srv, err := server.New(serverCfg)
		if err != nil {
			return fmt.Errorf("failed to initialize server: %w", err)
		}

		ctx := server.SetupSignalHandler()
		go func() {
			<-ctx.Done()
			_ = srv.Shutdown()
		}()

		printVerbose("starting server on port %d", serverCfg.Server.RESTPort)
		if err := srv.Start(); err != nil {
			return fmt.Errorf("server error: %w", err)
		}

		srv.WaitForShutdown()
		return nil
	},
}
