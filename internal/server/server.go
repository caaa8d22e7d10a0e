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

package server

import (
	"context"
	"crypto/tls"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/evse-security/certstore/internal/config"
	"github.com/evse-security/certstore/internal/rest"
	"github.com/evse-security/certstore/pkg/certstore"
	"github.com/evse-security/certstore/pkg/cryptoprovider"
	"github.com/evse-security/certstore/pkg/health"
	"github.com/evse-security/certstore/pkg/logging"
	"github.com/evse-security/certstore/pkg/metrics"
	"github.com/evse-security/certstore/pkg/ratelimit"
)

// Server is the unified process wrapper: one Store Manager, one REST server
// fronting it, and a garbage-collection ticker. It owns the lifecycle of
// all three.
type Server struct {
	config  *config.Config
	logger  *logging.Logger
	manager *certstore.Manager

	restServer *rest.Server
	health     *health.Checker
	limiter    *ratelimit.Limiter

	gcInterval time.Duration

	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	shutdownCh chan struct{}
}

// New creates a Store Manager and wires it to a not-yet-started REST server.
func New(cfg *config.Config) (*Server, error) {
	logger := logging.NewLogger(cfg.Logging.Level == "debug")

	mgrCfg, err := cfg.CertStore.ManagerConfig()
	if err != nil {
		return nil, fmt.Errorf("invalid certstore configuration: %w", err)
	}

	manager, err := certstore.New(mgrCfg, cryptoprovider.New(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize certificate store: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		config:     cfg,
		logger:     logger,
		manager:    manager,
		gcInterval: mgrCfg.GarbageCollectInterval,
		ctx:        ctx,
		cancel:     cancel,
		shutdownCh: make(chan struct{}),
	}

	if cfg.Health.Enabled {
		s.health = health.NewChecker()
		s.health.RegisterCheck("certstore", s.checkCertStore)
	}

	if cfg.RateLimit.Enabled {
		s.limiter = ratelimit.New(&ratelimit.Config{
			Enabled:           cfg.RateLimit.Enabled,
			RequestsPerMinute: cfg.RateLimit.RequestsPerMin,
		})
	}

	var tlsConfig *tls.Config
	if cfg.TLS.Enabled {
		cert, err := tls.LoadX509KeyPair(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed to load TLS certificate: %w", err)
		}
		tlsConfig = &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		}
	}

	metricsPath := cfg.Metrics.Path
	if !cfg.Metrics.Enabled {
		metricsPath = "/metrics-disabled"
	}

	restServer, err := rest.NewServer(&rest.Config{
		Port:        cfg.Server.RESTPort,
		Manager:     manager,
		Health:      s.health,
		Limiter:     s.limiter,
		MetricsPath: metricsPath,
		TLSConfig:   tlsConfig,
		Logger:      logger,
	})
	if err != nil {
		cancel()
		manager.Close()
		return nil, fmt.Errorf("failed to create REST server: %w", err)
	}
	s.restServer = restServer

	if cfg.Metrics.Enabled {
		metrics.Enable()
	}

	return s, nil
}

// checkCertStore reports the Store Manager healthy as long as it can
// enumerate installed certificates without error.
func (s *Server) checkCertStore(ctx context.Context) health.CheckResult {
	start := time.Now()
	if _, _, err := s.manager.GetAllValidCertificatesInfo(nil); err != nil {
		return health.CheckResult{
			Name:    "certstore",
			Status:  health.StatusUnhealthy,
			Message: "certificate store is not responding",
			Error:   err.Error(),
			Latency: time.Since(start),
		}
	}
	return health.CheckResult{
		Name:    "certstore",
		Status:  health.StatusHealthy,
		Message: "certificate store is responding",
		Latency: time.Since(start),
	}
}

// Start launches the REST server and the garbage-collection ticker. It
// blocks until Shutdown is called or the REST server exits.
func (s *Server) Start() error {
	s.logger.Infof("starting certificate store server on port %d", s.config.Server.RESTPort)

	if s.gcInterval > 0 {
		s.wg.Add(1)
		go s.runGarbageCollector()
	}

	if s.health != nil {
		s.health.MarkStarted()
	}

	return s.restServer.Start()
}

// runGarbageCollector invokes Manager.GarbageCollect on the configured
// interval until the server's context is cancelled.
func (s *Server) runGarbageCollector() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.gcInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.manager.GarbageCollect(); err != nil {
				s.logger.Warnf("garbage collection failed: %v", err)
				metrics.RecordError(metrics.OpGarbageCollect, "", "error")
			} else {
				metrics.RecordOperation(metrics.OpGarbageCollect, "", metrics.StatusSuccess, 0)
			}
		case <-s.ctx.Done():
			return
		}
	}
}

// Shutdown gracefully stops the REST server, the garbage-collection
// ticker, and closes the underlying Store Manager.
func (s *Server) Shutdown() error {
	s.logger.Info("shutting down certificate store server")

	s.cancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.restServer.Stop(shutdownCtx); err != nil {
		s.logger.Errorf("error shutting down REST server: %v", err)
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-shutdownCtx.Done():
		s.logger.Warn("shutdown timeout exceeded, forcing stop")
	}

	if err := s.manager.Close(); err != nil {
		s.logger.Errorf("error closing certificate store: %v", err)
	}

	close(s.shutdownCh)
	s.logger.Info("server shutdown complete")
	return nil
}

// WaitForShutdown blocks until Shutdown has finished.
func (s *Server) WaitForShutdown() {
	<-s.shutdownCh
}

// RESTServer returns the underlying REST server.
func (s *Server) RESTServer() *rest.Server {
	return s.restServer
}

// Manager returns the underlying Store Manager.
func (s *Server) Manager() *certstore.Manager {
	return s.manager
}

// SetupSignalHandler returns a context that is cancelled on SIGINT/SIGTERM.
func SetupSignalHandler() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-signalCh
		cancel()
	}()

	return ctx
}
