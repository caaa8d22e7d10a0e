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

package rest

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/evse-security/certstore/pkg/certstore"
	"github.com/evse-security/certstore/pkg/health"
	"github.com/evse-security/certstore/pkg/logging"
	"github.com/evse-security/certstore/pkg/metrics"
	"github.com/evse-security/certstore/pkg/ratelimit"
)

// Server represents the REST API server fronting one Store Manager.
type Server struct {
	server      *http.Server
	handlers    *HandlerContext
	health      *health.Checker
	limiter     *ratelimit.Limiter
	port        int
	tlsConfig   *tls.Config
	metricsPath string
	logger      *logging.Logger
}

// Config holds the REST server configuration.
type Config struct {
	// Port is the HTTP port to listen on.
	Port int

	// Manager is the Store Manager this server fronts.
	Manager *certstore.Manager

	// Health is an optional readiness/liveness checker. If nil, the
	// health endpoints report healthy unconditionally.
	Health *health.Checker

	// Limiter is an optional per-client rate limiter.
	Limiter *ratelimit.Limiter

	// MetricsPath is the path the Prometheus scrape endpoint is served on.
	// Defaults to "/metrics".
	MetricsPath string

	// TLSConfig is the TLS configuration for HTTPS (optional).
	TLSConfig *tls.Config

	// Logger is the logging adapter (optional, defaults to a stderr logger).
	Logger *logging.Logger

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// NewServer creates a new REST API server.
func NewServer(cfg *Config) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.Manager == nil {
		return nil, fmt.Errorf("a store manager is required")
	}

	if cfg.Port == 0 {
		cfg.Port = 8443
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 15 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 15 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 60 * time.Second
	}

	log := cfg.Logger
	if log == nil {
		log = logging.DefaultLogger()
	}

	handlers := NewHandlerContext(cfg.Manager, log)
	handlers.Health = cfg.Health

	server := &Server{
		handlers:    handlers,
		health:      cfg.Health,
		limiter:     cfg.Limiter,
		port:        cfg.Port,
		tlsConfig:   cfg.TLSConfig,
		metricsPath: cfg.MetricsPath,
		logger:      log,
	}

	router := server.setupRouter()

	server.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
		TLSConfig:    cfg.TLSConfig,
	}

	return server, nil
}

// setupRouter configures the chi router with all routes and middleware.
func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(s.RecoveryMiddleware())
	r.Use(s.CorrelationMiddleware())
	r.Use(s.LoggingMiddleware())
	r.Use(metrics.HTTPMiddleware)
	r.Use(CORSMiddleware)
	if s.limiter != nil && s.limiter.IsEnabled() {
		r.Use(ratelimit.Middleware(s.limiter))
	}

	r.Get("/healthz", s.handlers.LivenessHandler)
	r.Get("/readyz", s.handlers.ReadinessHandler)
	r.Handle(s.metricsPath, promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/ca", s.handlers.InstallCAHandler)
		r.Delete("/certificates/{hash}", s.handlers.DeleteCertificateHandler)
		r.Get("/certificates", s.handlers.GetAllValidCertificatesInfoHandler)

		r.Put("/leaf/{type}", s.handlers.UpdateLeafCertificateHandler)
		r.Get("/leaf/{type}", s.handlers.GetLeafCertificateInfoHandler)
		r.Get("/leaf/{type}/expiry", s.handlers.GetLeafExpiryDaysCountHandler)

		r.Post("/csr", s.handlers.GenerateCSRHandler)
		r.Post("/leaf/{type}/csr/failed", s.handlers.CertificateSigningRequestFailedHandler)

		r.Get("/ca/{type}/installed", s.handlers.IsCACertificateInstalledHandler)
		r.Post("/ca/count", s.handlers.GetCountOfInstalledCertificatesHandler)

		r.Get("/ocsp/v2g", s.handlers.GetV2GOCSPRequestDataHandler)
		r.Post("/ocsp/mo", s.handlers.GetMOOCSPRequestDataHandler)
		r.Put("/ocsp/{hash}", s.handlers.UpdateOCSPCacheHandler)
		r.Get("/ocsp/{hash}", s.handlers.RetrieveOCSPCacheHandler)

		r.Post("/verify", s.handlers.VerifyCertificateHandler)
		r.Post("/links", s.handlers.UpdateCertificateLinksHandler)
	})

	return r
}

// Start starts the REST API server. It blocks until the server stops.
func (s *Server) Start() error {
	if s.tlsConfig != nil {
		s.logger.Infof("starting HTTPS server on port %d", s.port)
		if err := s.server.ListenAndServeTLS("", ""); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("failed to start HTTPS server: %w", err)
		}
		return nil
	}

	s.logger.Infof("starting HTTP server on port %d", s.port)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully stops the REST API server.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("shutting down REST server")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// Port returns the port the server is listening on.
func (s *Server) Port() int {
	return s.port
}
