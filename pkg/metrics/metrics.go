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

// Package metrics provides Prometheus instrumentation for certificate store operations.
// It exposes operation counters, latency histograms, error counters, and store-size
// gauges so the EVSE controller's certificate and key lifecycle can be monitored.
package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Namespace is the Prometheus namespace for all certificate store metrics.
	Namespace = "evse_certstore"

	// Label names
	LabelOperation  = "operation"
	LabelBundle     = "bundle"
	LabelStatus     = "status"
	LabelErrorType  = "error_type"
	LabelMethod     = "method"
	LabelStatusCode = "status_code"

	// Status values
	StatusSuccess = "success"
	StatusError   = "error"

	// Operation names, one per Store Manager public operation.
	OpInstallCA          = "install_ca"
	OpDeleteCertificate  = "delete_certificate"
	OpUpdateLeafCert     = "update_leaf_certificate"
	OpGenerateCSR        = "generate_csr"
	OpGetLeafInfo        = "get_leaf_certificate_info"
	OpGetAllValidInfo    = "get_all_valid_certificates_info"
	OpGetOCSPRequestData = "get_ocsp_request_data"
	OpUpdateOCSPCache    = "update_ocsp_cache"
	OpRetrieveOCSPCache  = "retrieve_ocsp_cache"
	OpVerifyCertificate  = "verify_certificate"
	OpUpdateCertLinks    = "update_certificate_links"
	OpGetLeafExpiryCount = "get_leaf_expiry_days_count"
	OpGarbageCollect     = "garbage_collect"
	OpHealthCheck        = "health_check"
	OpIsCAInstalled      = "is_ca_certificate_installed"
	OpGetCertCount       = "get_count_of_installed_certificates"
	OpCSRFailed          = "certificate_signing_request_failed"
)

var (
	// OperationsTotal tracks the total number of store manager operations by type and status.
	// Use RecordOperation to increment this counter with the appropriate labels.
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "operations_total",
			Help:      "Total number of certificate store operations by type, bundle, and status",
		},
		[]string{LabelOperation, LabelBundle, LabelStatus},
	)

	// OperationDuration tracks the duration of store manager operations in seconds.
	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of certificate store operations in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{LabelOperation, LabelBundle},
	)

	// ErrorsTotal tracks the total number of errors by operation, bundle, and error type.
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "errors_total",
			Help:      "Total number of errors by operation, bundle, and error type",
		},
		[]string{LabelOperation, LabelBundle, LabelErrorType},
	)

	// ActiveConnections tracks the number of active REST connections.
	ActiveConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "active_connections",
			Help:      "Number of active connections to the REST call surface",
		},
		[]string{"protocol"},
	)

	// HTTPRequestsTotal tracks the total number of HTTP requests by method and status code.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method and status code",
		},
		[]string{LabelMethod, LabelStatusCode},
	)

	// HTTPRequestDuration tracks the duration of HTTP requests in seconds.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{LabelMethod},
	)

	// Goroutines tracks the current number of goroutines in the store manager process.
	Goroutines = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "goroutines",
			Help:      "Current number of goroutines",
		},
	)

	// MemoryAllocBytes tracks the current bytes of allocated heap objects.
	MemoryAllocBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "memory_alloc_bytes",
			Help:      "Current bytes of allocated heap objects",
		},
	)

	// MemorySysBytes tracks the total bytes of memory obtained from the OS.
	MemorySysBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "memory_sys_bytes",
			Help:      "Total bytes of memory obtained from the OS",
		},
	)

	// GCPauseTotalSeconds tracks the cumulative time spent in Go runtime GC stop-the-world pauses.
	GCPauseTotalSeconds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "gc_pause_total_seconds",
			Help:      "Cumulative time spent in Go runtime GC stop-the-world pauses",
		},
	)

	// CertificatesTotal tracks the total number of certificates stored in each bundle.
	CertificatesTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "certificates_total",
			Help:      "Total number of certificates stored in each bundle",
		},
		[]string{LabelBundle},
	)

	// ManagedCSRsTotal tracks the number of in-flight managed CSRs awaiting a signed leaf.
	ManagedCSRsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "managed_csrs_total",
			Help:      "Number of managed CSRs currently awaiting a signed leaf certificate",
		},
	)

	// FilesystemUsageBytes tracks the accounted certificate store filesystem usage.
	FilesystemUsageBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "filesystem_usage_bytes",
			Help:      "Accounted certificate store filesystem usage in bytes",
		},
	)

	// GarbageCollectedTotal tracks items removed by the garbage collector by phase.
	GarbageCollectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "garbage_collected_total",
			Help:      "Total number of items removed by the garbage collector, by phase",
		},
		[]string{"phase"},
	)

	// ServerUptime tracks the server uptime in seconds since startup.
	ServerUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "server_uptime_seconds",
			Help:      "Server uptime in seconds since startup",
		},
	)

	// enabled tracks whether metrics collection is enabled
	enabled atomic.Bool
)

func init() {
	enabled.Store(true)
}

// RecordOperation records a store manager operation with its duration and status.
func RecordOperation(operation, bundle, status string, duration float64) {
	if !enabled.Load() {
		return
	}
	OperationsTotal.WithLabelValues(operation, bundle, status).Inc()
	OperationDuration.WithLabelValues(operation, bundle).Observe(duration)
}

// RecordError records an error event with context about where it occurred.
func RecordError(operation, bundle, errorType string) {
	if !enabled.Load() {
		return
	}
	ErrorsTotal.WithLabelValues(operation, bundle, errorType).Inc()
}

// RecordHTTPRequest records an HTTP request with its duration and status.
func RecordHTTPRequest(method, statusCode string, duration float64) {
	if !enabled.Load() {
		return
	}
	HTTPRequestsTotal.WithLabelValues(method, statusCode).Inc()
	HTTPRequestDuration.WithLabelValues(method).Observe(duration)
}

// IncrementActiveConnections increments the active connection count for a protocol.
func IncrementActiveConnections(protocol string) {
	if !enabled.Load() {
		return
	}
	ActiveConnections.WithLabelValues(protocol).Inc()
}

// DecrementActiveConnections decrements the active connection count for a protocol.
func DecrementActiveConnections(protocol string) {
	if !enabled.Load() {
		return
	}
	ActiveConnections.WithLabelValues(protocol).Dec()
}

// SetCertificatesTotal sets the total number of certificates for a bundle.
func SetCertificatesTotal(bundle string, count float64) {
	if !enabled.Load() {
		return
	}
	CertificatesTotal.WithLabelValues(bundle).Set(count)
}

// SetManagedCSRsTotal sets the number of in-flight managed CSRs.
func SetManagedCSRsTotal(count float64) {
	if !enabled.Load() {
		return
	}
	ManagedCSRsTotal.Set(count)
}

// SetFilesystemUsageBytes sets the accounted certificate store filesystem usage.
func SetFilesystemUsageBytes(bytes float64) {
	if !enabled.Load() {
		return
	}
	FilesystemUsageBytes.Set(bytes)
}

// RecordGarbageCollected records items removed by the garbage collector for a phase
// (the garbage collector uses "expired_leaf", "orphan_key", "expired_csr" and
// "dangling_ocsp").
func RecordGarbageCollected(phase string, count float64) {
	if !enabled.Load() || count <= 0 {
		return
	}
	GarbageCollectedTotal.WithLabelValues(phase).Add(count)
}

// Enable enables metrics collection.
func Enable() {
	enabled.Store(true)
}

// Disable disables metrics collection.
// Useful for testing or when metrics are not desired.
func Disable() {
	enabled.Store(false)
}

// IsEnabled returns whether metrics collection is currently enabled.
func IsEnabled() bool {
	return enabled.Load()
}
