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
	"net/http"

	"github.com/evse-security/certstore/pkg/health"
)

// HealthCheckResponse represents the response for health check endpoints.
type HealthCheckResponse struct {
	Status  health.Status         `json:"status"`
	Message string                `json:"message,omitempty"`
	Checks  []health.CheckResult  `json:"checks,omitempty"`
}

// LivenessHandler handles GET /healthz requests.
//
// Liveness probes determine if the service is alive and should be
// restarted. This endpoint should ONLY fail if the service is in an
// unrecoverable state.
func (h *HandlerContext) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	if h.Health == nil {
		writeJSON(w, HealthCheckResponse{Status: health.StatusHealthy, Message: "service is alive"}, http.StatusOK)
		return
	}

	result := h.Health.Live(r.Context())
	resp := HealthCheckResponse{Status: result.Status, Message: result.Message}

	statusCode := http.StatusOK
	if result.Status == health.StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}
	writeJSON(w, resp, statusCode)
}

// ReadinessHandler handles GET /readyz requests.
//
// Readiness probes determine if the service can accept traffic; it fails
// when a registered readiness check fails, such as the certificate store
// being unable to enumerate its installed certificates. The filesystem
// quota is not part of readiness.
func (h *HandlerContext) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	if h.Health == nil {
		writeJSON(w, HealthCheckResponse{Status: health.StatusHealthy, Message: "service is ready"}, http.StatusOK)
		return
	}

	results := h.Health.Ready(r.Context())
	overallStatus := health.AggregateStatus(results)

	resp := HealthCheckResponse{Status: overallStatus, Checks: results}
	switch overallStatus {
	case health.StatusHealthy:
		resp.Message = "all checks passed"
	case health.StatusDegraded:
		resp.Message = "service is degraded"
	case health.StatusUnhealthy:
		resp.Message = "one or more checks failed"
	}

	statusCode := http.StatusOK
	if overallStatus == health.StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}
	writeJSON(w, resp, statusCode)
}
