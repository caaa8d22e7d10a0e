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
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/evse-security/certstore/pkg/certstore"
	"github.com/evse-security/certstore/pkg/health"
	"github.com/evse-security/certstore/pkg/logging"
	"github.com/evse-security/certstore/pkg/metrics"
)

// HandlerContext holds the dependencies every Store Manager HTTP handler
// needs: the manager itself, an optional health checker, and a logger for
// per-request diagnostics.
type HandlerContext struct {
	Manager *certstore.Manager
	Health  *health.Checker
	Logger  *logging.Logger
}

// NewHandlerContext creates a handler context around an already-constructed
// Store Manager.
func NewHandlerContext(manager *certstore.Manager, log *logging.Logger) *HandlerContext {
	if log == nil {
		log = logging.DefaultLogger()
	}
	return &HandlerContext{Manager: manager, Logger: log}
}

// InstallCAHandler handles POST /api/v1/ca.
func (h *HandlerContext) InstallCAHandler(w http.ResponseWriter, r *http.Request) {
	var req InstallCARequest
	if !decodeJSON(w, r, &req) {
		return
	}

	caType, ok := validCaType(req.Type)
	if !ok {
		writeErrorWithMessage(w, ErrInvalidRequest, "unknown CA type: "+req.Type, http.StatusBadRequest)
		return
	}

	result, err := h.Manager.InstallCA([]byte(req.CertificatePEM), caType)
	if err != nil {
		metrics.RecordError(metrics.OpInstallCA, req.Type, "error")
		handlerError(w, h, err)
		return
	}

	metrics.RecordOperation(metrics.OpInstallCA, req.Type, string(result), 0)
	writeJSON(w, InstallCertificateResponse{Result: string(result)}, http.StatusOK)
}

// DeleteCertificateHandler handles DELETE /api/v1/certificates/{hash}.
func (h *HandlerContext) DeleteCertificateHandler(w http.ResponseWriter, r *http.Request) {
	dto, err := decodeHashParam(chi.URLParam(r, "hash"))
	if err != nil {
		writeErrorWithMessage(w, err, "malformed hash path parameter", http.StatusBadRequest)
		return
	}

	result, caType, err := h.Manager.DeleteCertificate(dto.toHash())
	if err != nil {
		metrics.RecordError(metrics.OpDeleteCertificate, string(caType), "error")
		handlerError(w, h, err)
		return
	}

	metrics.RecordOperation(metrics.OpDeleteCertificate, string(caType), string(result), 0)
	writeJSON(w, DeleteCertificateResponse{Result: string(result), CAType: string(caType)}, http.StatusOK)
}

// UpdateLeafCertificateHandler handles PUT /api/v1/leaf/{type}.
func (h *HandlerContext) UpdateLeafCertificateHandler(w http.ResponseWriter, r *http.Request) {
	leafType, ok := validLeafType(chi.URLParam(r, "type"))
	if !ok {
		writeErrorWithMessage(w, ErrInvalidRequest, "unknown leaf type", http.StatusBadRequest)
		return
	}

	var req UpdateLeafCertificateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.Manager.UpdateLeafCertificate([]byte(req.ChainPEM), leafType)
	if err != nil {
		metrics.RecordError(metrics.OpUpdateLeafCert, string(leafType), "error")
		handlerError(w, h, err)
		return
	}

	metrics.RecordOperation(metrics.OpUpdateLeafCert, string(leafType), string(result), 0)
	writeJSON(w, InstallCertificateResponse{Result: string(result)}, http.StatusOK)
}

// GenerateCSRHandler handles POST /api/v1/csr.
func (h *HandlerContext) GenerateCSRHandler(w http.ResponseWriter, r *http.Request) {
	var req GenerateCSRRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	leafType, ok := validLeafType(req.Type)
	if !ok {
		writeErrorWithMessage(w, ErrInvalidRequest, "unknown leaf type: "+req.Type, http.StatusBadRequest)
		return
	}

	result, csrPEM, err := h.Manager.GenerateCSR(certstore.CSRRequest{
		Type:               leafType,
		Country:            req.Country,
		Organization:       req.Organization,
		CommonName:         req.CommonName,
		UseCustomProvider:  req.UseCustomProvider,
		PrivateKeyPassword: req.PrivateKeyPassword,
	})
	if err != nil {
		metrics.RecordError(metrics.OpGenerateCSR, string(leafType), "error")
		handlerError(w, h, err)
		return
	}

	metrics.RecordOperation(metrics.OpGenerateCSR, string(leafType), string(result), 0)
	writeJSON(w, GenerateCSRResponse{Result: string(result), CSRPEM: string(csrPEM)}, http.StatusOK)
}

// GetLeafCertificateInfoHandler handles GET /api/v1/leaf/{type}.
func (h *HandlerContext) GetLeafCertificateInfoHandler(w http.ResponseWriter, r *http.Request) {
	leafType, ok := validLeafType(chi.URLParam(r, "type"))
	if !ok {
		writeErrorWithMessage(w, ErrInvalidRequest, "unknown leaf type", http.StatusBadRequest)
		return
	}
	includeOCSP := r.URL.Query().Get("ocsp") == "true"

	status, info, err := h.Manager.GetLeafCertificateInfo(leafType, includeOCSP)
	if err != nil {
		metrics.RecordError(metrics.OpGetLeafInfo, string(leafType), "error")
		handlerError(w, h, err)
		return
	}

	metrics.RecordOperation(metrics.OpGetLeafInfo, string(leafType), string(status), 0)

	resp := LeafCertificateInfoResponse{Status: string(status)}
	if info != nil {
		resp.Type = string(info.Type)
		resp.PrivateKeyPath = info.PrivateKeyPath
		resp.CertificatePath = info.CertificatePath
		resp.ChainPath = info.ChainPath
		for _, ref := range info.OCSP {
			resp.OCSP = append(resp.OCSP, OCSPReferenceDTO{Hash: hashToDTO(ref.Hash), DERPath: ref.DERPath})
		}
	}
	writeJSON(w, resp, http.StatusOK)
}

// GetAllValidCertificatesInfoHandler handles GET /api/v1/certificates.
func (h *HandlerContext) GetAllValidCertificatesInfoHandler(w http.ResponseWriter, r *http.Request) {
	var caTypes []certstore.CaCertificateType
	for _, raw := range r.URL.Query()["type"] {
		if caType, ok := validCaType(raw); ok {
			caTypes = append(caTypes, caType)
		}
	}

	status, chains, err := h.Manager.GetAllValidCertificatesInfo(caTypes)
	if err != nil {
		metrics.RecordError(metrics.OpGetAllValidInfo, "", "error")
		handlerError(w, h, err)
		return
	}

	metrics.RecordOperation(metrics.OpGetAllValidInfo, "", string(status), 0)
	metrics.SetCertificatesTotal("all", float64(len(chains)))

	resp := CertificatesInfoResponse{Status: string(status)}
	for _, c := range chains {
		dto := CertificateHashDataChainDTO{
			CertificateType: string(c.CertificateType),
			Hash:            hashToDTO(c.Hash),
		}
		for _, child := range c.ChildHashes {
			dto.ChildHashes = append(dto.ChildHashes, hashToDTO(child))
		}
		resp.Chains = append(resp.Chains, dto)
	}
	writeJSON(w, resp, http.StatusOK)
}

// GetV2GOCSPRequestDataHandler handles GET /api/v1/ocsp/v2g.
func (h *HandlerContext) GetV2GOCSPRequestDataHandler(w http.ResponseWriter, r *http.Request) {
	items, err := h.Manager.GetV2GOCSPRequestData()
	if err != nil {
		metrics.RecordError(metrics.OpGetOCSPRequestData, "v2g", "error")
		handlerError(w, h, err)
		return
	}
	metrics.RecordOperation(metrics.OpGetOCSPRequestData, "v2g", metrics.StatusSuccess, 0)
	writeJSON(w, ocspRequestDataResponse(items), http.StatusOK)
}

// GetMOOCSPRequestDataHandler handles POST /api/v1/ocsp/mo.
func (h *HandlerContext) GetMOOCSPRequestDataHandler(w http.ResponseWriter, r *http.Request) {
	var req GetMOOCSPRequestDataRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	items, err := h.Manager.GetMOOCSPRequestData([]byte(req.ChainPEM))
	if err != nil {
		metrics.RecordError(metrics.OpGetOCSPRequestData, "mo", "error")
		handlerError(w, h, err)
		return
	}
	metrics.RecordOperation(metrics.OpGetOCSPRequestData, "mo", metrics.StatusSuccess, 0)
	writeJSON(w, ocspRequestDataResponse(items), http.StatusOK)
}

func ocspRequestDataResponse(items []certstore.OCSPRequestDataItem) OCSPRequestDataResponse {
	resp := OCSPRequestDataResponse{}
	for _, item := range items {
		resp.Items = append(resp.Items, OCSPRequestDataItemDTO{
			Hash:         hashToDTO(item.Hash),
			ResponderURL: item.ResponderURL,
		})
	}
	return resp
}

// UpdateOCSPCacheHandler handles PUT /api/v1/ocsp/{hash}.
func (h *HandlerContext) UpdateOCSPCacheHandler(w http.ResponseWriter, r *http.Request) {
	dto, err := decodeHashParam(chi.URLParam(r, "hash"))
	if err != nil {
		writeErrorWithMessage(w, err, "malformed hash path parameter", http.StatusBadRequest)
		return
	}

	var req UpdateOCSPCacheRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.Manager.UpdateOCSPCache(dto.toHash(), req.ResponseDER); err != nil {
		metrics.RecordError(metrics.OpUpdateOCSPCache, "", "error")
		handlerError(w, h, err)
		return
	}
	metrics.RecordOperation(metrics.OpUpdateOCSPCache, "", metrics.StatusSuccess, 0)
	w.WriteHeader(http.StatusNoContent)
}

// RetrieveOCSPCacheHandler handles GET /api/v1/ocsp/{hash}.
func (h *HandlerContext) RetrieveOCSPCacheHandler(w http.ResponseWriter, r *http.Request) {
	dto, err := decodeHashParam(chi.URLParam(r, "hash"))
	if err != nil {
		writeErrorWithMessage(w, err, "malformed hash path parameter", http.StatusBadRequest)
		return
	}

	path, err := h.Manager.RetrieveOCSPCache(dto.toHash())
	if err != nil {
		metrics.RecordError(metrics.OpRetrieveOCSPCache, "", "error")
		handlerError(w, h, err)
		return
	}
	metrics.RecordOperation(metrics.OpRetrieveOCSPCache, "", metrics.StatusSuccess, 0)
	writeJSON(w, RetrieveOCSPCacheResponse{Path: path}, http.StatusOK)
}

// VerifyCertificateHandler handles POST /api/v1/verify.
func (h *HandlerContext) VerifyCertificateHandler(w http.ResponseWriter, r *http.Request) {
	var req VerifyCertificateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	leafTypes := make([]certstore.LeafCertificateType, 0, len(req.LeafTypes))
	for _, s := range req.LeafTypes {
		t, ok := validVerifyLeafType(s)
		if !ok {
			writeError(w, fmt.Errorf("%w: unknown leaf type %q", certstore.ErrUnknownLeafType, s), http.StatusBadRequest)
			return
		}
		leafTypes = append(leafTypes, t)
	}

	result, err := h.Manager.VerifyCertificate([]byte(req.ChainPEM), leafTypes)
	if err != nil {
		metrics.RecordError(metrics.OpVerifyCertificate, "", "error")
		handlerError(w, h, err)
		return
	}
	metrics.RecordOperation(metrics.OpVerifyCertificate, "", string(result), 0)
	writeJSON(w, VerifyCertificateResponse{Result: string(result)}, http.StatusOK)
}

// UpdateCertificateLinksHandler handles POST /api/v1/links.
func (h *HandlerContext) UpdateCertificateLinksHandler(w http.ResponseWriter, r *http.Request) {
	updated, err := h.Manager.UpdateCertificateLinks()
	if err != nil {
		metrics.RecordError(metrics.OpUpdateCertLinks, "", "error")
		handlerError(w, h, err)
		return
	}
	metrics.RecordOperation(metrics.OpUpdateCertLinks, "", metrics.StatusSuccess, 0)
	writeJSON(w, UpdateCertificateLinksResponse{Updated: updated}, http.StatusOK)
}

// GetLeafExpiryDaysCountHandler handles GET /api/v1/leaf/{type}/expiry.
func (h *HandlerContext) GetLeafExpiryDaysCountHandler(w http.ResponseWriter, r *http.Request) {
	leafType, ok := validLeafType(chi.URLParam(r, "type"))
	if !ok {
		writeErrorWithMessage(w, ErrInvalidRequest, "unknown leaf type", http.StatusBadRequest)
		return
	}

	days, err := h.Manager.GetLeafExpiryDaysCount(leafType)
	if err != nil {
		metrics.RecordError(metrics.OpGetLeafExpiryCount, string(leafType), "error")
		handlerError(w, h, err)
		return
	}
	metrics.RecordOperation(metrics.OpGetLeafExpiryCount, string(leafType), metrics.StatusSuccess, 0)
	writeJSON(w, LeafExpiryResponse{Days: days}, http.StatusOK)
}

// IsCACertificateInstalledHandler handles GET /api/v1/ca/{type}/installed.
func (h *HandlerContext) IsCACertificateInstalledHandler(w http.ResponseWriter, r *http.Request) {
	caType, ok := validCaType(chi.URLParam(r, "type"))
	if !ok {
		writeErrorWithMessage(w, ErrInvalidRequest, "unknown CA type", http.StatusBadRequest)
		return
	}

	installed, err := h.Manager.IsCACertificateInstalled(caType)
	if err != nil {
		metrics.RecordError(metrics.OpIsCAInstalled, string(caType), "error")
		handlerError(w, h, err)
		return
	}
	metrics.RecordOperation(metrics.OpIsCAInstalled, string(caType), metrics.StatusSuccess, 0)
	writeJSON(w, CAInstalledResponse{Installed: installed}, http.StatusOK)
}

// GetCountOfInstalledCertificatesHandler handles POST /api/v1/ca/count.
func (h *HandlerContext) GetCountOfInstalledCertificatesHandler(w http.ResponseWriter, r *http.Request) {
	var req CertificateCountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	caTypes := make([]certstore.CaCertificateType, 0, len(req.CaTypes))
	for _, s := range req.CaTypes {
		t, ok := validCaType(s)
		if !ok {
			writeErrorWithMessage(w, ErrInvalidRequest, "unknown CA type: "+s, http.StatusBadRequest)
			return
		}
		caTypes = append(caTypes, t)
	}

	count, err := h.Manager.GetCountOfInstalledCertificates(caTypes, req.IncludeV2GLeafChain)
	if err != nil {
		metrics.RecordError(metrics.OpGetCertCount, "", "error")
		handlerError(w, h, err)
		return
	}
	metrics.RecordOperation(metrics.OpGetCertCount, "", metrics.StatusSuccess, 0)
	writeJSON(w, CertificateCountResponse{Count: count}, http.StatusOK)
}

// CertificateSigningRequestFailedHandler handles POST
// /api/v1/leaf/{type}/csr/failed.
func (h *HandlerContext) CertificateSigningRequestFailedHandler(w http.ResponseWriter, r *http.Request) {
	leafType, ok := validLeafType(chi.URLParam(r, "type"))
	if !ok {
		writeErrorWithMessage(w, ErrInvalidRequest, "unknown leaf type", http.StatusBadRequest)
		return
	}

	var req CertificateSigningRequestFailedRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.Manager.CertificateSigningRequestFailed([]byte(req.CSRPEM), leafType); err != nil {
		metrics.RecordError(metrics.OpCSRFailed, string(leafType), "error")
		handlerError(w, h, err)
		return
	}
	metrics.RecordOperation(metrics.OpCSRFailed, string(leafType), metrics.StatusSuccess, 0)
	w.WriteHeader(http.StatusNoContent)
}

// handlerError maps a Store Manager error to an HTTP status code, logging
// it first so a single bad request doesn't silently disappear.
func handlerError(w http.ResponseWriter, h *HandlerContext, err error) {
	h.Logger.Warnf("store manager operation failed: %v", err)

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, certstore.ErrUnknownCaType),
		errors.Is(err, certstore.ErrUnknownLeafType),
		errors.Is(err, certstore.ErrCSMSLeafDeleteNotAllowed),
		errors.Is(err, certstore.ErrInvalidPEM):
		status = http.StatusBadRequest
	case errors.Is(err, certstore.ErrFilesystemFull):
		status = http.StatusInsufficientStorage
	case errors.Is(err, certstore.ErrStoreClosed):
		status = http.StatusServiceUnavailable
	}
	writeError(w, err, status)
}

