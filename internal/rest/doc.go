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

// Package rest exposes the certificate store's Store Manager operations over
// HTTP, for the OCPP/ISO 15118 upper layers of an EVSE controller that call
// over a network boundary rather than linking the store directly.
//
// # Server Setup
//
//	mgr, _ := certstore.New(certstore.Config{...}, cryptoprovider.New(), nil)
//	server, _ := rest.NewServer(&rest.Config{Port: 8443, Manager: mgr})
//	go server.Start()
//
//	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
//	defer cancel()
//	server.Stop(ctx)
//
// # Endpoints
//
//	POST   /api/v1/ca                    InstallCA
//	DELETE /api/v1/certificates/{hash}    DeleteCertificate
//	GET    /api/v1/certificates           GetAllValidCertificatesInfo
//	PUT    /api/v1/leaf/{type}            UpdateLeafCertificate
//	GET    /api/v1/leaf/{type}            GetLeafCertificateInfo
//	GET    /api/v1/leaf/{type}/expiry     GetLeafExpiryDaysCount
//	POST   /api/v1/csr                    GenerateCSR
//	POST   /api/v1/leaf/{type}/csr/failed CertificateSigningRequestFailed
//	GET    /api/v1/ca/{type}/installed    IsCACertificateInstalled
//	POST   /api/v1/ca/count               GetCountOfInstalledCertificates
//	GET    /api/v1/ocsp/v2g               GetV2GOCSPRequestData
//	POST   /api/v1/ocsp/mo                GetMOOCSPRequestData
//	PUT    /api/v1/ocsp/{hash}            UpdateOCSPCache
//	GET    /api/v1/ocsp/{hash}            RetrieveOCSPCache
//	POST   /api/v1/verify                 VerifyCertificate
//	POST   /api/v1/links                  UpdateCertificateLinks
//	GET    /healthz, /readyz              liveness/readiness
//	GET    /metrics                       Prometheus scrape
//
// A {hash} path segment is the base64url encoding of a JSON-marshaled
// HashDTO, since a certificate hash identity carries four fields (algorithm,
// issuer name hash, issuer key hash, serial number), not one opaque token.
//
// # Error Handling
//
// Errors are returned as a JSON body with an HTTP status code:
//
//	{"error": "certstore: certificate store filesystem quota exceeded", "code": 507}
//
// # Middleware
//
// Recovery, correlation-ID propagation, request logging, Prometheus
// instrumentation, CORS, and an optional per-client rate limiter are applied
// to every route.
package rest
