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
	"github.com/evse-security/certstore/pkg/certstore"
	"github.com/evse-security/certstore/pkg/certwrapper"
)

// HashDTO is the wire form of a certwrapper.CertHash.
type HashDTO struct {
	Algorithm      string `json:"algorithm"`
	IssuerNameHash string `json:"issuer_name_hash"`
	IssuerKeyHash  string `json:"issuer_key_hash"`
	SerialNumber   string `json:"serial_number"`
}

func hashToDTO(h certwrapper.CertHash) HashDTO {
	return HashDTO{
		Algorithm:      string(h.Algorithm),
		IssuerNameHash: h.IssuerNameHash,
		IssuerKeyHash:  h.IssuerKeyHash,
		SerialNumber:   h.SerialNumber,
	}
}

func (d HashDTO) toHash() certwrapper.CertHash {
	return certwrapper.CertHash{
		Algorithm:      certstore.HashAlgorithm(d.Algorithm),
		IssuerNameHash: d.IssuerNameHash,
		IssuerKeyHash:  d.IssuerKeyHash,
		SerialNumber:   d.SerialNumber,
	}
}

// InstallCARequest is the body of POST /api/v1/ca.
type InstallCARequest struct {
	Type           string `json:"type"`
	CertificatePEM string `json:"certificate_pem"`
}

// InstallCertificateResponse is the response for InstallCA and
// UpdateLeafCertificate.
type InstallCertificateResponse struct {
	Result string `json:"result"`
}

// DeleteCertificateResponse is the response for DeleteCertificate.
type DeleteCertificateResponse struct {
	Result string `json:"result"`
	CAType string `json:"ca_type,omitempty"`
}

// UpdateLeafCertificateRequest is the body of PUT /api/v1/leaf/{type}.
type UpdateLeafCertificateRequest struct {
	ChainPEM string `json:"chain_pem"`
}

// GenerateCSRRequest is the body of POST /api/v1/csr.
type GenerateCSRRequest struct {
	Type               string `json:"type"`
	Country            string `json:"country"`
	Organization       string `json:"organization"`
	CommonName         string `json:"common_name"`
	UseCustomProvider  bool   `json:"use_custom_provider"`
	PrivateKeyPassword []byte `json:"private_key_password,omitempty"`
}

// GenerateCSRResponse is the response for GenerateCSR.
type GenerateCSRResponse struct {
	Result string `json:"result"`
	CSRPEM string `json:"csr_pem,omitempty"`
}

// OCSPReferenceDTO is one cached OCSP response entry for a leaf identity.
type OCSPReferenceDTO struct {
	Hash    HashDTO `json:"hash"`
	DERPath string  `json:"der_path"`
}

// LeafCertificateInfoResponse is the response for GetLeafCertificateInfo.
type LeafCertificateInfoResponse struct {
	Status          string             `json:"status"`
	Type            string             `json:"type,omitempty"`
	PrivateKeyPath  string             `json:"private_key_path,omitempty"`
	CertificatePath string             `json:"certificate_path,omitempty"`
	ChainPath       string             `json:"chain_path,omitempty"`
	OCSP            []OCSPReferenceDTO `json:"ocsp,omitempty"`
}

// CertificateHashDataChainDTO is one root and the hashes of its descendants.
type CertificateHashDataChainDTO struct {
	CertificateType string    `json:"certificate_type"`
	Hash            HashDTO   `json:"hash"`
	ChildHashes     []HashDTO `json:"child_hashes,omitempty"`
}

// CertificatesInfoResponse is the response for GetAllValidCertificatesInfo.
type CertificatesInfoResponse struct {
	Status string                        `json:"status"`
	Chains []CertificateHashDataChainDTO `json:"chains,omitempty"`
}

// OCSPRequestDataItemDTO is one hash/responder-url pair a caller needs to
// perform a live OCSP lookup itself.
type OCSPRequestDataItemDTO struct {
	Hash         HashDTO `json:"hash"`
	ResponderURL string  `json:"responder_url"`
}

// OCSPRequestDataResponse is the response for GetV2GOCSPRequestData and
// GetMOOCSPRequestData.
type OCSPRequestDataResponse struct {
	Items []OCSPRequestDataItemDTO `json:"items"`
}

// GetMOOCSPRequestDataRequest is the body of POST /api/v1/ocsp/mo.
type GetMOOCSPRequestDataRequest struct {
	ChainPEM string `json:"chain_pem"`
}

// UpdateOCSPCacheRequest is the body of PUT /api/v1/ocsp/{hash}.
type UpdateOCSPCacheRequest struct {
	ResponseDER []byte `json:"response_der"`
}

// RetrieveOCSPCacheResponse is the response for RetrieveOCSPCache.
type RetrieveOCSPCacheResponse struct {
	Path string `json:"path"`
}

// VerifyCertificateRequest is the body of POST /api/v1/verify.
type VerifyCertificateRequest struct {
	ChainPEM  string   `json:"chain_pem"`
	LeafTypes []string `json:"leaf_types"`
}

// VerifyCertificateResponse is the response for VerifyCertificate.
type VerifyCertificateResponse struct {
	Result string `json:"result"`
}

// UpdateCertificateLinksResponse is the response for UpdateCertificateLinks.
type UpdateCertificateLinksResponse struct {
	Updated bool `json:"updated"`
}

// LeafExpiryResponse is the response for GetLeafExpiryDaysCount.
type LeafExpiryResponse struct {
	Days int `json:"days"`
}

// CAInstalledResponse is the response for IsCACertificateInstalled.
type CAInstalledResponse struct {
	Installed bool `json:"installed"`
}

// CertificateCountRequest is the body of POST /api/v1/ca/count.
type CertificateCountRequest struct {
	CaTypes             []string `json:"ca_types"`
	IncludeV2GLeafChain bool     `json:"include_v2g_leaf_chain"`
}

// CertificateCountResponse is the response for GetCountOfInstalledCertificates.
type CertificateCountResponse struct {
	Count int `json:"count"`
}

// CertificateSigningRequestFailedRequest is the body of POST
// /api/v1/leaf/{type}/csr/failed.
type CertificateSigningRequestFailedRequest struct {
	CSRPEM string `json:"csr_pem"`
}
