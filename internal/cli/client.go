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
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/evse-security/certstore/internal/rest"
)

// client is a thin REST client over a running certificate store server,
// talking the same request/response DTOs the server itself defines.
type client struct {
	baseURL string
	http    *http.Client
}

func newClient(cfg *Config) (*client, error) {
	httpClient, err := cfg.HTTPClient()
	if err != nil {
		return nil, err
	}
	return &client{baseURL: cfg.ServerURL, http: httpClient}, nil
}

// do sends a JSON request and decodes the response into out (skipped if
// out is nil or the response has no body, e.g. 204 No Content).
func (c *client) do(method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var errResp rest.ErrorResponse
		if decErr := json.NewDecoder(resp.Body).Decode(&errResp); decErr == nil && errResp.Error != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, errResp.Error)
		}
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// hashPathSegment mirrors internal/rest's base64url-of-JSON hash encoding,
// since a certificate hash identity has four fields, not one opaque token.
func hashPathSegment(h rest.HashDTO) (string, error) {
	b, err := json.Marshal(h)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func (c *client) installCA(req rest.InstallCARequest) (*rest.InstallCertificateResponse, error) {
	var resp rest.InstallCertificateResponse
	if err := c.do(http.MethodPost, "/api/v1/ca", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *client) deleteCertificate(hash rest.HashDTO) (*rest.DeleteCertificateResponse, error) {
	seg, err := hashPathSegment(hash)
	if err != nil {
		return nil, err
	}
	var resp rest.DeleteCertificateResponse
	if err := c.do(http.MethodDelete, "/api/v1/certificates/"+seg, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *client) getAllValidCertificatesInfo(caTypes []string) (*rest.CertificatesInfoResponse, error) {
	path := "/api/v1/certificates"
	if len(caTypes) > 0 {
		q := url.Values{}
		for _, t := range caTypes {
			q.Add("type", t)
		}
		path += "?" + q.Encode()
	}
	var resp rest.CertificatesInfoResponse
	if err := c.do(http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *client) updateLeafCertificate(leafType string, req rest.UpdateLeafCertificateRequest) (*rest.InstallCertificateResponse, error) {
	var resp rest.InstallCertificateResponse
	if err := c.do(http.MethodPut, "/api/v1/leaf/"+url.PathEscape(leafType), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *client) getLeafCertificateInfo(leafType string, includeOCSP bool) (*rest.LeafCertificateInfoResponse, error) {
	path := "/api/v1/leaf/" + url.PathEscape(leafType)
	if includeOCSP {
		path += "?ocsp=true"
	}
	var resp rest.LeafCertificateInfoResponse
	if err := c.do(http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *client) getLeafExpiryDaysCount(leafType string) (*rest.LeafExpiryResponse, error) {
	var resp rest.LeafExpiryResponse
	if err := c.do(http.MethodGet, "/api/v1/leaf/"+url.PathEscape(leafType)+"/expiry", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *client) generateCSR(req rest.GenerateCSRRequest) (*rest.GenerateCSRResponse, error) {
	var resp rest.GenerateCSRResponse
	if err := c.do(http.MethodPost, "/api/v1/csr", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *client) getV2GOCSPRequestData() (*rest.OCSPRequestDataResponse, error) {
	var resp rest.OCSPRequestDataResponse
	if err := c.do(http.MethodGet, "/api/v1/ocsp/v2g", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *client) getMOOCSPRequestData(req rest.GetMOOCSPRequestDataRequest) (*rest.OCSPRequestDataResponse, error) {
	var resp rest.OCSPRequestDataResponse
	if err := c.do(http.MethodPost, "/api/v1/ocsp/mo", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *client) updateOCSPCache(hash rest.HashDTO, req rest.UpdateOCSPCacheRequest) error {
	seg, err := hashPathSegment(hash)
	if err != nil {
		return err
	}
	return c.do(http.MethodPut, "/api/v1/ocsp/"+seg, req, nil)
}

func (c *client) retrieveOCSPCache(hash rest.HashDTO) (*rest.RetrieveOCSPCacheResponse, error) {
	seg, err := hashPathSegment(hash)
	if err != nil {
		return nil, err
	}
	var resp rest.RetrieveOCSPCacheResponse
	if err := c.do(http.MethodGet, "/api/v1/ocsp/"+seg, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *client) verifyCertificate(req rest.VerifyCertificateRequest) (*rest.VerifyCertificateResponse, error) {
	var resp rest.VerifyCertificateResponse
	if err := c.do(http.MethodPost, "/api/v1/verify", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *client) updateCertificateLinks() (*rest.UpdateCertificateLinksResponse, error) {
	var resp rest.UpdateCertificateLinksResponse
	if err := c.do(http.MethodPost, "/api/v1/links", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *client) isCACertificateInstalled(caType string) (*rest.CAInstalledResponse, error) {
	var resp rest.CAInstalledResponse
	if err := c.do(http.MethodGet, "/api/v1/ca/"+url.PathEscape(caType)+"/installed", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *client) getCountOfInstalledCertificates(req rest.CertificateCountRequest) (*rest.CertificateCountResponse, error) {
	var resp rest.CertificateCountResponse
	if err := c.do(http.MethodPost, "/api/v1/ca/count", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *client) certificateSigningRequestFailed(leafType string, req rest.CertificateSigningRequestFailedRequest) error {
	return c.do(http.MethodPost, "/api/v1/leaf/"+url.PathEscape(leafType)+"/csr/failed", req, nil)
}
