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
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/evse-security/certstore/pkg/certstore"
	"github.com/evse-security/certstore/pkg/validation"
)

// encodeHashParam packs a HashDTO into a URL-safe path segment, since a
// certificate hash identity is four fields, not a single opaque token.
func encodeHashParam(h HashDTO) string {
	b, _ := json.Marshal(h)
	return base64.RawURLEncoding.EncodeToString(b)
}

// decodeHashParam reverses encodeHashParam, rejecting a malformed path
// segment before it is ever base64-decoded or unmarshaled.
func decodeHashParam(param string) (HashDTO, error) {
	if err := validation.ValidateHashParam(param); err != nil {
		return HashDTO{}, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}

	b, err := base64.RawURLEncoding.DecodeString(param)
	if err != nil {
		return HashDTO{}, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
	var h HashDTO
	if err := json.Unmarshal(b, &h); err != nil {
		return HashDTO{}, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
	if h.Algorithm == "" || h.IssuerNameHash == "" || h.IssuerKeyHash == "" || h.SerialNumber == "" {
		return HashDTO{}, fmt.Errorf("%w: missing field", ErrInvalidHash)
	}
	return h, nil
}

// validCaType reports whether s names one of the four trust-anchor types.
func validCaType(s string) (certstore.CaCertificateType, bool) {
	if err := validation.ValidateTypeParam(s); err != nil {
		return "", false
	}
	switch certstore.CaCertificateType(s) {
	case certstore.CaCSMS, certstore.CaMF, certstore.CaMO, certstore.CaV2G:
		return certstore.CaCertificateType(s), true
	default:
		return "", false
	}
}

// validLeafType reports whether s names one of the two managed leaf
// identities (the only ones with their own key/cert directories).
func validLeafType(s string) (certstore.LeafCertificateType, bool) {
	if err := validation.ValidateTypeParam(s); err != nil {
		return "", false
	}
	switch certstore.LeafCertificateType(s) {
	case certstore.LeafCSMS, certstore.LeafV2G:
		return certstore.LeafCertificateType(s), true
	default:
		return "", false
	}
}

// validVerifyLeafType reports whether s names one of the four leaf types
// VerifyCertificate accepts as a trust-anchor selector (CSMS, V2G, plus the
// manufacturer and mobility-operator selectors that only ever appear here).
func validVerifyLeafType(s string) (certstore.LeafCertificateType, bool) {
	if err := validation.ValidateTypeParam(s); err != nil {
		return "", false
	}
	switch certstore.LeafCertificateType(s) {
	case certstore.LeafCSMS, certstore.LeafV2G, certstore.LeafMF, certstore.LeafMO:
		return certstore.LeafCertificateType(s), true
	default:
		return "", false
	}
}
