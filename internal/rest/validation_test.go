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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/evse-security/certstore/pkg/certstore"
)

func TestHashParamRoundTrips(t *testing.T) {
	dto := HashDTO{
		Algorithm:      "SHA256",
		IssuerNameHash: "abc123",
		IssuerKeyHash:  "def456",
		SerialNumber:   "01",
	}
	param := encodeHashParam(dto)
	got, err := decodeHashParam(param)
	require.NoError(t, err)
	require.Equal(t, dto, got)
}

func TestDecodeHashParamRejectsInvalidBase64(t *testing.T) {
	_, err := decodeHashParam("not valid base64!!!")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalidHash))
}

func TestDecodeHashParamRejectsMissingFields(t *testing.T) {
	param := encodeHashParam(HashDTO{Algorithm: "SHA256"})
	_, err := decodeHashParam(param)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalidHash))
}

func TestValidCaTypeAcceptsKnownTypes(t *testing.T) {
	for _, s := range []string{"CSMS", "MF", "MO", "V2G"} {
		caType, ok := validCaType(s)
		require.True(t, ok, s)
		require.Equal(t, certstore.CaCertificateType(s), caType)
	}
}

func TestValidCaTypeRejectsUnknownType(t *testing.T) {
	_, ok := validCaType("BOGUS")
	require.False(t, ok)
}

func TestValidLeafTypeAcceptsKnownTypes(t *testing.T) {
	for _, s := range []string{"CSMS", "V2G"} {
		leafType, ok := validLeafType(s)
		require.True(t, ok, s)
		require.Equal(t, certstore.LeafCertificateType(s), leafType)
	}
}

func TestValidLeafTypeRejectsUnknownType(t *testing.T) {
	_, ok := validLeafType("MF")
	require.False(t, ok)
}
