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

package certstore

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/evse-security/certstore/pkg/cryptoprovider"
)

func TestVerifyCertificateRejectsEmptyLeafTypeSet(t *testing.T) {
	provider := cryptoprovider.New()
	m, err := New(testConfig(t), provider, nil)
	require.NoError(t, err)

	root, _ := selfSignedRoot(t, "standalone")
	pemBytes, err := provider.EncodeCertificatePEM(root)
	require.NoError(t, err)

	result, err := m.VerifyCertificate(pemBytes, nil)
	require.NoError(t, err)
	require.Equal(t, cryptoprovider.ChainIssuerNotFound, result)
}

func TestVerifyCertificateChecksOnlyTheMatchingCABundle(t *testing.T) {
	provider := cryptoprovider.New()
	m, err := New(testConfig(t), provider, nil)
	require.NoError(t, err)

	csmsRoot, _ := selfSignedRoot(t, "csms-root")
	csmsRootPEM, err := provider.EncodeCertificatePEM(csmsRoot)
	require.NoError(t, err)
	_, err = m.InstallCA(csmsRootPEM, CaCSMS)
	require.NoError(t, err)

	// A CSMS-rooted chain verifies under LeafCSMS...
	result, err := m.VerifyCertificate(csmsRootPEM, []LeafCertificateType{LeafCSMS})
	require.NoError(t, err)
	require.Equal(t, cryptoprovider.ChainValid, result)

	// ...but not under LeafV2G, since CSMS and V2G trust anchors are never unioned.
	result, err = m.VerifyCertificate(csmsRootPEM, []LeafCertificateType{LeafV2G})
	require.NoError(t, err)
	require.NotEqual(t, cryptoprovider.ChainValid, result)
}

func TestVerifyCertificateUnionsMultipleLeafTypes(t *testing.T) {
	provider := cryptoprovider.New()
	m, err := New(testConfig(t), provider, nil)
	require.NoError(t, err)

	moRoot, _ := selfSignedRoot(t, "mo-root")
	moRootPEM, err := provider.EncodeCertificatePEM(moRoot)
	require.NoError(t, err)
	_, err = m.InstallCA(moRootPEM, CaMO)
	require.NoError(t, err)

	result, err := m.VerifyCertificate(moRootPEM, []LeafCertificateType{LeafV2G, LeafMO})
	require.NoError(t, err)
	require.Equal(t, cryptoprovider.ChainValid, result)
}
