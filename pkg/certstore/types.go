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
	"github.com/evse-security/certstore/pkg/certwrapper"
	"github.com/evse-security/certstore/pkg/cryptoprovider"
)

// CaCertificateType identifies one of the four trust-anchor bundles the
// store manages.
type CaCertificateType string

const (
	CaCSMS CaCertificateType = "CSMS"
	CaMF   CaCertificateType = "MF"
	CaMO   CaCertificateType = "MO"
	CaV2G  CaCertificateType = "V2G"
)

// LeafCertificateType identifies the leaf identity a certificate chain
// belongs to. CSMS and V2G are the two identities the store manages (own
// key directories, GenerateCSR, UpdateLeafCertificate); MF and MO only ever
// appear as a VerifyCertificate trust-anchor selector, mirroring the
// mobility-operator and manufacturer trust relationships a chain can be
// checked against without the store holding that identity's own key.
type LeafCertificateType string

const (
	LeafCSMS LeafCertificateType = "CSMS"
	LeafV2G  LeafCertificateType = "V2G"
	LeafMF   LeafCertificateType = "MF"
	LeafMO   LeafCertificateType = "MO"
)

// InstallCertificateResult is the outcome of InstallCA.
type InstallCertificateResult string

const (
	InstallAccepted                      InstallCertificateResult = "Accepted"
	InstallInvalidSignature              InstallCertificateResult = "InvalidSignature"
	InstallInvalidCertificateChain       InstallCertificateResult = "InvalidCertificateChain"
	InstallInvalidFormat                 InstallCertificateResult = "InvalidFormat"
	InstallInvalidCommonName             InstallCertificateResult = "InvalidCommonName"
	InstallNoRootCertificateInstalled    InstallCertificateResult = "NoRootCertificateInstalled"
	InstallExpired                       InstallCertificateResult = "Expired"
	InstallCertificateStoreMaxLength     InstallCertificateResult = "CertificateStoreMaxLengthExceeded"
	InstallWriteError                    InstallCertificateResult = "WriteError"
)

// DeleteCertificateResult is the outcome of DeleteCertificate.
type DeleteCertificateResult string

const (
	DeleteAccepted DeleteCertificateResult = "Accepted"
	DeleteFailed   DeleteCertificateResult = "Failed"
	DeleteNotFound DeleteCertificateResult = "NotFound"
)

// CertificateInfoStatus is the outcome of the leaf-info lookup operations.
type CertificateInfoStatus string

const (
	InfoAccepted           CertificateInfoStatus = "Accepted"
	InfoRejected           CertificateInfoStatus = "Rejected"
	InfoNotFound           CertificateInfoStatus = "NotFound"
	InfoNotFoundValid      CertificateInfoStatus = "NotFoundValid"
	InfoPrivateKeyNotFound CertificateInfoStatus = "PrivateKeyNotFound"
)

// CSRResult is the outcome of GenerateCSR.
type CSRResult string

const (
	CSRAccepted              CSRResult = "Accepted"
	CSRInvalidRequestedType  CSRResult = "InvalidRequestedType"
	CSRKeyGenError           CSRResult = "KeyGenError"
	CSRGenerationError       CSRResult = "GenerationError"
)

// CertificateHashDataChain is one root and the hashes of its descendants,
// returned by GetLeafCertificateInfo / GetAllValidCertificatesInfo.
type CertificateHashDataChain struct {
	CertificateType CaCertificateType
	Hash            certwrapper.CertHash
	ChildHashes     []certwrapper.CertHash
}

// LeafCertificateInfo describes one installed leaf identity along with its
// private key location and, optionally, its cached OCSP data.
type LeafCertificateInfo struct {
	Type            LeafCertificateType
	PrivateKeyPath  string
	CertificatePath string
	ChainPath       string
	Password        []byte
	OCSP            []ocspReference
	RootPEM         []byte
}

type ocspReference struct {
	Hash    certwrapper.CertHash
	DERPath string
}

// CSRRequest carries the parameters needed to generate a certificate signing
// request for a leaf identity.
type CSRRequest struct {
	Type             LeafCertificateType
	Country          string
	Organization     string
	CommonName       string
	UseCustomProvider bool
	PrivateKeyPassword []byte
}

// OCSPRequestDataItem is one hash/responder-url pair a caller needs in order
// to perform a live OCSP lookup itself.
type OCSPRequestDataItem struct {
	Hash         certwrapper.CertHash
	ResponderURL string
}

// HashAlgorithm re-exports cryptoprovider's algorithm type so callers of
// this package do not need to import cryptoprovider directly.
type HashAlgorithm = cryptoprovider.HashAlgorithm

const (
	SHA256 = cryptoprovider.SHA256
	SHA384 = cryptoprovider.SHA384
	SHA512 = cryptoprovider.SHA512
)
