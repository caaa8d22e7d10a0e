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

import "errors"

// Configuration errors
var (
	// ErrInvalidConfig is returned when the manager configuration is invalid.
	ErrInvalidConfig = errors.New("certstore: invalid configuration")

	// ErrStoreClosed is returned when an operation is attempted after Close.
	ErrStoreClosed = errors.New("certstore: store is closed")
)

// Certificate errors
var (
	// ErrUnknownCaType is returned for a CaCertificateType value not in
	// {CSMS, MF, MO, V2G}.
	ErrUnknownCaType = errors.New("certstore: unknown CA certificate type")

	// ErrUnknownLeafType is returned for a LeafCertificateType value not in
	// {CSMS, V2G}.
	ErrUnknownLeafType = errors.New("certstore: unknown leaf certificate type")

	// ErrCSMSLeafDeleteNotAllowed is returned when DeleteCertificate is asked
	// to remove a CSMS leaf without also removing its root.
	ErrCSMSLeafDeleteNotAllowed = errors.New("certstore: CSMS leaf certificates cannot be deleted independently of their root")

	// ErrInvalidPEM is returned when a PEM blob cannot be decoded.
	ErrInvalidPEM = errors.New("certstore: invalid PEM data")
)

// Quota errors
var (
	// ErrFilesystemFull names an exceeded filesystem quota; the REST layer
	// maps it to 507. The Manager's install operations report a full store
	// through InstallCertificateStoreMaxLength rather than returning it.
	ErrFilesystemFull = errors.New("certstore: certificate store filesystem quota exceeded")
)
