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

package bundle

import "errors"

var (
	// ErrStringSourceNotExportable is returned by StringSource.Export; an
	// in-memory bundle has nowhere to persist to.
	ErrStringSourceNotExportable = errors.New("bundle: string source cannot be exported")

	// ErrPathNotAllowed is returned when a certificate's path does not
	// belong under the bundle's source (e.g. outside a directory source's root).
	ErrPathNotAllowed = errors.New("bundle: certificate path not allowed by source")
)
