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

import "time"

// Default policy values, used whenever a Config field is left at its zero
// value.
const (
	// DefaultMaxFilesystemUsageBytes caps the combined size of every bundle
	// and leaf directory the store manages.
	DefaultMaxFilesystemUsageBytes int64 = 64 * 1024 * 1024

	// DefaultMaxCertificateEntries caps the number of certificates (across
	// all CA bundles and leaf directories) the store will hold.
	DefaultMaxCertificateEntries = 1000

	// DefaultMinimumCertificateEntries is the number of newest chains the
	// garbage collector keeps in each leaf directory, expired or not.
	DefaultMinimumCertificateEntries = 1

	// DefaultCSRExpiry is how long a generated CSR's private key is kept on
	// disk waiting for its signed certificate before the collector reaps it.
	DefaultCSRExpiry = 7 * 24 * time.Hour

	// DefaultGarbageCollectInterval is how often the collector runs when the
	// store is managed by a long-lived server process.
	DefaultGarbageCollectInterval = time.Hour
)
