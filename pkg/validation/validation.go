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

// Package validation provides centralized input validation for path
// parameters arriving over the certificate store's REST API, before they are
// switched on to select a CA/leaf type or base64-decoded into a hash
// identity. Every public interface that accepts one of these identifiers
// should validate it here first.
package validation

import (
	"fmt"
	"strings"
)

var (
	// typeNamePattern matches the bundle type identifiers the store
	// recognizes (CSMS, MF, MO, V2G): uppercase letters and digits only.
	typeNamePattern = mustSimpleCharset("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

	// hashParamPattern matches the base64url alphabet encodeHashParam
	// produces, so a malformed or hostile {hash} segment is rejected before
	// it ever reaches base64 decoding or JSON unmarshaling.
	hashParamPattern = mustSimpleCharset("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_")
)

func mustSimpleCharset(alphabet string) map[rune]bool {
	set := make(map[rune]bool, len(alphabet))
	for _, r := range alphabet {
		set[r] = true
	}
	return set
}

func matchesCharset(s string, set map[rune]bool) bool {
	for _, r := range s {
		if !set[r] {
			return false
		}
	}
	return true
}

// ValidateTypeParam validates a {type} path parameter (a CA or leaf
// certificate type name) before it is switched on to select a bundle.
// Rejects empty strings, control characters, and anything outside the
// uppercase-alphanumeric charset real type names use, independent of
// whether the specific name is one the store recognizes.
func ValidateTypeParam(typeName string) error {
	if typeName == "" {
		return fmt.Errorf("type parameter cannot be empty")
	}
	if strings.Contains(typeName, "\x00") {
		return fmt.Errorf("type parameter contains null byte")
	}
	if len(typeName) > 32 {
		return fmt.Errorf("type parameter too long (max 32 characters)")
	}
	for _, r := range typeName {
		if r < 32 || r == 127 {
			return fmt.Errorf("type parameter contains control characters")
		}
	}
	if !matchesCharset(typeName, typeNamePattern) {
		return fmt.Errorf("type parameter contains invalid characters (allowed: A-Z, 0-9)")
	}
	return nil
}

// ValidateHashParam validates the raw, still-encoded {hash} path parameter
// before it is base64-decoded and unmarshaled into a hash identity.
func ValidateHashParam(param string) error {
	if param == "" {
		return fmt.Errorf("hash parameter cannot be empty")
	}
	if strings.Contains(param, "\x00") {
		return fmt.Errorf("hash parameter contains null byte")
	}
	// A SHA-256 hash field base64url-encoded, times four fields plus JSON
	// structure, comfortably fits well under this bound; anything longer is
	// not a hash this store issued.
	if len(param) > 512 {
		return fmt.Errorf("hash parameter too long (max 512 characters)")
	}
	if !matchesCharset(param, hashParamPattern) {
		return fmt.Errorf("hash parameter contains invalid characters (allowed: base64url alphabet)")
	}
	return nil
}

// SanitizeForLog sanitizes a string for safe logging (prevents log injection).
func SanitizeForLog(s string) string {
	// Remove control characters and null bytes
	s = strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)

	// Limit length to prevent log flooding
	if len(s) > 1000 {
		s = s[:1000] + "...[truncated]"
	}

	return s
}
