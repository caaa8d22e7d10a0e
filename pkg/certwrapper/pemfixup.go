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

package certwrapper

import (
	"regexp"
	"strings"
)

var pemBlockPattern = regexp.MustCompile(`(?s)(-----BEGIN [A-Z0-9 ]+-----)(.*)(-----END [A-Z0-9 ]+-----)`)

// FixPEMString normalizes a single PEM block whose base64 payload may have
// been re-wrapped, had whitespace stripped, or otherwise mangled in transit.
// It re-wraps the payload into canonical 64-column lines.
func FixPEMString(input string) (string, error) {
	m := pemBlockPattern.FindStringSubmatch(input)
	if m == nil {
		return "", ErrMalformedPEM
	}
	header, payload, footer := m[1], m[2], m[3]

	var clean strings.Builder
	for _, r := range payload {
		if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '+' || r == '/' || r == '=' {
			clean.WriteRune(r)
		}
	}
	cleaned := clean.String()

	var wrapped strings.Builder
	for i := 0; i < len(cleaned); i += 64 {
		end := i + 64
		if end > len(cleaned) {
			end = len(cleaned)
		}
		wrapped.WriteString(cleaned[i:end])
		wrapped.WriteByte('\n')
	}

	return header + "\n" + wrapped.String() + footer + "\n", nil
}
