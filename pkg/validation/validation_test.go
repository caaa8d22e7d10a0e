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

package validation

import (
	"strings"
	"testing"
)

func TestValidateTypeParam(t *testing.T) {
	tests := []struct {
		name     string
		typeName string
		wantErr  bool
	}{
		{"valid CSMS", "CSMS", false},
		{"valid V2G", "V2G", false},
		{"valid MF", "MF", false},
		{"valid MO", "MO", false},
		{"valid unrecognized but well-formed", "BOGUS123", false},

		{"empty string", "", true},
		{"null byte", "CS\x00MS", true},
		{"path traversal", "../CSMS", true},
		{"absolute path", "/CSMS", true},
		{"control character", "CSMS\n", true},
		{"lowercase", "csms", true},
		{"special char semicolon", "CSMS;rm", true},
		{"special char space", "CS MS", true},
		{"too long", strings.Repeat("A", 33), true},
		{"del character", "CSMS\x7f", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTypeParam(tt.typeName)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTypeParam(%q) error = %v, wantErr %v", tt.typeName, err, tt.wantErr)
			}
		})
	}
}

func TestValidateHashParam(t *testing.T) {
	tests := []struct {
		name    string
		param   string
		wantErr bool
	}{
		{"valid base64url", "eyJhbGciOiJTSEEyNTYifQ", false},
		{"valid with dash and underscore", "abc-DEF_123", false},

		{"empty string", "", true},
		{"null byte", "abc\x00def", true},
		{"path traversal", "../../etc/passwd", true},
		{"control character", "abc\ndef", true},
		{"padding character not in base64url", "abc=def", true},
		{"special char slash", "abc/def", true},
		{"special char plus", "abc+def", true},
		{"too long", strings.Repeat("a", 513), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHashParam(tt.param)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateHashParam(%q) error = %v, wantErr %v", tt.param, err, tt.wantErr)
			}
		})
	}
}

func TestSanitizeForLog(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"clean string", "hello world", "hello world"},
		{"with newline", "hello\nworld", "helloworld"},
		{"with tab", "hello\tworld", "helloworld"},
		{"with null byte", "hello\x00world", "helloworld"},
		{"with del character", "hello\x7fworld", "helloworld"},
		{"with multiple controls", "hello\n\r\t\x00world", "helloworld"},
		{"very long string", strings.Repeat("a", 1500), strings.Repeat("a", 1000) + "...[truncated]"},
		{"empty string", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SanitizeForLog(tt.input)
			if result != tt.expected {
				t.Errorf("SanitizeForLog(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

// Benchmark tests
func BenchmarkValidateTypeParam(b *testing.B) {
	typeName := "CSMS"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ValidateTypeParam(typeName)
	}
}

func BenchmarkValidateHashParam(b *testing.B) {
	param := "eyJhbGciOiJTSEEyNTYifQ"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ValidateHashParam(param)
	}
}

func BenchmarkSanitizeForLog(b *testing.B) {
	input := "hello world with some text"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = SanitizeForLog(input)
	}
}

// Security tests - specifically test attack vectors against path parameters
// arriving over the REST API.
func TestSecurityAttackVectors(t *testing.T) {
	attackVectors := []struct {
		name   string
		input  string
		testFn func(string) error
	}{
		{"path traversal type param", "../../../etc/passwd", ValidateTypeParam},
		{"path traversal type param 2", "../../etc/shadow", ValidateTypeParam},
		{"path traversal hash param", "../hash", ValidateHashParam},

		{"null byte type param", "CSMS\x00", ValidateTypeParam},
		{"null byte hash param", "hash\x00", ValidateHashParam},

		{"command injection type param 1", "CSMS;rm -rf /", ValidateTypeParam},
		{"command injection type param 2", "CSMS`whoami`", ValidateTypeParam},
		{"command injection type param 3", "CSMS$(whoami)", ValidateTypeParam},

		{"sql injection type param", "CSMS' OR '1'='1", ValidateTypeParam},

		{"log injection newline", "CSMS\nINFO: fake log", ValidateTypeParam},
		{"log injection carriage return", "CSMS\rINFO: fake", ValidateTypeParam},

		{"unicode normalization", "CSMS‮", ValidateTypeParam}, // Right-to-left override
	}

	for _, tt := range attackVectors {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.testFn(tt.input)
			if err == nil {
				t.Errorf("Attack vector %q was not blocked!", tt.input)
			}
		})
	}
}
