// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-xsuaa.
//
// go-xsuaa is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package validation checks untrusted identity and key inputs before they are
// used to build principal names, trigger key refreshes or reach a log line.
package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// PrincipalSeparator joins the components of a unique principal name.
const PrincipalSeparator = "/"

var (
	// keyIDPattern matches the characters seen in key ids of JWKS documents:
	// alphanumerics, base64 and base64url symbols, dots and colons
	keyIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_\-\.=+/:]+$`)
)

// ValidateOrigin validates the identity provider origin of a user principal.
// The origin must be non-empty and must not contain the separator, so that
// an origin cannot absorb part of the user name.
func ValidateOrigin(origin string) error {
	if origin == "" {
		return fmt.Errorf("Origin must not be empty")
	}
	if strings.Contains(origin, PrincipalSeparator) {
		return fmt.Errorf("Origin must not contain '%s' character", PrincipalSeparator)
	}
	return nil
}

// ValidateUserName validates the user name component of a user principal.
// The user name is the last component and may contain the separator.
func ValidateUserName(user string) error {
	if user == "" {
		return fmt.Errorf("User must not be empty")
	}
	return nil
}

// ValidateKeyID validates a key id taken from a token header before it is
// used to look up or refresh verification keys.
// Prevents log injection and refresh flooding by:
// - Rejecting empty strings
// - Rejecting null bytes and control characters
// - Allowing only characters found in key ids
// - Enforcing length limits
func ValidateKeyID(keyID string) error {
	if keyID == "" {
		return fmt.Errorf("key ID cannot be empty")
	}

	// Check for null bytes
	if strings.Contains(keyID, "\x00") {
		return fmt.Errorf("key ID contains null byte")
	}

	// Check length before other validations (prevent ReDoS)
	if len(keyID) > 255 {
		return fmt.Errorf("key ID too long (max 255 characters)")
	}

	for _, r := range keyID {
		if r < 32 || r == 127 {
			return fmt.Errorf("key ID contains control characters")
		}
	}

	if !keyIDPattern.MatchString(keyID) {
		return fmt.Errorf("key ID contains invalid characters (allowed: a-z, A-Z, 0-9, -, _, ., =, +, /, :)")
	}

	return nil
}

// ValidateEndpointURL validates the URL of a token keys endpoint. Only
// absolute http and https URLs without user info are accepted.
func ValidateEndpointURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("URL cannot be empty")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	if u.User != nil {
		return fmt.Errorf("URL must not contain user info")
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
