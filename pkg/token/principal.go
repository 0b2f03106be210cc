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

package token

import (
	"fmt"
	"strings"

	"github.com/jeremyhahn/go-xsuaa/pkg/validation"
)

const (
	userPrincipalPrefix   = "user"
	clientPrincipalPrefix = "client"
)

// Principal is the identity an access token was issued to. Names are
// "user/<origin>/<user_name>" for user tokens and "client/<client id>" for
// client tokens; the two forms cannot collide.
type Principal struct {
	name     string
	origin   string
	user     string
	clientID string
}

// Name returns the unique principal name.
func (p Principal) Name() string {
	return p.name
}

// Origin returns the identity provider of a user principal.
func (p Principal) Origin() string {
	return p.origin
}

// UserName returns the user name of a user principal.
func (p Principal) UserName() string {
	return p.user
}

// ClientID returns the client id of a client principal.
func (p Principal) ClientID() string {
	return p.clientID
}

// IsClient reports whether the principal is an OAuth client, not a user.
func (p Principal) IsClient() bool {
	return p.user == ""
}

func (p Principal) String() string {
	return p.name
}

// UniquePrincipalName builds "user/<origin>/<user>". It fails with
// ErrIllegalArgument when origin or user is empty, or when origin contains
// the "/" separator.
func UniquePrincipalName(origin, user string) (string, error) {
	if err := validation.ValidateOrigin(origin); err != nil {
		return "", fmt.Errorf("%w: %w", ErrIllegalArgument, err)
	}
	if err := validation.ValidateUserName(user); err != nil {
		return "", fmt.Errorf("%w: %w", ErrIllegalArgument, err)
	}
	return strings.Join([]string{userPrincipalPrefix, origin, user}, validation.PrincipalSeparator), nil
}

func clientPrincipalName(clientID string) string {
	return clientPrincipalPrefix + validation.PrincipalSeparator + clientID
}
