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

import "errors"

var (
	// ErrIllegalArgument indicates invalid caller input: an empty or
	// malformed access token, or invalid principal name components.
	ErrIllegalArgument = errors.New("token: illegal argument")

	// ErrNoPrincipal indicates the token carries neither a user name nor a
	// client id to derive a principal from.
	ErrNoPrincipal = errors.New("token: no principal claims")
)
