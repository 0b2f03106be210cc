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

// Package token models XSUAA access tokens: claim access, scopes, grant
// type and the principal a token was issued to.
//
//	tok, err := token.New(accessToken)
//	if err != nil {
//	    // errors.Is(err, token.ErrIllegalArgument)
//	}
//	tok = tok.WithScopeConverter(token.NewXSUAAScopeConverter(cfg.XSAppName()))
//	if tok.HasLocalScope("Read") {
//	    principal, err := tok.Principal()
//	    ...
//	}
//
// The token is only decoded. Signature and lifetime checks are done by
// package verification.
package token
