// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/authz"
	"github.com/taibuivan/yamdb/internal/platform/constants"
	"github.com/taibuivan/yamdb/internal/platform/ctxutil"
	"github.com/taibuivan/yamdb/internal/platform/respond"
	"github.com/taibuivan/yamdb/internal/platform/sec"
)

// TokenVerifier checks a bearer token and returns its claims.
//
// Defining it here decouples the middleware from [sec.TokenService] so tests
// can inject a stub.
type TokenVerifier interface {
	Verify(token string) (*sec.AuthClaims, error)
}

// IdentityLoader resolves the current role and staff flag of a user id.
//
// It returns an error satisfying [apperr.IsNotFound] when the account no
// longer exists.
type IdentityLoader interface {
	LoadIdentity(ctx context.Context, userID string) (*sec.Identity, error)
}

// Authenticate extracts and verifies the JWT from the Authorization header.
//
// # Flow
//  1. Check for 'Authorization: Bearer <token>' header.
//  2. If absent, request proceeds as anonymous.
//  3. If present, parse and verify the JWT via [TokenVerifier].
//  4. Load the [*sec.Identity] of the token's user via [IdentityLoader].
//  5. Inject the identity into the request context for downstream use.
//
// # Parameters
//   - verifier: The TokenVerifier instance.
//   - loader: The user directory.
//
// # Returns
//   - An [http.Handler] middleware.
func Authenticate(verifier TokenVerifier, loader IdentityLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get(constants.HeaderAuthorization)

			// ── 1. Anonymous Access ───────────────────────────────────────────
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Format Validation ──────────────────────────────────────────
			scheme, token, found := strings.Cut(authHeader, " ")
			if !found || !strings.EqualFold(scheme, "bearer") || token == "" {
				respond.Error(writer, request, apperr.Unauthorized("Invalid authorization format"))
				return
			}

			// ── 3. Token Verification ─────────────────────────────────────────
			claims, err := verifier.Verify(token)
			if err != nil {
				respond.Error(writer, request, apperr.Unauthorized("Invalid or expired token"))
				return
			}

			// ── 4. Identity Resolution ────────────────────────────────────────
			identity, err := loader.LoadIdentity(request.Context(), claims.UserID)
			if err != nil {
				if apperr.IsNotFound(err) {
					respond.Error(writer, request, apperr.Unauthorized("User not found"))
					return
				}
				respond.Error(writer, request, err)
				return
			}

			// ── 5. Context Injection ──────────────────────────────────────────
			recordActor(writer, identity.UserID)
			ctx := ctxutil.WithIdentity(request.Context(), identity)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetIdentity(request.Context()) == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication credentials were not provided"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// Authorize enforces the action-level rule of a policy.
//
// The action is derived from the HTTP method and from whether the matched
// route carries the idParam URL parameter. Pass "" for collection routes.
// Object-level rules (ownership) are checked by the services once the object
// is loaded.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
func Authorize(policy authz.Policy, idParam string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			hasID := idParam != "" && chi.URLParam(request, idParam) != ""

			action, ok := authz.ActionFromMethod(request.Method, hasID)
			if !ok {
				respond.Error(writer, request, apperr.Forbidden("Method not allowed on this resource"))
				return
			}

			identity := ctxutil.GetIdentity(request.Context())
			if err := policy.Check(identity, action); err != nil {
				respond.Error(writer, request, err)
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
