// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"pressroom/internal/auth"
	"pressroom/internal/render"
)

// PrincipalKey is the context key for the verified caller.
const PrincipalKey contextKey = "principal"

// RequireAuth verifies the bearer token on every request and stores the
// caller in the context. Missing or invalid tokens get a JSON 401.
func RequireAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.BearerToken(r)
			if err == nil {
				var p *auth.Principal
				if p, err = auth.ParseToken(token, secret); err == nil {
					ctx := context.WithValue(r.Context(), PrincipalKey, p)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			msg := "Authentication required."
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				msg = "Token expired."
			case errors.Is(err, auth.ErrInvalidToken):
				msg = "Invalid token."
			}
			slog.Debug("auth rejected", "path", r.URL.Path, "error", err)
			w.Header().Set("WWW-Authenticate", `Bearer realm="pressroom"`)
			render.Error(w, http.StatusUnauthorized, render.KindUnauthorized, msg)
		})
	}
}

// PrincipalFromCtx returns the verified caller, or nil on public routes.
func PrincipalFromCtx(ctx context.Context) *auth.Principal {
	p, _ := ctx.Value(PrincipalKey).(*auth.Principal)
	return p
}
