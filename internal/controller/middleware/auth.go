// Package middleware contains HTTP middleware for the controller.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"layerplane/internal/auth"
	"layerplane/pkg/api"
)

type clientKey struct{}

// NewContextWithClient stores the authenticated user name in ctx.
func NewContextWithClient(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, clientKey{}, user)
}

// ClientFromContext returns the authenticated user name, if any.
func ClientFromContext(ctx context.Context) (string, bool) {
	user, ok := ctx.Value(clientKey{}).(string)
	return user, ok && user != ""
}

// BasicAuth rejects requests without matching basic auth credentials.
// A nil creds disables the check.
func BasicAuth(creds *auth.Credentials) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if creds == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, password, ok := r.BasicAuth()
			if !ok || !creds.Match(user, password) {
				w.Header().Set("WWW-Authenticate", `Basic realm="layerplane"`)
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r.WithContext(NewContextWithClient(r.Context(), user)))
		})
	}
}

func writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(api.ErrorResponse{
		Error: message,
		Code:  strconv.Itoa(code),
	})
}
