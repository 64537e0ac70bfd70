package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/MikeSquared-Agency/aktivasi/internal/activation"
	"github.com/MikeSquared-Agency/aktivasi/internal/auth"
)

type ctxKey struct{}

func userFrom(ctx context.Context) activation.User {
	u, _ := ctx.Value(ctxKey{}).(activation.User)
	return u
}

// requireUser accepts a bearer JWT whose subject is an active user in the
// users table. Every failure is a plain 401.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		claims, err := auth.ParseToken(s.opts.JWTSecret, s.opts.JWTIssuer, token)
		if err != nil {
			s.logger.Debug("rejected token", "error", err)
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		rows, err := s.store.ReadAll(r.Context(), s.opts.UserTable)
		if err != nil {
			s.logger.Error("failed to read users", "error", err)
			writeError(w, http.StatusServiceUnavailable, "store unavailable")
			return
		}
		user, ok := activation.FindUser(rows, claims.Subject)
		if !ok || !user.IsActive() {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, user)))
	})
}
