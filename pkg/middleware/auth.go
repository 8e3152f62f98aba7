package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"ppob-backend/pkg/token"
	"ppob-backend/pkg/utils"
)

// AccessVerifier is the part of the token issuer the middleware needs.
type AccessVerifier interface {
	VerifyAccess(raw string) (*token.AccessClaims, error)
}

// Authenticate validasi Bearer JWT lalu simpan identity di context
func Authenticate(tokens AccessVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.ResponseUnauthorized(w, "Missing authorization token")
				return
			}

			scheme, raw, found := strings.Cut(authHeader, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
				utils.ResponseUnauthorized(w, "Invalid token format. Use: Bearer <token>")
				return
			}

			claims, err := tokens.VerifyAccess(strings.TrimSpace(raw))
			if err != nil {
				logger.Debug("Rejected access token",
					zap.String("path", r.URL.Path),
					zap.Error(err))
				utils.ResponseUnauthorized(w, "Invalid or expired token")
				return
			}

			ctx := utils.SetIdentity(r.Context(), utils.Identity{
				UserID: claims.UserID,
				Role:   claims.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AuthorizeAdmin - middleware cek role admin, harus dipasang setelah Authenticate
func AuthorizeAdmin(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := utils.GetIdentity(r.Context())
			if !ok {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			if !identity.IsAdmin() {
				logger.Warn("Admin check: non-admin access attempt",
					zap.String("user_id", identity.UserID.String()),
					zap.String("path", r.URL.Path))
				utils.ResponseForbidden(w, "Forbidden: Admins only")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
