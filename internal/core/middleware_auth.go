package core

import (
	"crypto/subtle"
	"net/http"

	"floodroute/internal/types"
)

// AdminAuthMiddleware guards administrative endpoints with the configured
// API key, supplied in the X-Api-Key header. Comparison is constant-time.
// Public read endpoints are not mounted behind this middleware.
func (s *Server) AdminAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-Api-Key")
		if key == "" {
			Error(w, r, types.NewAppError(
				types.ErrCodeAuthKeyMissing,
				"X-Api-Key header is required",
				nil,
			))
			return
		}

		expected := s.Config.Security.AdminAPIKey.Unmask()
		if subtle.ConstantTimeCompare([]byte(key), []byte(expected)) != 1 {
			s.Logger.WarnContext(r.Context(), "admin API key rejected",
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
			)
			Error(w, r, types.NewAppError(
				types.ErrCodeAuthKeyInvalid,
				"invalid API key",
				nil,
			))
			return
		}

		next.ServeHTTP(w, r)
	})
}
