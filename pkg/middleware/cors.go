package middleware

import (
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/cors"
)

// CORS allows browser clients from the given origins. Credentials (the
// refresh cookie) are only allowed for an explicit origin list; "*" turns
// them off.
func CORS(origins ...string) func(http.Handler) http.Handler {
	wildcard := len(origins) == 0 || slices.Contains(origins, "*")
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Authorization", "X-Request-Id"},
		ExposedHeaders:   []string{"Content-Length", "X-Request-Id"},
		AllowCredentials: !wildcard,
		MaxAge:           int((12 * time.Hour).Seconds()),
	})
}
