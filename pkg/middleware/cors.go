package middleware

import (
	"net/http"
	"slices"

	"github.com/go-chi/cors"
)

// CORS allows browser calls from the listed origins. A "*" entry allows any
// origin but then drops credentials, so cookies are never sent to an
// arbitrary site.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowAny := slices.Contains(allowedOrigins, "*")

	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization", OperatorHeader},
		ExposedHeaders:   []string{"X-Total-Count"},
		AllowCredentials: !allowAny,
		MaxAge:           300,
	})
}
