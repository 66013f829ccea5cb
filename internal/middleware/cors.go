package middleware

import (
	"net/http"

	gorillahandlers "github.com/gorilla/handlers"
)

// CORS allows browser calls from the configured front-end origins only.
// It wraps the whole router so preflight requests never reach route matching.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return gorillahandlers.CORS(
		gorillahandlers.AllowedOrigins(allowedOrigins),
		gorillahandlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions}),
		gorillahandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		gorillahandlers.AllowCredentials(),
	)
}
