package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

var defaultCORSOrigins = []string{
	"http://localhost:3000",           // local dev
	"https://feriavirtual.cl",         // storefront
	"https://www.feriavirtual.cl",     // storefront alias
	"https://staging.feriavirtual.cl", // staging storefront
}

// CORS returns middleware that applies the API's allowed origin policy.
func CORS() func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   defaultCORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-FV-Session", "Idempotency-Key", "X-Requested-With"},
		ExposedHeaders:   []string{"X-FV-Session"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
