package httpserver

import (
	"net/http"

	"github.com/fdg312/meal-lens/internal/config"
	"github.com/rs/cors"
)

// CORSMiddleware returns an http.Handler that adds CORS headers for the
// configured origins. Preflights from other origins get no CORS headers.
func CORSMiddleware(cfg *config.Config, next http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: cfg.CORSAllowCredentials,
		MaxAge:           600,
	})
	return c.Handler(next)
}
