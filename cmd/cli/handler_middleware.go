package main

import (
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
)

// corsMiddleware allows the configured dashboard origins
func (rm *RouteManager) corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := rm.cfg.Server.AllowedOrigins
	log.Printf("✓ Allowed origins: %s", strings.Join(allowedOrigins, ", "))

	return handlers.CORS(
		handlers.AllowedOrigins(allowedOrigins),
		handlers.AllowedMethods([]string{"GET", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
		handlers.MaxAge(3600),
	)(next)
}
