package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server with timeouts sized for short request/response
// handlers that call one or two collaborators.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
