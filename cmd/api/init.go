package main

import (
	"net/http"
	"time"

	"github.com/joaograca03/CalcApp/internal/app"
	"github.com/joaograca03/CalcApp/internal/server"
)

// newHTTPServer builds the calculator HTTP server from the bootstrapped app.
// Add new route groups to server.NewRouter as the project grows.
func newHTTPServer(a *app.App) *http.Server {
	return &http.Server{
		Addr:              a.Config.Addr,
		Handler:           server.NewRouter(a.Session),
		ReadHeaderTimeout: 5 * time.Second,
	}
}
