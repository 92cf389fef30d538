package api

import (
	"net/http"

	"github.com/erazemk/inventario/internal/commands"
)

// NewRouter creates the bridge router with all endpoints registered.
func NewRouter(cmds *commands.Commands, secret string) http.Handler {
	mux := http.NewServeMux()

	items := &ItemsHandler{Commands: cmds}
	authMW := AuthMiddleware(secret)

	mux.Handle("GET /api/items", authMW(http.HandlerFunc(items.List)))
	mux.Handle("POST /api/items", authMW(http.HandlerFunc(items.Create)))
	mux.Handle("PUT /api/items/{id}", authMW(http.HandlerFunc(items.Update)))
	mux.Handle("DELETE /api/items/{id}", authMW(http.HandlerFunc(items.Delete)))
	mux.Handle("GET /api/items/{id}/image", authMW(http.HandlerFunc(items.GetImage)))
	mux.Handle("POST /api/export", authMW(http.HandlerFunc(items.Export)))

	return LoggingMiddleware(mux)
}
