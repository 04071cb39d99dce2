package http

import (
	"net/http"

	"service-planner/internal/http/handlers"
)

type Router struct {
	mux *http.ServeMux
}

func NewRouter(
	authMiddleware *handlers.AuthMiddleware,
	authHandler *handlers.AuthHandler,
	eventHandler *handlers.EventHandler,
	aiHandler *handlers.AIHandler,
) *Router {
	mux := http.NewServeMux()

	authHandler.Register(mux, authMiddleware)
	eventHandler.Register(mux, authMiddleware)
	aiHandler.Register(mux, authMiddleware)

	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	return &Router{mux: mux}
}

func (r *Router) Handler() http.Handler {
	return r.mux
}
