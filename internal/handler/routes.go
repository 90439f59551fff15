package handler

import (
	"net/http"
)

// Routes wires all handlers onto a mux using method and path patterns.
func Routes(repos *RepositoryHandler, chat *ChatHandler, health *HealthHandler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", health.Check)

	mux.HandleFunc("POST /api/repositories", repos.Create)
	mux.HandleFunc("GET /api/repositories", repos.List)
	mux.HandleFunc("GET /api/repositories/{id}", repos.Get)
	mux.HandleFunc("DELETE /api/repositories/{id}", repos.Delete)
	mux.HandleFunc("GET /api/repositories/{id}/status", repos.Status)
	mux.HandleFunc("GET /api/repositories/{id}/insights", repos.Insights)

	mux.HandleFunc("POST /api/chat", chat.Send)
	mux.HandleFunc("GET /api/repositories/{id}/chat", chat.History)
	mux.HandleFunc("DELETE /api/repositories/{id}/chat", chat.Clear)

	return mux
}
