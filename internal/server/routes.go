package server

import "net/http"

// registerRoutes sets up all endpoints.
// GET and POST on a persona share one handler: the method carries no meaning.
func (s *Server) registerRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /agents/{persona}", s.handlePersona)
	mux.HandleFunc("POST /agents/{persona}", s.handlePersona)

	mux.HandleFunc("GET /api/personas", s.handleListPersonas)
	mux.HandleFunc("GET /api/info", s.handleInfo)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	return s.requestIDMiddleware(s.recoverMiddleware(s.corsMiddleware(s.secretMiddleware(mux))))
}
