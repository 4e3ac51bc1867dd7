package server

import "net/http"

// registerRoutes sets up all API endpoints
func (s *Server) registerRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /analyze-email", s.handleAnalyzeEmail)

	// Rules administration
	mux.HandleFunc("GET /rules", s.handleListRules)
	mux.HandleFunc("POST /rules", s.handleAddRule)
	mux.HandleFunc("PUT /rules/{category}", s.handleUpdateRule)
	mux.HandleFunc("DELETE /rules/{category}", s.handleDeleteRule)

	mux.HandleFunc("GET /healthz", s.handleHealth)

	return requestIDMiddleware(loggingMiddleware(recoverMiddleware(s.corsMiddleware(mux))))
}
