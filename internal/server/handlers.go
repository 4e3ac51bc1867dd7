package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/heimdall-ai/heimdall/internal/apperr"
	"github.com/heimdall-ai/heimdall/models"
)

// maxBodyBytes bounds request bodies; emails and rule sets are small.
const maxBodyBytes = 1 << 20

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return apperr.Wrap(apperr.KindBadRequest, "invalid request body", err)
	}
	return nil
}

// handleAnalyzeEmail
func (s *Server) handleAnalyzeEmail(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeEmailRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, 0)
		return
	}
	if err := models.ValidateStruct(req); err != nil {
		writeError(w, apperr.Wrap(apperr.KindValidation, "invalid request", err), 0)
		return
	}

	out, err := s.analyzer.Analyze(r.Context(), models.ClassificationRequest{
		Subject:      *req.Subject,
		EmailContent: *req.EmailContent,
	})
	if err != nil {
		writeError(w, err, 0)
		return
	}
	writeAPIJSON(w, out.Response())
}

// handleListRules
func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	db, err := s.rules.List(r.Context())
	if err != nil {
		writeError(w, err, 0)
		return
	}
	writeAPIJSON(w, db)
}

// handleAddRule
func (s *Server) handleAddRule(w http.ResponseWriter, r *http.Request) {
	var c models.Category
	if err := decodeBody(r, &c); err != nil {
		writeError(w, err, 0)
		return
	}
	if err := s.rules.Add(r.Context(), c); err != nil {
		writeError(w, err, 0)
		return
	}
	writeAPIJSON(w, MessageResponse{Message: "Rule added successfully"})
}

// handleUpdateRule replaces the sub-types of the category named in the path.
func (s *Server) handleUpdateRule(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("category")

	var c models.Category
	if err := decodeBody(r, &c); err != nil {
		writeError(w, err, 0)
		return
	}
	if err := s.rules.Update(r.Context(), name, c); err != nil {
		writeError(w, err, 0)
		return
	}
	writeAPIJSON(w, MessageResponse{Message: fmt.Sprintf("Rule for '%s' updated successfully", name)})
}

// handleDeleteRule
func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("category")
	if err := s.rules.Delete(r.Context(), name); err != nil {
		writeError(w, err, 0)
		return
	}
	writeAPIJSON(w, MessageResponse{Message: fmt.Sprintf("Rule for '%s' deleted successfully", name)})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeAPIJSON(w, map[string]string{"status": "ok"})
}
