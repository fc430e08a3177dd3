package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/prompt-enhancer/internal/enhance"
	"github.com/jonathan/prompt-enhancer/internal/types"
)

// PromptRequest is the body of /classify and /decompose
type PromptRequest struct {
	Prompt string `json:"prompt"`
}

// DecomposeResponse is the response for /decompose
type DecomposeResponse struct {
	ShouldDecompose bool             `json:"should_decompose"`
	Todos           []types.TodoItem `json:"todos"`
}

// HealthResponse is the response for /health
type HealthResponse struct {
	Status        string `json:"status"`
	TablesVersion string `json:"tables_version"`
}

// handleEnhance runs the full pipeline
func (s *Server) handleEnhance(w http.ResponseWriter, r *http.Request) {
	var req types.EnhanceRequest
	if err := s.decode(w, r, &req); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	result, err := s.service.Enhance(r.Context(), req)
	if err != nil {
		s.requestLogger(r).Error("enhance failed", zap.Error(err))
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handleEnhanceStream runs the pipeline and streams each step as an SSE event
func (s *Server) handleEnhanceStream(w http.ResponseWriter, r *http.Request) {
	var req types.EnhanceRequest
	if err := s.decode(w, r, &req); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	ctx := enhance.WithProgress(r.Context(), sse.WriteProgress)
	result, err := s.service.Enhance(ctx, req)
	if err != nil {
		s.requestLogger(r).Error("enhance failed", zap.Error(err))
		sse.WriteError(err.Error())
		return
	}
	sse.WriteResult(result)
}

// handleClassify returns the complexity analysis of a prompt
func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req PromptRequest
	if err := s.decode(w, r, &req); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, s.service.Classify(r.Context(), req.Prompt))
}

// handleDecompose splits a multi-part prompt into todo items
func (s *Server) handleDecompose(w http.ResponseWriter, r *http.Request) {
	var req PromptRequest
	if err := s.decode(w, r, &req); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	should, todos := s.service.Decompose(req.Prompt)
	if todos == nil {
		todos = []types.TodoItem{}
	}
	s.jsonResponse(w, http.StatusOK, DecomposeResponse{ShouldDecompose: should, Todos: todos})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, HealthResponse{Status: "ok", TablesVersion: s.service.Tables().Version})
}

// decode reads a JSON body of at most maxBodyBytes into v
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		return &ErrValidation{Field: "Content-Type", Message: "must be application/json"}
	}
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return &ErrValidation{Field: "body", Message: err.Error()}
	}
	return nil
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
