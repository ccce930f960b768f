package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spacesedan/ballotboard/internal/clients"
	"github.com/spacesedan/ballotboard/internal/dashboard"
	"github.com/spacesedan/ballotboard/internal/models"
)

type selectionRequest struct {
	Source string `json:"source"`
}

type sourceResponse struct {
	Key   string `json:"key"`
	Title string `json:"title"`
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	sources := s.opts.Routes.Sources()
	resp := make([]sourceResponse, 0, len(sources))
	for _, src := range sources {
		resp = append(resp, sourceResponse{Key: src.Key, Title: src.Title})
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleSummary returns the session's dashboard view. With ?source= it first
// moves the selection there and waits for the fetch.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)

	source := r.URL.Query().Get("source")
	if source == "" {
		source = sess.Dashboard.Selection()
	}
	if source == "" {
		source = s.sessions.DefaultSource()
	}

	done, err := sess.Dashboard.Ensure(source)
	if err != nil {
		writeError(w, err)
		return
	}
	s.await(r.Context(), done)

	writeJSON(w, http.StatusOK, sess.Dashboard.View())
}

func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)

	var req selectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(fmt.Sprintf("Invalid request: %v", err)))
		return
	}
	defer r.Body.Close()

	done, err := sess.Dashboard.Select(req.Source)
	if err != nil {
		writeError(w, err)
		return
	}
	s.await(r.Context(), done)

	writeJSON(w, http.StatusOK, sess.Dashboard.View())
}

func (s *Server) handleComparison(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)

	var (
		done <-chan struct{}
		err  error
	)
	if r.URL.Query().Get("refresh") != "" {
		done, err = sess.Comparison.Load()
	} else {
		done, err = sess.Comparison.Ensure()
	}
	if err != nil {
		writeError(w, err)
		return
	}
	s.await(r.Context(), done)

	writeJSON(w, http.StatusOK, sess.Comparison.View())
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)

	var req models.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(fmt.Sprintf("Invalid request: %v", err)))
		return
	}
	defer r.Body.Close()

	result, err := sess.Analyzer.Submit(r.Context(), req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	if result == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"remote":   s.opts.Healthy.Load(),
		"sessions": s.sessions.Len(),
	})
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

// writeError maps domain errors to status codes.
func writeError(w http.ResponseWriter, err error) {
	var configErr *clients.ConfigurationError
	switch {
	case errors.As(err, &configErr):
		writeJSON(w, http.StatusBadRequest, errorBody(configErr.Error()))
	case errors.Is(err, dashboard.ErrBusy):
		writeJSON(w, http.StatusConflict, errorBody(err.Error()))
	case errors.Is(err, dashboard.ErrClosed):
		writeJSON(w, http.StatusGone, errorBody(err.Error()))
	default:
		slog.Error("[Server] Request failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody(clients.GENERIC_FAILURE_MESSAGE))
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("[Server] Failed to encode response", slog.String("error", err.Error()))
	}
}
