package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abhijit1892/ragdemo/core"
	"github.com/abhijit1892/ragdemo/server/store"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ready := s.readiness == nil || s.readiness.Ready()
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", IndexReady: ready})
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	models := s.models
	if models == nil {
		models = []ModelInfo{}
	}
	writeJSON(w, http.StatusOK, models)
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	rec := store.NewRunRecord(req.Question)
	start := time.Now()
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	state, err := s.runner.Run(ctx, req.Question)
	rec.ElapsedMs = time.Since(start).Milliseconds()

	if err != nil {
		rec.Status = store.StatusError
		rec.Error = err.Error()
		s.record(rec)

		node, _ := core.FailedNode(err)
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.log.Warn("ask failed", "id", rec.ID, "node", node, "status", status, "error", err)
		}
		writeJSON(w, status, ErrorResponse{Error: err.Error(), Node: node, ID: rec.ID})
		return
	}

	rec.Answer = state.Answer
	rec.Passages = core.ClonePassages(state.RetrievedPassages)
	s.record(rec)

	passages := state.RetrievedPassages
	if passages == nil {
		passages = []core.Passage{}
	}
	writeJSON(w, http.StatusOK, AskResponse{
		ID:                rec.ID,
		Question:          state.Question,
		RetrievedPassages: passages,
		Answer:            state.Answer,
		ElapsedMs:         rec.ElapsedMs,
	})
}

// record appends to history on a context detached from the request.
func (s *Server) record(rec store.RunRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.history.Add(ctx, rec); err != nil {
		s.log.Error("history add failed", "id", rec.ID, "error", err)
	}
}

func (s *Server) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	runs, err := s.history.List(r.Context(), limit)
	if err != nil {
		s.log.Error("history list failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "history unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, HistoryListResponse{Runs: runs})
}

func (s *Server) handleHistorySummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.history.Summary(r.Context())
	if err != nil {
		s.log.Error("history summary failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "history unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleHistoryGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := s.history.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "run not found", ID: id})
		return
	}
	if err != nil {
		s.log.Error("history get failed", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "history unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleHistoryDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.history.Delete(r.Context(), id); err != nil {
		s.log.Error("history delete failed", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "history unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// statusFor maps pipeline failures onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, core.ErrInvalidQuery):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrIndexNotReady),
		errors.Is(err, core.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrAuthentication),
		errors.Is(err, core.ErrEmptyGeneration),
		errors.Is(err, core.ErrMalformedResponse),
		errors.Is(err, core.ErrInvalidRequest):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
