package api

import (
	"net/http"
	"strconv"
)

// handleWIPStatus returns the per-status limit summary for a project.
func (s *Server) handleWIPStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.projects.Exists(id) {
		HandleError(w, projectNotFound(id))
		return
	}
	JSONResponse(w, s.flow.WIPStatus(id))
}

// handleWIPCheck checks one status against its limit. The check is
// advisory; clients call it before a create or move when they want
// enforcement.
func (s *Server) handleWIPCheck(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		JSONError(w, "status query parameter is required", http.StatusBadRequest)
		return
	}
	JSONResponse(w, s.flow.CheckWIPLimit(r.PathValue("id"), status))
}

// handleCFDSnapshot takes and stores a snapshot for today.
func (s *Server) handleCFDSnapshot(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	snap, err := s.flow.TakeCFDSnapshot(id)
	if err != nil {
		HandleError(w, err)
		return
	}
	if err := s.flow.StoreCFDSnapshot(id, snap); err != nil {
		HandleError(w, err)
		return
	}
	JSONResponseStatus(w, snap, http.StatusCreated)
}

// handleCFDData returns the stored snapshot history, limited by ?days
// (default 30).
func (s *Server) handleCFDData(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.projects.Exists(id) {
		HandleError(w, projectNotFound(id))
		return
	}

	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			days = n
		}
	}
	JSONResponse(w, s.flow.CFDData(id, days))
}
