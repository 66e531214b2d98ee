package api

import (
	"encoding/json"
	"net/http"
)

// handleListProjects returns summaries for every project.
func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	infos, err := s.projects.List()
	if err != nil {
		HandleError(w, err)
		return
	}
	JSONResponse(w, infos)
}

// handleCreateProject scaffolds a new project directory.
func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID          string `json:"id"`
		Description string `json:"description,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.ID == "" {
		JSONError(w, "id is required", http.StatusBadRequest)
		return
	}

	if err := s.projects.Create(req.ID, req.Description); err != nil {
		HandleError(w, err)
		return
	}
	info, err := s.projects.Info(req.ID)
	if err != nil {
		HandleError(w, err)
		return
	}
	JSONResponseStatus(w, info, http.StatusCreated)
}

// handleGetProject returns one project summary.
func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	info, err := s.projects.Info(r.PathValue("id"))
	if err != nil {
		HandleError(w, err)
		return
	}
	JSONResponse(w, info)
}

// handleUpdateProject rewrites the project description.
func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	id := r.PathValue("id")
	if err := s.projects.UpdateInfo(id, req.Description); err != nil {
		HandleError(w, err)
		return
	}
	info, err := s.projects.Info(id)
	if err != nil {
		HandleError(w, err)
		return
	}
	JSONResponse(w, info)
}

// handleDeleteProject removes the project tree.
func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.projects.Delete(r.PathValue("id")); err != nil {
		HandleError(w, err)
		return
	}
	NoContent(w)
}

// handleProjectStats returns the board-level bucket counts.
func (s *Server) handleProjectStats(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.projects.Exists(id) {
		HandleError(w, projectNotFound(id))
		return
	}
	JSONResponse(w, s.projects.Stats(id))
}

// handleProjectDevelopers returns the developer subfolder set.
func (s *Server) handleProjectDevelopers(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.projects.Exists(id) {
		HandleError(w, projectNotFound(id))
		return
	}
	JSONResponse(w, map[string]any{"developers": s.projects.Developers(id)})
}
