package api

import (
	"encoding/json"
	"net/http"

	firaerrors "github.com/olehkavur/fira/internal/errors"
	"github.com/olehkavur/fira/internal/task"
)

func projectNotFound(id string) error {
	return firaerrors.ErrProjectNotFound(id)
}

// handleListTasks returns every task in the project.
func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.repo.List(r.PathValue("id"))
	if err != nil {
		HandleError(w, err)
		return
	}
	if tasks == nil {
		tasks = []*task.Task{}
	}
	JSONResponse(w, tasks)
}

// handleCreateTask creates a new task file.
func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var data task.Data
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		JSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	created, err := s.repo.Create(r.PathValue("id"), &data)
	if err != nil {
		HandleError(w, err)
		return
	}
	JSONResponseStatus(w, created, http.StatusCreated)
}

// handleGetTask returns one task with its derived metrics.
func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	t, err := s.repo.Get(r.PathValue("id"), r.PathValue("taskId"))
	if err != nil {
		HandleError(w, err)
		return
	}
	JSONResponse(w, t)
}

// handleUpdateTask rewrites a task, moving the file on status or
// developer change. The task ID in the path wins over any ID in the body.
func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var data task.Data
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		JSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	data.ID = r.PathValue("taskId")

	updated, err := s.repo.Update(r.PathValue("id"), &data)
	if err != nil {
		HandleError(w, err)
		return
	}
	JSONResponse(w, updated)
}

// handleDeleteTask removes a task file.
func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Delete(r.PathValue("id"), r.PathValue("taskId")); err != nil {
		HandleError(w, err)
		return
	}
	NoContent(w)
}

// handleBlockTask marks a task blocked with a reason.
func (s *Server) handleBlockTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason string `json:"reason"`
	}
	// An empty body is fine; the repository defaults the reason.
	_ = json.NewDecoder(r.Body).Decode(&req)

	t, err := s.repo.Block(r.PathValue("id"), r.PathValue("taskId"), req.Reason)
	if err != nil {
		HandleError(w, err)
		return
	}
	JSONResponse(w, t)
}

// handleUnblockTask clears the blocked flag, keeping block history.
func (s *Server) handleUnblockTask(w http.ResponseWriter, r *http.Request) {
	t, err := s.repo.Unblock(r.PathValue("id"), r.PathValue("taskId"))
	if err != nil {
		HandleError(w, err)
		return
	}
	JSONResponse(w, t)
}
