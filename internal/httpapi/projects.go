package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"sandwich_platform/internal/store"
)

func (r *Router) projects(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodGet:
		list, err := r.store.ListProjects(req.Context(), req.URL.Query().Get("status"))
		if err != nil {
			log.Printf("list projects: %v", err)
			r.respondError(w, http.StatusInternalServerError, "failed to list projects")
			return
		}
		if list == nil {
			list = []store.Project{}
		}
		respondJSON(w, list)
	case http.MethodPost:
		var body store.Project
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			r.respondError(w, http.StatusBadRequest, "invalid project payload")
			return
		}
		if strings.TrimSpace(body.Title) == "" {
			r.respondError(w, http.StatusBadRequest, "title is required")
			return
		}
		created, err := r.store.CreateProject(req.Context(), body)
		if err != nil {
			log.Printf("create project: %v", err)
			r.respondError(w, http.StatusInternalServerError, "failed to create project")
			return
		}
		w.WriteHeader(http.StatusCreated)
		respondJSON(w, created)
	default:
		r.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// projectDetail handles /api/projects/{id} and /api/projects/{id}/tasks.
func (r *Router) projectDetail(w http.ResponseWriter, req *http.Request) {
	tail := strings.TrimPrefix(req.URL.Path, "/api/projects/")
	parts := strings.Split(strings.TrimSuffix(tail, "/"), "/")
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || id <= 0 {
		r.respondError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	if len(parts) == 2 && parts[1] == "tasks" {
		r.projectTasks(w, req, id)
		return
	}
	if len(parts) != 1 {
		r.respondError(w, http.StatusNotFound, "not found")
		return
	}

	switch req.Method {
	case http.MethodGet:
		p, err := r.store.GetProject(req.Context(), id)
		if err != nil {
			log.Printf("get project %d: %v", id, err)
			r.respondError(w, http.StatusInternalServerError, "failed to load project")
			return
		}
		if p == nil {
			r.respondError(w, http.StatusNotFound, "project not found")
			return
		}
		respondJSON(w, p)
	case http.MethodPatch:
		var body struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil || strings.TrimSpace(body.Status) == "" {
			r.respondError(w, http.StatusBadRequest, "status is required")
			return
		}
		ok, err := r.store.UpdateProjectStatus(req.Context(), id, body.Status)
		if err != nil {
			log.Printf("update project %d: %v", id, err)
			r.respondError(w, http.StatusInternalServerError, "failed to update project")
			return
		}
		if !ok {
			r.respondError(w, http.StatusNotFound, "project not found")
			return
		}
		respondJSON(w, map[string]interface{}{"message": "project updated", "id": id, "status": body.Status})
	default:
		r.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (r *Router) projectTasks(w http.ResponseWriter, req *http.Request, projectID int64) {
	switch req.Method {
	case http.MethodGet:
		list, err := r.store.ListTasks(req.Context(), projectID)
		if err != nil {
			log.Printf("list tasks for project %d: %v", projectID, err)
			r.respondError(w, http.StatusInternalServerError, "failed to list tasks")
			return
		}
		if list == nil {
			list = []store.Task{}
		}
		respondJSON(w, list)
	case http.MethodPost:
		p, err := r.store.GetProject(req.Context(), projectID)
		if err != nil {
			log.Printf("get project %d: %v", projectID, err)
			r.respondError(w, http.StatusInternalServerError, "failed to load project")
			return
		}
		if p == nil {
			r.respondError(w, http.StatusNotFound, "project not found")
			return
		}
		var body store.Task
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			r.respondError(w, http.StatusBadRequest, "invalid task payload")
			return
		}
		if strings.TrimSpace(body.Title) == "" {
			r.respondError(w, http.StatusBadRequest, "title is required")
			return
		}
		body.ProjectID = projectID
		created, err := r.store.CreateTask(req.Context(), body)
		if err != nil {
			log.Printf("create task: %v", err)
			r.respondError(w, http.StatusInternalServerError, "failed to create task")
			return
		}
		w.WriteHeader(http.StatusCreated)
		respondJSON(w, created)
	default:
		r.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (r *Router) messages(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodGet:
		limit := 100
		if v := req.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}
		list, err := r.store.ListMessages(req.Context(), req.URL.Query().Get("channel"), limit)
		if err != nil {
			log.Printf("list messages: %v", err)
			r.respondError(w, http.StatusInternalServerError, "failed to list messages")
			return
		}
		if list == nil {
			list = []store.Message{}
		}
		respondJSON(w, list)
	case http.MethodPost:
		var body store.Message
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			r.respondError(w, http.StatusBadRequest, "invalid message payload")
			return
		}
		if strings.TrimSpace(body.Content) == "" {
			r.respondError(w, http.StatusBadRequest, "content is required")
			return
		}
		created, err := r.store.CreateMessage(req.Context(), body)
		if err != nil {
			log.Printf("create message: %v", err)
			r.respondError(w, http.StatusInternalServerError, "failed to create message")
			return
		}
		r.bus.Publish(*created)
		w.WriteHeader(http.StatusCreated)
		respondJSON(w, created)
	default:
		r.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
