package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"sandwich_platform/internal/store"
)

func (r *Router) hosts(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodGet:
		list, err := r.store.ListHosts(req.Context())
		if err != nil {
			log.Printf("list hosts: %v", err)
			r.respondError(w, http.StatusInternalServerError, "failed to list hosts")
			return
		}
		if list == nil {
			list = []store.Host{}
		}
		respondJSON(w, list)
	case http.MethodPost:
		var body store.Host
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			r.respondError(w, http.StatusBadRequest, "invalid host payload")
			return
		}
		if strings.TrimSpace(body.Name) == "" {
			r.respondError(w, http.StatusBadRequest, "name is required")
			return
		}
		created, err := r.store.CreateHost(req.Context(), body)
		if err != nil {
			log.Printf("create host: %v", err)
			r.respondError(w, http.StatusInternalServerError, "failed to create host")
			return
		}
		w.WriteHeader(http.StatusCreated)
		respondJSON(w, created)
	default:
		r.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (r *Router) hostDetail(w http.ResponseWriter, req *http.Request) {
	id, ok := parseID(req.URL.Path, "/api/hosts/")
	if !ok {
		r.respondError(w, http.StatusBadRequest, "invalid host id")
		return
	}
	switch req.Method {
	case http.MethodGet:
		h, err := r.store.GetHost(req.Context(), id)
		if err != nil {
			log.Printf("get host %d: %v", id, err)
			r.respondError(w, http.StatusInternalServerError, "failed to load host")
			return
		}
		if h == nil {
			r.respondError(w, http.StatusNotFound, "host not found")
			return
		}
		respondJSON(w, h)
	case http.MethodPatch:
		var body struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil || strings.TrimSpace(body.Status) == "" {
			r.respondError(w, http.StatusBadRequest, "status is required")
			return
		}
		ok, err := r.store.UpdateHostStatus(req.Context(), id, body.Status)
		if err != nil {
			log.Printf("update host %d: %v", id, err)
			r.respondError(w, http.StatusInternalServerError, "failed to update host")
			return
		}
		if !ok {
			r.respondError(w, http.StatusNotFound, "host not found")
			return
		}
		respondJSON(w, map[string]interface{}{"message": "host updated", "id": id, "status": body.Status})
	case http.MethodDelete:
		ok, err := r.store.DeleteHost(req.Context(), id)
		if err != nil {
			log.Printf("delete host %d: %v", id, err)
			r.respondError(w, http.StatusInternalServerError, "failed to delete host")
			return
		}
		if !ok {
			r.respondError(w, http.StatusNotFound, "host not found")
			return
		}
		respondJSON(w, map[string]interface{}{"message": "host deleted", "id": id})
	default:
		r.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (r *Router) recipients(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodGet:
		list, err := r.store.ListRecipients(req.Context())
		if err != nil {
			log.Printf("list recipients: %v", err)
			r.respondError(w, http.StatusInternalServerError, "failed to list recipients")
			return
		}
		if list == nil {
			list = []store.Recipient{}
		}
		respondJSON(w, list)
	case http.MethodPost:
		var body store.Recipient
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			r.respondError(w, http.StatusBadRequest, "invalid recipient payload")
			return
		}
		if strings.TrimSpace(body.Name) == "" {
			r.respondError(w, http.StatusBadRequest, "name is required")
			return
		}
		created, err := r.store.CreateRecipient(req.Context(), body)
		if err != nil {
			log.Printf("create recipient: %v", err)
			r.respondError(w, http.StatusInternalServerError, "failed to create recipient")
			return
		}
		w.WriteHeader(http.StatusCreated)
		respondJSON(w, created)
	default:
		r.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (r *Router) recipientDetail(w http.ResponseWriter, req *http.Request) {
	id, ok := parseID(req.URL.Path, "/api/recipients/")
	if !ok {
		r.respondError(w, http.StatusBadRequest, "invalid recipient id")
		return
	}
	if req.Method != http.MethodDelete {
		r.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ok, err := r.store.DeleteRecipient(req.Context(), id)
	if err != nil {
		log.Printf("delete recipient %d: %v", id, err)
		r.respondError(w, http.StatusInternalServerError, "failed to delete recipient")
		return
	}
	if !ok {
		r.respondError(w, http.StatusNotFound, "recipient not found")
		return
	}
	respondJSON(w, map[string]interface{}{"message": "recipient deleted", "id": id})
}

func (r *Router) contacts(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodGet:
		list, err := r.store.ListContacts(req.Context())
		if err != nil {
			log.Printf("list contacts: %v", err)
			r.respondError(w, http.StatusInternalServerError, "failed to list contacts")
			return
		}
		if list == nil {
			list = []store.Contact{}
		}
		respondJSON(w, list)
	case http.MethodPost:
		var body store.Contact
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			r.respondError(w, http.StatusBadRequest, "invalid contact payload")
			return
		}
		if strings.TrimSpace(body.Name) == "" {
			r.respondError(w, http.StatusBadRequest, "name is required")
			return
		}
		created, err := r.store.CreateContact(req.Context(), body)
		if err != nil {
			log.Printf("create contact: %v", err)
			r.respondError(w, http.StatusInternalServerError, "failed to create contact")
			return
		}
		w.WriteHeader(http.StatusCreated)
		respondJSON(w, created)
	default:
		r.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (r *Router) contactDetail(w http.ResponseWriter, req *http.Request) {
	id, ok := parseID(req.URL.Path, "/api/contacts/")
	if !ok {
		r.respondError(w, http.StatusBadRequest, "invalid contact id")
		return
	}
	if req.Method != http.MethodDelete {
		r.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ok, err := r.store.DeleteContact(req.Context(), id)
	if err != nil {
		log.Printf("delete contact %d: %v", id, err)
		r.respondError(w, http.StatusInternalServerError, "failed to delete contact")
		return
	}
	if !ok {
		r.respondError(w, http.StatusNotFound, "contact not found")
		return
	}
	respondJSON(w, map[string]interface{}{"message": "contact deleted", "id": id})
}
