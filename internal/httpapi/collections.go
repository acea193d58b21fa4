package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"sandwich_platform/internal/dedupe"
	"sandwich_platform/internal/store"
)

func (r *Router) collections(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodGet:
		list, err := r.store.ListCollections(req.Context())
		if err != nil {
			log.Printf("list collections: %v", err)
			r.respondError(w, http.StatusInternalServerError, "failed to list collections")
			return
		}
		if list == nil {
			list = []store.Collection{}
		}
		respondJSON(w, list)
	case http.MethodPost:
		var body store.Collection
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			r.respondError(w, http.StatusBadRequest, "invalid collection payload")
			return
		}
		if strings.TrimSpace(body.CollectionDate) == "" {
			r.respondError(w, http.StatusBadRequest, "collectionDate is required")
			return
		}
		created, err := r.store.CreateCollection(req.Context(), body)
		if err != nil {
			log.Printf("create collection: %v", err)
			r.respondError(w, http.StatusInternalServerError, "failed to create collection")
			return
		}
		r.met.IncCreated()
		w.WriteHeader(http.StatusCreated)
		respondJSON(w, created)
	default:
		r.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// collectionOps dispatches /api/collections/{id} plus the named maintenance
// operations that live under the same prefix.
func (r *Router) collectionOps(w http.ResponseWriter, req *http.Request) {
	tail := strings.TrimPrefix(req.URL.Path, "/api/collections/")
	switch tail {
	case "analyze-duplicates":
		r.analyzeDuplicates(w, req)
	case "clean-duplicates":
		r.cleanDuplicates(w, req)
	case "bulk":
		r.bulkDelete(w, req)
	case "batch-delete":
		r.batchDelete(w, req)
	case "batch-edit":
		r.batchEdit(w, req)
	default:
		r.collectionDetail(w, req)
	}
}

func (r *Router) collectionDetail(w http.ResponseWriter, req *http.Request) {
	id, ok := parseID(req.URL.Path, "/api/collections/")
	if !ok {
		r.respondError(w, http.StatusBadRequest, "invalid collection id")
		return
	}
	switch req.Method {
	case http.MethodGet:
		rec, err := r.store.GetCollection(req.Context(), id)
		if err != nil {
			log.Printf("get collection %d: %v", id, err)
			r.respondError(w, http.StatusInternalServerError, "failed to load collection")
			return
		}
		if rec == nil {
			r.respondError(w, http.StatusNotFound, "collection not found")
			return
		}
		respondJSON(w, rec)
	case http.MethodPatch:
		var updates map[string]interface{}
		if err := json.NewDecoder(req.Body).Decode(&updates); err != nil {
			r.respondError(w, http.StatusBadRequest, "invalid update payload")
			return
		}
		if len(store.FilterCollectionUpdates(updates)) == 0 {
			r.respondError(w, http.StatusBadRequest, "no editable fields in updates")
			return
		}
		rec, err := r.store.UpdateCollection(req.Context(), id, updates)
		if err != nil {
			log.Printf("update collection %d: %v", id, err)
			r.respondError(w, http.StatusInternalServerError, "failed to update collection")
			return
		}
		if rec == nil {
			r.respondError(w, http.StatusNotFound, "collection not found")
			return
		}
		respondJSON(w, rec)
	case http.MethodDelete:
		deleted, err := r.store.DeleteCollection(req.Context(), id)
		if err != nil {
			log.Printf("delete collection %d: %v", id, err)
			r.respondError(w, http.StatusInternalServerError, "failed to delete collection")
			return
		}
		if !deleted {
			r.respondError(w, http.StatusNotFound, "collection not found")
			return
		}
		respondJSON(w, map[string]interface{}{"message": "collection deleted", "id": id})
	default:
		r.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (r *Router) stats(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	records, err := r.store.ListCollections(req.Context())
	if err != nil {
		log.Printf("stats query: %v", err)
		r.respondError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}
	individual := 0
	group := 0
	for _, rec := range records {
		individual += rec.IndividualSandwiches
		group += dedupe.GroupTotal(rec.GroupCollections)
	}
	respondJSON(w, map[string]interface{}{
		"totalCollections":     len(records),
		"individualSandwiches": individual,
		"groupSandwiches":      group,
		"totalSandwiches":      individual + group,
	})
}
