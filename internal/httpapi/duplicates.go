package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"

	"sandwich_platform/internal/dedupe"
	"sandwich_platform/internal/store"
)

func (r *Router) analyzeDuplicates(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	records, err := r.store.ListCollections(req.Context())
	if err != nil {
		log.Printf("analyze snapshot: %v", err)
		r.respondError(w, http.StatusInternalServerError, "failed to load collections")
		return
	}
	respondJSON(w, dedupe.Analyze(records))
}

func (r *Router) cleanDuplicates(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodDelete {
		r.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var body struct {
		Mode string `json:"mode"`
	}
	if req.Body != nil {
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil && err != io.EOF {
			r.respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	if body.Mode == "" {
		body.Mode = dedupe.ModeExact
	}
	if body.Mode != dedupe.ModeExact && body.Mode != dedupe.ModeSuspicious {
		r.respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown cleanup mode %q", body.Mode))
		return
	}

	ctx := req.Context()
	records, err := r.store.ListCollections(ctx)
	if err != nil {
		log.Printf("cleanup snapshot: %v", err)
		r.respondError(w, http.StatusInternalServerError, "failed to load collections")
		return
	}

	job, err := r.store.RecordOpsJob(ctx, "clean-duplicates", body)
	if err != nil {
		log.Printf("record ops job: %v", err)
		r.respondError(w, http.StatusInternalServerError, "failed to record cleanup job")
		return
	}

	result, err := dedupe.Cleanup(ctx, r.store, records, body.Mode)
	if err != nil {
		r.store.CompleteOpsJob(ctx, job.ID, 0, err.Error())
		r.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	for _, msg := range result.Errors {
		r.store.AppendOpsLog(ctx, job.ID, "error", msg)
	}
	r.store.CompleteOpsJob(ctx, job.ID, result.DeletedCount, "")
	r.met.AddDeleted(result.DeletedCount)

	payload := map[string]interface{}{
		"message":      fmt.Sprintf("Removed %d duplicate collections", result.DeletedCount),
		"deletedCount": result.DeletedCount,
		"totalFound":   result.TotalFound,
		"mode":         result.Mode,
	}
	if len(result.Errors) > 0 {
		payload["errors"] = result.Errors
	}
	respondJSON(w, payload)
}

func (r *Router) bulkDelete(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodDelete {
		r.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ctx := req.Context()
	records, err := r.store.ListCollections(ctx)
	if err != nil {
		log.Printf("bulk snapshot: %v", err)
		r.respondError(w, http.StatusInternalServerError, "failed to load collections")
		return
	}
	candidates := dedupe.BulkCandidates(records)
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].ID > candidates[j].ID })

	job, err := r.store.RecordOpsJob(ctx, "bulk-delete", map[string]interface{}{"patterns": dedupe.BulkPatterns})
	if err != nil {
		log.Printf("record ops job: %v", err)
		r.respondError(w, http.StatusInternalServerError, "failed to record bulk job")
		return
	}

	deleted := 0
	for _, rec := range candidates {
		ok, err := r.store.DeleteCollection(ctx, rec.ID)
		if err != nil {
			r.store.AppendOpsLog(ctx, job.ID, "error", fmt.Sprintf("delete %d: %v", rec.ID, err))
			continue
		}
		if ok {
			deleted++
		}
	}
	r.store.CompleteOpsJob(ctx, job.ID, deleted, "")
	r.met.AddDeleted(deleted)

	respondJSON(w, map[string]interface{}{
		"message":      fmt.Sprintf("Removed %d placeholder collections", deleted),
		"deletedCount": deleted,
		"patterns":     dedupe.BulkPatterns,
	})
}

func (r *Router) batchDelete(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodDelete {
		r.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var body struct {
		IDs []int64 `json:"ids"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		r.respondError(w, http.StatusBadRequest, "ids array is required")
		return
	}
	if len(body.IDs) == 0 {
		r.respondError(w, http.StatusBadRequest, "ids array is required")
		return
	}

	ctx := req.Context()
	deleted, errs := dedupe.BatchDelete(ctx, r.store, body.IDs)
	r.met.AddDeleted(deleted)

	payload := map[string]interface{}{
		"message":        fmt.Sprintf("Deleted %d of %d collections", deleted, len(body.IDs)),
		"deletedCount":   deleted,
		"totalRequested": len(body.IDs),
	}
	if len(errs) > 0 {
		payload["errors"] = errs
	}
	respondJSON(w, payload)
}

func (r *Router) batchEdit(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPatch {
		r.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var body struct {
		IDs     []int64                `json:"ids"`
		Updates map[string]interface{} `json:"updates"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		r.respondError(w, http.StatusBadRequest, "ids array is required")
		return
	}
	if len(body.IDs) == 0 {
		r.respondError(w, http.StatusBadRequest, "ids array is required")
		return
	}
	if len(store.FilterCollectionUpdates(body.Updates)) == 0 {
		r.respondError(w, http.StatusBadRequest, "updates object is required")
		return
	}

	ctx := req.Context()
	updated, errs := dedupe.BatchEdit(ctx, r.store, body.IDs, body.Updates)
	r.met.AddBatchEdits(updated)

	payload := map[string]interface{}{
		"message":        fmt.Sprintf("Updated %d of %d collections", updated, len(body.IDs)),
		"updatedCount":   updated,
		"totalRequested": len(body.IDs),
	}
	if len(errs) > 0 {
		payload["errors"] = errs
	}
	respondJSON(w, payload)
}
