package httpapi

import (
	"fmt"
	"log"
	"mime"
	"net/http"
	"strings"

	"sandwich_platform/internal/importer"
)

func (r *Router) opsStatus(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ctx := req.Context()
	total, err := r.store.CountCollections(ctx)
	dbStatus := map[string]interface{}{"db_ok": err == nil, "db_path": r.cfg.DBPath}
	if err != nil {
		dbStatus["last_db_error"] = err.Error()
	}
	respondJSON(w, map[string]interface{}{
		"config": map[string]interface{}{
			"PORT":       r.cfg.HTTPPort,
			"DB_PATH":    r.cfg.DBPath,
			"IMPORT_DIR": r.cfg.ImportDir,
		},
		"collections_total": total,
		"metrics":           r.met.Snapshot(),
		"db":                dbStatus,
	})
}

func (r *Router) health(w http.ResponseWriter, req *http.Request) {
	if err := r.store.Health(req.Context()); err != nil {
		r.respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (r *Router) opsJobs(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jobs, err := r.store.ListOpsJobs(req.Context(), 100)
	if err != nil {
		log.Printf("list ops jobs: %v", err)
		r.respondError(w, http.StatusInternalServerError, "failed to list jobs")
		return
	}
	respondJSON(w, map[string]interface{}{"jobs": jobs})
}

func (r *Router) opsJobDetail(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jobID := strings.TrimSuffix(strings.TrimPrefix(req.URL.Path, "/api/ops/jobs/"), "/")
	job, logs, err := r.store.GetOpsJob(req.Context(), jobID)
	if err != nil {
		log.Printf("get ops job %s: %v", jobID, err)
		r.respondError(w, http.StatusInternalServerError, "failed to load job")
		return
	}
	if job == nil {
		r.respondError(w, http.StatusNotFound, "job not found")
		return
	}
	respondJSON(w, map[string]interface{}{"job": job, "logs": logs})
}

// importCSV accepts a CSV export, either as a multipart "file" part or as a
// raw text/csv body.
func (r *Router) importCSV(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ctx := req.Context()

	mediaType, _, _ := mime.ParseMediaType(req.Header.Get("Content-Type"))
	var result importer.Result
	var err error
	switch {
	case strings.HasPrefix(mediaType, "multipart/"):
		file, _, ferr := req.FormFile("file")
		if ferr != nil {
			r.respondError(w, http.StatusBadRequest, "missing file upload")
			return
		}
		defer file.Close()
		result, err = importer.ImportCSV(ctx, r.store, file)
	case mediaType == "text/csv":
		result, err = importer.ImportCSV(ctx, r.store, req.Body)
	default:
		r.respondError(w, http.StatusBadRequest, "expected multipart upload or text/csv body")
		return
	}
	if err != nil {
		r.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	job, jerr := r.store.RecordOpsJob(ctx, "import", nil)
	if jerr == nil {
		for _, msg := range result.Errors {
			r.store.AppendOpsLog(ctx, job.ID, "warn", msg)
		}
		r.store.CompleteOpsJob(ctx, job.ID, result.Imported, "")
	}
	r.met.AddImported(result.Imported)

	payload := map[string]interface{}{
		"message":  fmt.Sprintf("Imported %d collections", result.Imported),
		"imported": result.Imported,
		"skipped":  result.Skipped,
	}
	if len(result.Errors) > 0 {
		payload["errors"] = result.Errors
	}
	respondJSON(w, payload)
}
