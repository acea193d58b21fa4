package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"sandwich_platform/internal/config"
	"sandwich_platform/internal/events"
	"sandwich_platform/internal/metrics"
	"sandwich_platform/internal/store"
)

// Router builds HTTP handlers for the /api surface.
type Router struct {
	cfg   config.Config
	store *store.Store
	bus   *events.Bus
	met   *metrics.Metrics
}

func NewRouter(cfg config.Config, st *store.Store, bus *events.Bus, met *metrics.Metrics) *Router {
	return &Router{cfg: cfg, store: st, bus: bus, met: met}
}

func (r *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/collections", r.collections)
	mux.HandleFunc("/api/collections/", r.collectionOps)
	mux.HandleFunc("/api/stats", r.stats)
	mux.HandleFunc("/api/import", r.importCSV)
	mux.HandleFunc("/api/hosts", r.hosts)
	mux.HandleFunc("/api/hosts/", r.hostDetail)
	mux.HandleFunc("/api/recipients", r.recipients)
	mux.HandleFunc("/api/recipients/", r.recipientDetail)
	mux.HandleFunc("/api/contacts", r.contacts)
	mux.HandleFunc("/api/contacts/", r.contactDetail)
	mux.HandleFunc("/api/projects", r.projects)
	mux.HandleFunc("/api/projects/", r.projectDetail)
	mux.HandleFunc("/api/messages", r.messages)
	mux.HandleFunc("/api/ops/status", r.opsStatus)
	mux.HandleFunc("/api/ops/health", r.health)
	mux.HandleFunc("/api/ops/jobs", r.opsJobs)
	mux.HandleFunc("/api/ops/jobs/", r.opsJobDetail)
}

func respondJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("write json: %v", err)
	}
}

// respondError writes a failure payload with a stable message field.
func (r *Router) respondError(w http.ResponseWriter, status int, message string) {
	r.met.IncRequestErrors()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"message": message}); err != nil {
		log.Printf("write json: %v", err)
	}
}

func parseID(path, prefix string) (int64, bool) {
	idStr := strings.TrimSuffix(strings.TrimPrefix(path, prefix), "/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
