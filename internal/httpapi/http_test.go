package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"sandwich_platform/internal/config"
	"sandwich_platform/internal/events"
	"sandwich_platform/internal/metrics"
	"sandwich_platform/internal/store"
)

type testEnv struct {
	srv   *httptest.Server
	store *store.Store
	bus   *events.Bus
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	cfg := config.Config{HTTPPort: "0", DBPath: "test.db", ImportDir: t.TempDir()}
	bus := events.NewBus()
	mux := http.NewServeMux()
	NewRouter(cfg, st, bus, metrics.New()).Register(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, store: st, bus: bus}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, reader)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var payload map[string]interface{}
	dec := json.NewDecoder(resp.Body)
	_ = dec.Decode(&payload)
	return resp, payload
}

func (e *testEnv) seed(t *testing.T, host, date string, individual int, group, submitted string) int64 {
	t.Helper()
	rec, err := e.store.CreateCollection(context.Background(), store.Collection{
		HostName:             host,
		CollectionDate:       date,
		IndividualSandwiches: individual,
		GroupCollections:     group,
		SubmittedAt:          submitted,
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return rec.ID
}

func TestCreateAndGetCollection(t *testing.T) {
	env := newTestEnv(t)

	resp, payload := env.do(t, http.MethodPost, "/api/collections", map[string]interface{}{
		"hostName":             "Alpha",
		"collectionDate":       "2021-01-05",
		"individualSandwiches": 100,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status %d", resp.StatusCode)
	}
	id := int64(payload["id"].(float64))
	if payload["submittedAt"] == "" {
		t.Fatal("expected defaulted submittedAt")
	}

	resp, payload = env.do(t, http.MethodGet, fmt.Sprintf("/api/collections/%d", id), nil)
	if resp.StatusCode != http.StatusOK || payload["hostName"] != "Alpha" {
		t.Fatalf("get status %d payload %v", resp.StatusCode, payload)
	}
}

func TestCreateCollectionRequiresDate(t *testing.T) {
	env := newTestEnv(t)
	resp, payload := env.do(t, http.MethodPost, "/api/collections", map[string]interface{}{"hostName": "Alpha"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if payload["message"] != "collectionDate is required" {
		t.Fatalf("unexpected message %v", payload["message"])
	}
}

func TestCollectionNotFound(t *testing.T) {
	env := newTestEnv(t)
	resp, _ := env.do(t, http.MethodGet, "/api/collections/999", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status %d", resp.StatusCode)
	}
	resp, _ = env.do(t, http.MethodDelete, "/api/collections/999", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("delete status %d", resp.StatusCode)
	}
}

func TestPatchCollectionRejectsUnknownFields(t *testing.T) {
	env := newTestEnv(t)
	id := env.seed(t, "Alpha", "2021-01-05", 100, "", "2021-01-05T12:00:00Z")

	resp, _ := env.do(t, http.MethodPatch, fmt.Sprintf("/api/collections/%d", id), map[string]interface{}{"bogus": "x"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d", resp.StatusCode)
	}

	resp, payload := env.do(t, http.MethodPatch, fmt.Sprintf("/api/collections/%d", id), map[string]interface{}{"hostName": "Beta"})
	if resp.StatusCode != http.StatusOK || payload["hostName"] != "Beta" {
		t.Fatalf("patch status %d payload %v", resp.StatusCode, payload)
	}
}

func TestAnalyzeDuplicatesReport(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "Alpha", "2021-01-05", 100, "", "2021-01-05T10:00:00Z")
	env.seed(t, "Alpha", "2021-01-05", 100, "", "2021-01-05T12:00:00Z")
	env.seed(t, "Loc test site", "2021-01-06", 10, "", "2021-01-06T10:00:00Z")
	env.seed(t, "Beta", "2021-01-07", 40, "", "2021-01-07T10:00:00Z")

	resp, payload := env.do(t, http.MethodGet, "/api/collections/analyze-duplicates", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if payload["totalCollections"].(float64) != 4 {
		t.Fatalf("totalCollections = %v", payload["totalCollections"])
	}
	if payload["duplicateGroups"].(float64) != 1 {
		t.Fatalf("duplicateGroups = %v", payload["duplicateGroups"])
	}
	if payload["totalDuplicateEntries"].(float64) != 1 {
		t.Fatalf("totalDuplicateEntries = %v", payload["totalDuplicateEntries"])
	}
	if payload["suspiciousPatterns"].(float64) != 1 {
		t.Fatalf("suspiciousPatterns = %v", payload["suspiciousPatterns"])
	}
}

func TestCleanDuplicatesKeepsNewest(t *testing.T) {
	env := newTestEnv(t)
	older := env.seed(t, "Alpha", "2021-01-05", 100, "", "2021-01-05T10:00:00Z")
	newer := env.seed(t, "Alpha", "2021-01-05", 100, "", "2021-01-05T12:00:00Z")
	other := env.seed(t, "Beta", "2021-01-06", 40, "", "2021-01-06T10:00:00Z")

	resp, payload := env.do(t, http.MethodDelete, "/api/collections/clean-duplicates", map[string]string{"mode": "exact"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if payload["deletedCount"].(float64) != 1 || payload["mode"] != "exact" {
		t.Fatalf("unexpected payload %v", payload)
	}
	if _, ok := payload["errors"]; ok {
		t.Fatalf("errors should be omitted on clean run: %v", payload)
	}

	ctx := context.Background()
	if rec, _ := env.store.GetCollection(ctx, older); rec != nil {
		t.Fatal("older duplicate should be deleted")
	}
	for _, id := range []int64{newer, other} {
		if rec, _ := env.store.GetCollection(ctx, id); rec == nil {
			t.Fatalf("record %d should survive", id)
		}
	}
}

func TestCleanDuplicatesIdempotent(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "Alpha", "2021-01-05", 100, "", "2021-01-05T10:00:00Z")
	env.seed(t, "Alpha", "2021-01-05", 100, "", "2021-01-05T12:00:00Z")

	resp, payload := env.do(t, http.MethodDelete, "/api/collections/clean-duplicates", nil)
	if resp.StatusCode != http.StatusOK || payload["deletedCount"].(float64) != 1 {
		t.Fatalf("first run: status %d payload %v", resp.StatusCode, payload)
	}

	resp, payload = env.do(t, http.MethodDelete, "/api/collections/clean-duplicates", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("second run status %d", resp.StatusCode)
	}
	if payload["deletedCount"].(float64) != 0 || payload["totalFound"].(float64) != 0 {
		t.Fatalf("second run should find nothing: %v", payload)
	}
}

func TestCleanDuplicatesUnknownMode(t *testing.T) {
	env := newTestEnv(t)
	resp, payload := env.do(t, http.MethodDelete, "/api/collections/clean-duplicates", map[string]string{"mode": "aggressive"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if !strings.Contains(payload["message"].(string), "aggressive") {
		t.Fatalf("message should name the bad mode: %v", payload["message"])
	}
}

func TestCleanDuplicatesSuspiciousMode(t *testing.T) {
	env := newTestEnv(t)
	suspect := env.seed(t, "Group 8", "2021-01-05", 10, "", "2021-01-05T10:00:00Z")
	normal := env.seed(t, "Alpha", "2021-01-05", 100, "", "2021-01-05T10:00:00Z")

	resp, payload := env.do(t, http.MethodDelete, "/api/collections/clean-duplicates", map[string]string{"mode": "suspicious"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if payload["deletedCount"].(float64) != 1 {
		t.Fatalf("unexpected payload %v", payload)
	}
	ctx := context.Background()
	if rec, _ := env.store.GetCollection(ctx, suspect); rec != nil {
		t.Fatal("suspicious entry should be deleted")
	}
	if rec, _ := env.store.GetCollection(ctx, normal); rec == nil {
		t.Fatal("normal entry should survive")
	}
}

func TestBatchDeleteValidation(t *testing.T) {
	env := newTestEnv(t)

	resp, payload := env.do(t, http.MethodDelete, "/api/collections/batch-delete", map[string]interface{}{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if payload["message"] != "ids array is required" {
		t.Fatalf("unexpected message %v", payload["message"])
	}

	resp, _ = env.do(t, http.MethodDelete, "/api/collections/batch-delete", map[string]interface{}{"ids": []int64{}})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty ids: status %d", resp.StatusCode)
	}
}

func TestBatchDeleteReportsMissingIDs(t *testing.T) {
	env := newTestEnv(t)
	id := env.seed(t, "Alpha", "2021-01-05", 100, "", "2021-01-05T10:00:00Z")

	resp, payload := env.do(t, http.MethodDelete, "/api/collections/batch-delete", map[string]interface{}{"ids": []int64{id, 999}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if payload["deletedCount"].(float64) != 1 || payload["totalRequested"].(float64) != 2 {
		t.Fatalf("unexpected payload %v", payload)
	}
	errs, ok := payload["errors"].([]interface{})
	if !ok || len(errs) != 1 || !strings.Contains(errs[0].(string), "999") {
		t.Fatalf("expected not-found error for 999: %v", payload["errors"])
	}
}

func TestBatchEdit(t *testing.T) {
	env := newTestEnv(t)
	first := env.seed(t, "Alpha", "2021-01-05", 100, "", "2021-01-05T10:00:00Z")
	second := env.seed(t, "Beta", "2021-01-06", 40, "", "2021-01-06T10:00:00Z")

	resp, payload := env.do(t, http.MethodPatch, "/api/collections/batch-edit", map[string]interface{}{
		"ids":     []int64{first, second},
		"updates": map[string]interface{}{"hostName": "Merged Site"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if payload["updatedCount"].(float64) != 2 {
		t.Fatalf("unexpected payload %v", payload)
	}
	rec, _ := env.store.GetCollection(context.Background(), first)
	if rec.HostName != "Merged Site" {
		t.Fatalf("edit not applied: %+v", rec)
	}
}

func TestBatchEditRequiresEditableFields(t *testing.T) {
	env := newTestEnv(t)
	id := env.seed(t, "Alpha", "2021-01-05", 100, "", "2021-01-05T10:00:00Z")

	resp, payload := env.do(t, http.MethodPatch, "/api/collections/batch-edit", map[string]interface{}{
		"ids":     []int64{id},
		"updates": map[string]interface{}{"bogus": "x"},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if payload["message"] != "updates object is required" {
		t.Fatalf("unexpected message %v", payload["message"])
	}
}

func TestBulkDeletePatterns(t *testing.T) {
	env := newTestEnv(t)
	locID := env.seed(t, "Loc River Park", "2021-01-05", 10, "", "2021-01-05T10:00:00Z")
	groupID := env.seed(t, "Group 3", "2021-01-05", 10, "", "2021-01-05T10:00:00Z")
	lowerLoc := env.seed(t, "loc river park", "2021-01-05", 10, "", "2021-01-05T10:00:00Z")
	keeper := env.seed(t, "Alpha", "2021-01-05", 100, "", "2021-01-05T10:00:00Z")

	resp, payload := env.do(t, http.MethodDelete, "/api/collections/bulk", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if payload["deletedCount"].(float64) != 2 {
		t.Fatalf("unexpected payload %v", payload)
	}

	ctx := context.Background()
	for _, id := range []int64{locID, groupID} {
		if rec, _ := env.store.GetCollection(ctx, id); rec != nil {
			t.Fatalf("record %d should be deleted", id)
		}
	}
	// lower-case "loc" does not match the bulk patterns
	for _, id := range []int64{lowerLoc, keeper} {
		if rec, _ := env.store.GetCollection(ctx, id); rec == nil {
			t.Fatalf("record %d should survive", id)
		}
	}
}

func TestStats(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "Alpha", "2021-01-05", 100, `[{"sandwichCount": 25}]`, "2021-01-05T10:00:00Z")
	env.seed(t, "Beta", "2021-01-06", 40, "Scouts: 10, Church: 5", "2021-01-06T10:00:00Z")

	resp, payload := env.do(t, http.MethodGet, "/api/stats", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if payload["individualSandwiches"].(float64) != 140 {
		t.Fatalf("individualSandwiches = %v", payload["individualSandwiches"])
	}
	if payload["groupSandwiches"].(float64) != 40 {
		t.Fatalf("groupSandwiches = %v", payload["groupSandwiches"])
	}
	if payload["totalSandwiches"].(float64) != 180 {
		t.Fatalf("totalSandwiches = %v", payload["totalSandwiches"])
	}
}

func TestCleanupRecordsOpsJob(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "Alpha", "2021-01-05", 100, "", "2021-01-05T10:00:00Z")
	env.seed(t, "Alpha", "2021-01-05", 100, "", "2021-01-05T12:00:00Z")

	if resp, _ := env.do(t, http.MethodDelete, "/api/collections/clean-duplicates", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("cleanup status %d", resp.StatusCode)
	}

	jobs, err := env.store.ListOpsJobs(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 1 || jobs[0].Type != "clean-duplicates" || jobs[0].Status != "succeeded" || jobs[0].Accepted != 1 {
		t.Fatalf("unexpected jobs %+v", jobs)
	}
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)
	resp, _ := env.do(t, http.MethodGet, "/api/ops/health", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status %d", resp.StatusCode)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t)
	resp, _ := env.do(t, http.MethodPut, "/api/collections", nil)
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status %d", resp.StatusCode)
	}
	resp, _ = env.do(t, http.MethodPost, "/api/collections/analyze-duplicates", nil)
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("analyze status %d", resp.StatusCode)
	}
}

func TestMessagesPublishToBus(t *testing.T) {
	env := newTestEnv(t)
	ch := env.bus.Subscribe()

	resp, payload := env.do(t, http.MethodPost, "/api/messages", map[string]string{
		"sender":  "katie",
		"content": "drive at noon",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status %d payload %v", resp.StatusCode, payload)
	}

	select {
	case msg := <-ch:
		if msg.Content != "drive at noon" || msg.Channel != "general" {
			t.Fatalf("unexpected message %+v", msg)
		}
	default:
		t.Fatal("expected message on bus")
	}
}

func TestImportCSVEndpoint(t *testing.T) {
	env := newTestEnv(t)
	body := "host,date,individual\nAlpha,2021-01-05,100\nBeta,,50\n"

	req, err := http.NewRequest(http.MethodPost, env.srv.URL+"/api/import", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "text/csv")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var payload map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatal(err)
	}
	if payload["imported"].(float64) != 1 || payload["skipped"].(float64) != 1 {
		t.Fatalf("unexpected payload %v", payload)
	}

	total, err := env.store.CountCollections(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 {
		t.Fatalf("expected 1 stored collection, got %d", total)
	}
}
