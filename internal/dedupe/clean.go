package dedupe

import (
	"context"
	"fmt"
	"sort"

	"sandwich_platform/internal/store"
)

// Cleanup modes select which classifier feeds the deletion set.
const (
	ModeExact      = "exact"
	ModeSuspicious = "suspicious"
)

// maxSurfacedErrors bounds the error list returned to callers so a large
// failing batch cannot blow up the response.
const maxSurfacedErrors = 5

// Deleter is the slice of the record store the executor needs. The boolean
// reports whether a row was actually deleted; false with a nil error means
// the record was already gone.
type Deleter interface {
	DeleteCollection(ctx context.Context, id int64) (bool, error)
}

// Updater applies field updates to one record, returning nil when the id
// does not exist.
type Updater interface {
	UpdateCollection(ctx context.Context, id int64, updates map[string]interface{}) (*store.Collection, error)
}

// CleanupResult reports one cleanup pass.
type CleanupResult struct {
	DeletedCount int      `json:"deletedCount"`
	TotalFound   int      `json:"totalFound"`
	Errors       []string `json:"errors,omitempty"`
	Mode         string   `json:"mode"`
}

// CleanupCandidates computes the deletion set for a mode. Exact mode takes
// every non-surviving member of each duplicate group; suspicious mode takes
// every record the broad policy flags.
func CleanupCandidates(records []store.Collection, mode string) ([]store.Collection, error) {
	switch mode {
	case ModeExact:
		var out []store.Collection
		for _, g := range FindExactDuplicates(records) {
			out = append(out, g.ToDelete...)
		}
		return out, nil
	case ModeSuspicious:
		var out []store.Collection
		for _, rec := range records {
			if BroadSuspiciousPolicy(rec.HostName) {
				out = append(out, rec)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown cleanup mode %q", mode)
	}
}

// Cleanup deletes every candidate sequentially, newest ids first. One
// failing delete is recorded and the rest of the batch still runs. Deletes
// that report not-found are skipped silently; only confirmed deletions
// count.
func Cleanup(ctx context.Context, d Deleter, records []store.Collection, mode string) (CleanupResult, error) {
	if mode == "" {
		mode = ModeExact
	}
	candidates, err := CleanupCandidates(records, mode)
	if err != nil {
		return CleanupResult{}, err
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].ID > candidates[j].ID })

	result := CleanupResult{TotalFound: len(candidates), Mode: mode}
	for _, rec := range candidates {
		deleted, err := d.DeleteCollection(ctx, rec.ID)
		if err != nil {
			if len(result.Errors) < maxSurfacedErrors {
				result.Errors = append(result.Errors, fmt.Sprintf("delete %d: %v", rec.ID, err))
			}
			continue
		}
		if deleted {
			result.DeletedCount++
		}
	}
	return result, nil
}

// BatchDelete deletes caller-supplied ids independently. Unlike Cleanup,
// a not-found id is surfaced as an error entry, since the caller named it
// explicitly.
func BatchDelete(ctx context.Context, d Deleter, ids []int64) (deleted int, errs []string) {
	for _, id := range ids {
		ok, err := d.DeleteCollection(ctx, id)
		switch {
		case err != nil:
			if len(errs) < maxSurfacedErrors {
				errs = append(errs, fmt.Sprintf("delete %d: %v", id, err))
			}
		case !ok:
			if len(errs) < maxSurfacedErrors {
				errs = append(errs, fmt.Sprintf("collection %d not found", id))
			}
		default:
			deleted++
		}
	}
	return deleted, errs
}

// BatchEdit applies the same updates to each id independently.
func BatchEdit(ctx context.Context, u Updater, ids []int64, updates map[string]interface{}) (updated int, errs []string) {
	for _, id := range ids {
		rec, err := u.UpdateCollection(ctx, id, updates)
		switch {
		case err != nil:
			if len(errs) < maxSurfacedErrors {
				errs = append(errs, fmt.Sprintf("update %d: %v", id, err))
			}
		case rec == nil:
			if len(errs) < maxSurfacedErrors {
				errs = append(errs, fmt.Sprintf("collection %d not found", id))
			}
		default:
			updated++
		}
	}
	return updated, errs
}
