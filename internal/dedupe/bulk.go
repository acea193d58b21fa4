package dedupe

import (
	"regexp"
	"strings"

	"sandwich_platform/internal/store"
)

// Bulk deletion targets legacy seed hosts by exact, case-sensitive patterns.
// These differ on purpose from the suspicious policies, which lower-case
// their input.
var bulkGroupPattern = regexp.MustCompile(`^Group [1-8]`)

// BulkPatterns describes the patterns applied, for the response payload.
var BulkPatterns = []string{`Loc *`, `Group [1-8]*`}

// BulkCandidates selects records whose host matches a bulk pattern.
func BulkCandidates(records []store.Collection) []store.Collection {
	var out []store.Collection
	for _, rec := range records {
		if strings.HasPrefix(rec.HostName, "Loc ") || bulkGroupPattern.MatchString(rec.HostName) {
			out = append(out, rec)
		}
	}
	return out
}
