package dedupe

import (
	"fmt"
	"sort"
	"time"

	"sandwich_platform/internal/store"
)

// Group is one set of exact-duplicate collection entries. Keep is the entry
// that survives cleanup; ToDelete holds every other member.
type Group struct {
	Key      string             `json:"key"`
	Keep     store.Collection   `json:"keep"`
	ToDelete []store.Collection `json:"toDelete"`
}

// Count reports the total number of entries in the group.
func (g Group) Count() int { return 1 + len(g.ToDelete) }

// GroupKey derives the exact-duplicate grouping key. Matching is exact and
// case-sensitive on every component.
func GroupKey(c store.Collection) string {
	return fmt.Sprintf("%s|%s|%d|%s", c.CollectionDate, c.HostName, c.IndividualSandwiches, c.GroupCollections)
}

var submittedAtLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseSubmittedAt parses the free-form submission timestamp. Unparsable
// values return the zero time so they deterministically sort as oldest.
func ParseSubmittedAt(s string) time.Time {
	for _, layout := range submittedAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

type indexed struct {
	rec store.Collection
	idx int
}

// sortNewestFirst orders entries newest-first by submission time, falling
// back to original scan order so ties resolve deterministically.
func sortNewestFirst(entries []indexed) {
	sort.SliceStable(entries, func(i, j int) bool {
		ti := ParseSubmittedAt(entries[i].rec.SubmittedAt)
		tj := ParseSubmittedAt(entries[j].rec.SubmittedAt)
		if ti.Equal(tj) {
			return entries[i].idx < entries[j].idx
		}
		return ti.After(tj)
	})
}

// FindExactDuplicates groups the snapshot by key and returns every group with
// more than one member. Singleton keys are dropped from the report. Groups
// appear in first-seen key order.
func FindExactDuplicates(records []store.Collection) []Group {
	byKey := make(map[string][]indexed)
	var keyOrder []string
	for i, rec := range records {
		key := GroupKey(rec)
		if _, seen := byKey[key]; !seen {
			keyOrder = append(keyOrder, key)
		}
		byKey[key] = append(byKey[key], indexed{rec: rec, idx: i})
	}

	var groups []Group
	for _, key := range keyOrder {
		members := byKey[key]
		if len(members) < 2 {
			continue
		}
		sortNewestFirst(members)
		g := Group{Key: key, Keep: members[0].rec}
		for _, m := range members[1:] {
			g.ToDelete = append(g.ToDelete, m.rec)
		}
		groups = append(groups, g)
	}
	return groups
}
