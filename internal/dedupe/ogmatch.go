package dedupe

import (
	"fmt"
	"strings"

	"sandwich_platform/internal/store"
)

// OGProjectHost is the canonical project whose entries predate per-host
// attribution.
const OGProjectHost = "OG Sandwich Project"

const (
	reasonEarlyMatch = "Same date and sandwich count as OG Project entry"
	reasonOGInternal = "Duplicate OG Project entry"
)

// Match pairs a canonical entry with a likely duplicate of it.
type Match struct {
	Keep      store.Collection `json:"keep"`
	Candidate store.Collection `json:"candidate"`
	Reason    string           `json:"reason"`
}

// isEarlyEntry reports whether a record is an unattributed early submission:
// blank or whitespace host, or a host naming an unknown location.
func isEarlyEntry(c store.Collection) bool {
	if c.HostName == OGProjectHost {
		return false
	}
	if strings.TrimSpace(c.HostName) == "" {
		return true
	}
	lower := strings.ToLower(c.HostName)
	return strings.Contains(lower, "unknown") || strings.Contains(lower, "no location")
}

func ogKey(c store.Collection) string {
	return fmt.Sprintf("%s|%d", c.CollectionDate, c.IndividualSandwiches)
}

// MatchOGDuplicates cross-references OG Project entries against early
// unattributed entries by date and sandwich count, and also flags repeated
// OG entries sharing a key. Only the first OG record per key anchors the
// early pairings.
func MatchOGDuplicates(records []store.Collection) []Match {
	ogByKey := make(map[string][]indexed)
	var keyOrder []string
	var early []store.Collection
	for i, rec := range records {
		switch {
		case rec.HostName == OGProjectHost:
			key := ogKey(rec)
			if _, seen := ogByKey[key]; !seen {
				keyOrder = append(keyOrder, key)
			}
			ogByKey[key] = append(ogByKey[key], indexed{rec: rec, idx: i})
		case isEarlyEntry(rec):
			early = append(early, rec)
		}
	}

	var matches []Match
	for _, rec := range early {
		if ogGroup, ok := ogByKey[ogKey(rec)]; ok {
			matches = append(matches, Match{
				Keep:      ogGroup[0].rec,
				Candidate: rec,
				Reason:    reasonEarlyMatch,
			})
		}
	}

	for _, key := range keyOrder {
		group := ogByKey[key]
		if len(group) < 2 {
			continue
		}
		sorted := append([]indexed(nil), group...)
		sortNewestFirst(sorted)
		for _, dup := range sorted[1:] {
			matches = append(matches, Match{
				Keep:      sorted[0].rec,
				Candidate: dup.rec,
				Reason:    reasonOGInternal,
			})
		}
	}
	return matches
}
