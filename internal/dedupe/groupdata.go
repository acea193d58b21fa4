package dedupe

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

type groupEntry struct {
	SandwichCount int    `json:"sandwichCount"`
	Count         int    `json:"count"`
	Description   string `json:"description"`
}

var labeledCountPattern = regexp.MustCompile(`:\s*(\d+)`)

// GroupTotal sums the sandwich counts encoded in a group-collections string.
// Two encodings exist in the wild: a JSON array of {sandwichCount, description}
// objects (newer clients send "count" instead) and legacy free text of the
// form "Label: N, Label2: M". Malformed input totals zero rather than erroring.
func GroupTotal(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}

	if strings.HasPrefix(raw, "[") {
		var entries []groupEntry
		if err := json.Unmarshal([]byte(raw), &entries); err == nil {
			total := 0
			for _, e := range entries {
				if e.SandwichCount > 0 {
					total += e.SandwichCount
				} else {
					total += e.Count
				}
			}
			return total
		}
		return 0
	}

	total := 0
	for _, m := range labeledCountPattern.FindAllStringSubmatch(raw, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil {
			total += n
		}
	}
	return total
}
