package dedupe

import (
	"regexp"
	"strings"
)

// Two host-name heuristics flag likely test or placeholder data. The strict
// policy drives the analyze report; the broad policy additionally matches
// bare "group N" hosts and drives the suspicious cleanup mode. They are
// deliberately separate filters, not one policy with a switch.
var (
	groupRangePattern  = regexp.MustCompile(`^group \d-\d$`)
	groupNumberPattern = regexp.MustCompile(`^group \d+$`)
)

// StrictSuspiciousPolicy reports whether the host name looks like test or
// placeholder data.
func StrictSuspiciousPolicy(hostName string) bool {
	name := strings.ToLower(hostName)
	return strings.HasPrefix(name, "loc ") ||
		groupRangePattern.MatchString(name) ||
		strings.Contains(name, "test") ||
		strings.Contains(name, "duplicate")
}

// BroadSuspiciousPolicy extends the strict policy with un-hyphenated
// "group N" host names.
func BroadSuspiciousPolicy(hostName string) bool {
	if StrictSuspiciousPolicy(hostName) {
		return true
	}
	return groupNumberPattern.MatchString(strings.ToLower(hostName))
}
