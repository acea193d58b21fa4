package dedupe

import "sandwich_platform/internal/store"

// Report is the read-only duplicate analysis over one snapshot.
type Report struct {
	TotalCollections      int                `json:"totalCollections"`
	DuplicateGroups       int                `json:"duplicateGroups"`
	TotalDuplicateEntries int                `json:"totalDuplicateEntries"`
	SuspiciousPatterns    int                `json:"suspiciousPatterns"`
	OGDuplicates          int                `json:"ogDuplicates"`
	Duplicates            []Group            `json:"duplicates"`
	SuspiciousEntries     []store.Collection `json:"suspiciousEntries"`
	OGDuplicateEntries    []Match            `json:"ogDuplicateEntries"`
}

// Analyze classifies a full snapshot without mutating anything. The
// suspicious section uses the strict policy; the broad variant only applies
// to the suspicious cleanup mode.
func Analyze(records []store.Collection) Report {
	report := Report{TotalCollections: len(records)}

	report.Duplicates = FindExactDuplicates(records)
	report.DuplicateGroups = len(report.Duplicates)
	for _, g := range report.Duplicates {
		report.TotalDuplicateEntries += len(g.ToDelete)
	}

	for _, rec := range records {
		if StrictSuspiciousPolicy(rec.HostName) {
			report.SuspiciousEntries = append(report.SuspiciousEntries, rec)
		}
	}
	report.SuspiciousPatterns = len(report.SuspiciousEntries)

	report.OGDuplicateEntries = MatchOGDuplicates(records)
	report.OGDuplicates = len(report.OGDuplicateEntries)
	return report
}
