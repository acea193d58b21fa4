package metrics

import "sync/atomic"

// Metrics captures shared operational stats for the API and importer.
type Metrics struct {
	collectionsCreated  int64
	collectionsImported int64
	duplicatesDeleted   int64
	batchEdits          int64
	requestErrors       int64
}

// Snapshot provides a consistent view of the current metrics.
type Snapshot struct {
	CollectionsCreated  int64 `json:"collections_created"`
	CollectionsImported int64 `json:"collections_imported"`
	DuplicatesDeleted   int64 `json:"duplicates_deleted"`
	BatchEdits          int64 `json:"batch_edits"`
	RequestErrors       int64 `json:"request_errors"`
}

// New creates a zeroed Metrics instance.
func New() *Metrics {
	return &Metrics{}
}

func (m *Metrics) IncCreated()         { atomic.AddInt64(&m.collectionsCreated, 1) }
func (m *Metrics) AddImported(n int)   { atomic.AddInt64(&m.collectionsImported, int64(n)) }
func (m *Metrics) AddDeleted(n int)    { atomic.AddInt64(&m.duplicatesDeleted, int64(n)) }
func (m *Metrics) AddBatchEdits(n int) { atomic.AddInt64(&m.batchEdits, int64(n)) }
func (m *Metrics) IncRequestErrors()   { atomic.AddInt64(&m.requestErrors, 1) }

// Snapshot returns a read-only view of metrics.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		CollectionsCreated:  atomic.LoadInt64(&m.collectionsCreated),
		CollectionsImported: atomic.LoadInt64(&m.collectionsImported),
		DuplicatesDeleted:   atomic.LoadInt64(&m.duplicatesDeleted),
		BatchEdits:          atomic.LoadInt64(&m.batchEdits),
		RequestErrors:       atomic.LoadInt64(&m.requestErrors),
	}
}
