package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"sandwich_platform/internal/store"
)

// Sink is the slice of the store the importer writes through.
type Sink interface {
	CreateCollection(ctx context.Context, c store.Collection) (*store.Collection, error)
}

// Result summarizes one import run.
type Result struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

const maxSurfacedErrors = 5

// column aliases seen across exported spreadsheets
var headerAliases = map[string]string{
	"host":                  "host",
	"hostname":              "host",
	"host_name":             "host",
	"location":              "host",
	"date":                  "date",
	"collectiondate":        "date",
	"collection_date":       "date",
	"individual":            "individual",
	"individualsandwiches":  "individual",
	"individual_sandwiches": "individual",
	"sandwiches":            "individual",
	"group":                 "group",
	"groupcollections":      "group",
	"group_collections":     "group",
	"submitted":             "submitted",
	"submittedat":           "submitted",
	"submitted_at":          "submitted",
	"timestamp":             "submitted",
}

// ImportCSV reads collection rows from r and inserts them one at a time.
// Rows are independent: a bad row is counted and reported, and the rest of
// the file still imports.
func ImportCSV(ctx context.Context, sink Sink, r io.Reader) (Result, error) {
	var result Result
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return result, nil
	}
	if err != nil {
		return result, fmt.Errorf("read header: %w", err)
	}
	cols, err := mapHeader(header)
	if err != nil {
		return result, err
	}

	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Skipped++
			if len(result.Errors) < maxSurfacedErrors {
				result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			}
			continue
		}
		rec, err := rowToCollection(cols, row)
		if err != nil {
			result.Skipped++
			if len(result.Errors) < maxSurfacedErrors {
				result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			}
			continue
		}
		if _, err := sink.CreateCollection(ctx, rec); err != nil {
			result.Skipped++
			if len(result.Errors) < maxSurfacedErrors {
				result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			}
			continue
		}
		result.Imported++
	}
	return result, nil
}

// ImportFile imports a CSV file from disk.
func ImportFile(ctx context.Context, sink Sink, path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()
	return ImportCSV(ctx, sink, f)
}

func mapHeader(header []string) (map[string]int, error) {
	cols := make(map[string]int)
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		key = strings.ReplaceAll(key, " ", "_")
		if canonical, ok := headerAliases[key]; ok {
			if _, dup := cols[canonical]; !dup {
				cols[canonical] = i
			}
		}
	}
	if _, ok := cols["date"]; !ok {
		return nil, fmt.Errorf("no collection date column in header %v", header)
	}
	return cols, nil
}

func rowToCollection(cols map[string]int, row []string) (store.Collection, error) {
	field := func(name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	rec := store.Collection{
		HostName:         field("host"),
		CollectionDate:   field("date"),
		GroupCollections: field("group"),
		SubmittedAt:      field("submitted"),
	}
	if rec.CollectionDate == "" {
		return rec, fmt.Errorf("missing collection date")
	}
	if raw := field("individual"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return rec, fmt.Errorf("bad individual count %q", raw)
		}
		rec.IndividualSandwiches = n
	}
	return rec, nil
}
