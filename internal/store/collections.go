package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Collection represents one sandwich collection log entry. GroupCollections
// carries either a JSON array of {sandwichCount, description} objects or
// legacy free text of the form "Label: N, Label2: M"; both are stored as-is.
type Collection struct {
	ID                   int64     `json:"id"`
	HostName             string    `json:"hostName"`
	CollectionDate       string    `json:"collectionDate"`
	IndividualSandwiches int       `json:"individualSandwiches"`
	GroupCollections     string    `json:"groupCollections"`
	SubmittedAt          string    `json:"submittedAt"`
	CreatedAt            time.Time `json:"createdAt"`
}

const collectionColumns = `id, host_name, collection_date, individual_sandwiches, group_collections, submitted_at, created_at`

func scanCollection(scan func(dest ...interface{}) error) (Collection, error) {
	var c Collection
	err := scan(&c.ID, &c.HostName, &c.CollectionDate, &c.IndividualSandwiches, &c.GroupCollections, &c.SubmittedAt, &c.CreatedAt)
	return c, err
}

// ListCollections returns the full snapshot in stable id order. The dedupe
// pipeline relies on this order for deterministic tie-breaking.
func (s *Store) ListCollections(ctx context.Context) ([]Collection, error) {
	rows, err := s.queryWithRetry(ctx, `SELECT `+collectionColumns+` FROM collections ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Collection
	for rows.Next() {
		c, err := scanCollection(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) GetCollection(ctx context.Context, id int64) (*Collection, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+collectionColumns+` FROM collections WHERE id = ?`, id)
	c, err := scanCollection(row.Scan)
	switch err {
	case nil:
		return &c, nil
	case sql.ErrNoRows:
		return nil, nil
	default:
		return nil, err
	}
}

func (s *Store) CreateCollection(ctx context.Context, c Collection) (*Collection, error) {
	if strings.TrimSpace(c.SubmittedAt) == "" {
		c.SubmittedAt = time.Now().UTC().Format(time.RFC3339)
	}
	res, err := s.execWithRetry(ctx, `INSERT INTO collections (host_name, collection_date, individual_sandwiches, group_collections, submitted_at) VALUES (?, ?, ?, ?, ?)`,
		c.HostName, c.CollectionDate, c.IndividualSandwiches, c.GroupCollections, c.SubmittedAt)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.GetCollection(ctx, id)
}

// editableCollectionColumns maps API field names to columns for UpdateCollection.
var editableCollectionColumns = map[string]string{
	"hostName":             "host_name",
	"collectionDate":       "collection_date",
	"individualSandwiches": "individual_sandwiches",
	"groupCollections":     "group_collections",
	"submittedAt":          "submitted_at",
}

// FilterCollectionUpdates keeps only recognized editable fields.
func FilterCollectionUpdates(updates map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(updates))
	for field, value := range updates {
		if _, ok := editableCollectionColumns[field]; ok {
			out[field] = value
		}
	}
	return out
}

// UpdateCollection applies the given field updates and returns the updated
// record, or nil if no record has that id.
func (s *Store) UpdateCollection(ctx context.Context, id int64, updates map[string]interface{}) (*Collection, error) {
	filtered := FilterCollectionUpdates(updates)
	if len(filtered) == 0 {
		return nil, fmt.Errorf("no editable fields in updates")
	}
	sets := make([]string, 0, len(filtered))
	args := make([]interface{}, 0, len(filtered)+1)
	for field, value := range filtered {
		sets = append(sets, editableCollectionColumns[field]+" = ?")
		args = append(args, value)
	}
	args = append(args, id)
	res, err := s.execWithRetry(ctx, `UPDATE collections SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, nil
	}
	return s.GetCollection(ctx, id)
}

// DeleteCollection removes one record. The boolean reports whether a row was
// actually deleted; a missing id is not an error.
func (s *Store) DeleteCollection(ctx context.Context, id int64) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM collections WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (s *Store) CountCollections(ctx context.Context) (int64, error) {
	var n int64
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM collections`)
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
