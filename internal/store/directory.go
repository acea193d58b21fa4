package store

import (
	"context"
	"database/sql"
	"time"
)

// Host is a collection site run by a volunteer.
type Host struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
}

// Recipient is an organization receiving deliveries.
type Recipient struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Contact        string    `json:"contact"`
	Address        string    `json:"address"`
	WeeklyEstimate int       `json:"weeklyEstimate"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Contact is a general phone-book entry.
type Contact struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s *Store) ListHosts(ctx context.Context) ([]Host, error) {
	rows, err := s.queryWithRetry(ctx, `SELECT id, name, address, phone, email, status, notes, created_at FROM hosts ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Host
	for rows.Next() {
		var h Host
		if err := rows.Scan(&h.ID, &h.Name, &h.Address, &h.Phone, &h.Email, &h.Status, &h.Notes, &h.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (s *Store) GetHost(ctx context.Context, id int64) (*Host, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name, address, phone, email, status, notes, created_at FROM hosts WHERE id = ?`, id)
	var h Host
	switch err := row.Scan(&h.ID, &h.Name, &h.Address, &h.Phone, &h.Email, &h.Status, &h.Notes, &h.CreatedAt); err {
	case nil:
		return &h, nil
	case sql.ErrNoRows:
		return nil, nil
	default:
		return nil, err
	}
}

func (s *Store) CreateHost(ctx context.Context, h Host) (*Host, error) {
	if h.Status == "" {
		h.Status = "active"
	}
	res, err := s.execWithRetry(ctx, `INSERT INTO hosts (name, address, phone, email, status, notes) VALUES (?, ?, ?, ?, ?, ?)`,
		h.Name, h.Address, h.Phone, h.Email, h.Status, h.Notes)
	if err != nil {
		return nil, err
	}
	id, _ := res.LastInsertId()
	return s.GetHost(ctx, id)
}

func (s *Store) UpdateHostStatus(ctx context.Context, id int64, status string) (bool, error) {
	res, err := s.execWithRetry(ctx, `UPDATE hosts SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	return affected > 0, err
}

func (s *Store) DeleteHost(ctx context.Context, id int64) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM hosts WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	return affected > 0, err
}

func (s *Store) ListRecipients(ctx context.Context) ([]Recipient, error) {
	rows, err := s.queryWithRetry(ctx, `SELECT id, name, contact, address, weekly_estimate, status, created_at FROM recipients ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Recipient
	for rows.Next() {
		var r Recipient
		if err := rows.Scan(&r.ID, &r.Name, &r.Contact, &r.Address, &r.WeeklyEstimate, &r.Status, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) CreateRecipient(ctx context.Context, r Recipient) (*Recipient, error) {
	if r.Status == "" {
		r.Status = "active"
	}
	res, err := s.execWithRetry(ctx, `INSERT INTO recipients (name, contact, address, weekly_estimate, status) VALUES (?, ?, ?, ?, ?)`,
		r.Name, r.Contact, r.Address, r.WeeklyEstimate, r.Status)
	if err != nil {
		return nil, err
	}
	id, _ := res.LastInsertId()
	row := s.db.QueryRowContext(ctx, `SELECT id, name, contact, address, weekly_estimate, status, created_at FROM recipients WHERE id = ?`, id)
	var out Recipient
	if err := row.Scan(&out.ID, &out.Name, &out.Contact, &out.Address, &out.WeeklyEstimate, &out.Status, &out.CreatedAt); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Store) DeleteRecipient(ctx context.Context, id int64) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM recipients WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	return affected > 0, err
}

func (s *Store) ListContacts(ctx context.Context) ([]Contact, error) {
	rows, err := s.queryWithRetry(ctx, `SELECT id, name, role, phone, email, notes, created_at FROM contacts ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Contact
	for rows.Next() {
		var c Contact
		if err := rows.Scan(&c.ID, &c.Name, &c.Role, &c.Phone, &c.Email, &c.Notes, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) CreateContact(ctx context.Context, c Contact) (*Contact, error) {
	res, err := s.execWithRetry(ctx, `INSERT INTO contacts (name, role, phone, email, notes) VALUES (?, ?, ?, ?, ?)`,
		c.Name, c.Role, c.Phone, c.Email, c.Notes)
	if err != nil {
		return nil, err
	}
	id, _ := res.LastInsertId()
	row := s.db.QueryRowContext(ctx, `SELECT id, name, role, phone, email, notes, created_at FROM contacts WHERE id = ?`, id)
	var out Contact
	if err := row.Scan(&out.ID, &out.Name, &out.Role, &out.Phone, &out.Email, &out.Notes, &out.CreatedAt); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Store) DeleteContact(ctx context.Context, id int64) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM contacts WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	return affected > 0, err
}
