package store

import (
	"context"
	"database/sql"
	"time"
)

// Project tracks a coordination effort (drive, event, supply run).
type Project struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Status       string    `json:"status"`
	AssigneeName string    `json:"assigneeName"`
	Description  string    `json:"description"`
	DueDate      string    `json:"dueDate"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Task is a unit of work under a project.
type Task struct {
	ID          int64     `json:"id"`
	ProjectID   int64     `json:"projectId"`
	Title       string    `json:"title"`
	Status      string    `json:"status"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Message is a team chat entry.
type Message struct {
	ID        int64     `json:"id"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	Channel   string    `json:"channel"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s *Store) ListProjects(ctx context.Context, status string) ([]Project, error) {
	query := `SELECT id, title, status, assignee_name, description, due_date, created_at FROM projects`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`
	rows, err := s.queryWithRetry(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Title, &p.Status, &p.AssigneeName, &p.Description, &p.DueDate, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) GetProject(ctx context.Context, id int64) (*Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, title, status, assignee_name, description, due_date, created_at FROM projects WHERE id = ?`, id)
	var p Project
	switch err := row.Scan(&p.ID, &p.Title, &p.Status, &p.AssigneeName, &p.Description, &p.DueDate, &p.CreatedAt); err {
	case nil:
		return &p, nil
	case sql.ErrNoRows:
		return nil, nil
	default:
		return nil, err
	}
}

func (s *Store) CreateProject(ctx context.Context, p Project) (*Project, error) {
	if p.Status == "" {
		p.Status = "open"
	}
	res, err := s.execWithRetry(ctx, `INSERT INTO projects (title, status, assignee_name, description, due_date) VALUES (?, ?, ?, ?, ?)`,
		p.Title, p.Status, p.AssigneeName, p.Description, p.DueDate)
	if err != nil {
		return nil, err
	}
	id, _ := res.LastInsertId()
	return s.GetProject(ctx, id)
}

func (s *Store) UpdateProjectStatus(ctx context.Context, id int64, status string) (bool, error) {
	res, err := s.execWithRetry(ctx, `UPDATE projects SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	return affected > 0, err
}

func (s *Store) ListTasks(ctx context.Context, projectID int64) ([]Task, error) {
	rows, err := s.queryWithRetry(ctx, `SELECT id, project_id, title, status, description, created_at FROM tasks WHERE project_id = ? ORDER BY id ASC`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Status, &t.Description, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) CreateTask(ctx context.Context, t Task) (*Task, error) {
	if t.Status == "" {
		t.Status = "todo"
	}
	res, err := s.execWithRetry(ctx, `INSERT INTO tasks (project_id, title, status, description) VALUES (?, ?, ?, ?)`,
		t.ProjectID, t.Title, t.Status, t.Description)
	if err != nil {
		return nil, err
	}
	id, _ := res.LastInsertId()
	row := s.db.QueryRowContext(ctx, `SELECT id, project_id, title, status, description, created_at FROM tasks WHERE id = ?`, id)
	var out Task
	if err := row.Scan(&out.ID, &out.ProjectID, &out.Title, &out.Status, &out.Description, &out.CreatedAt); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Store) ListMessages(ctx context.Context, channel string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT id, sender, content, channel, created_at FROM messages`
	args := []interface{}{}
	if channel != "" {
		query += ` WHERE channel = ?`
		args = append(args, channel)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)
	rows, err := s.queryWithRetry(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.Sender, &m.Content, &m.Channel, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) CreateMessage(ctx context.Context, m Message) (*Message, error) {
	if m.Channel == "" {
		m.Channel = "general"
	}
	res, err := s.execWithRetry(ctx, `INSERT INTO messages (sender, content, channel) VALUES (?, ?, ?)`,
		m.Sender, m.Content, m.Channel)
	if err != nil {
		return nil, err
	}
	id, _ := res.LastInsertId()
	row := s.db.QueryRowContext(ctx, `SELECT id, sender, content, channel, created_at FROM messages WHERE id = ?`, id)
	var out Message
	if err := row.Scan(&out.ID, &out.Sender, &out.Content, &out.Channel, &out.CreatedAt); err != nil {
		return nil, err
	}
	return &out, nil
}
