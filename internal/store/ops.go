package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
)

// OpsJob records one mutating maintenance run (cleanup, bulk delete, import)
// for the audit trail.
type OpsJob struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Status     string         `json:"status"`
	Payload    sql.NullString `json:"payload"`
	Accepted   int            `json:"accepted"`
	CreatedAt  time.Time      `json:"created_at"`
	FinishedAt sql.NullTime   `json:"finished_at"`
	LastError  sql.NullString `json:"last_error"`
}

// OpsJobLog is one log line attached to an ops job.
type OpsJobLog struct {
	Timestamp time.Time `json:"ts"`
	Level     string    `json:"level"`
	Message   string    `json:"msg"`
}

func (s *Store) RecordOpsJob(ctx context.Context, jobType string, payload interface{}) (*OpsJob, error) {
	id := uuid.NewString()
	var payloadStr sql.NullString
	if payload != nil {
		if b, err := json.Marshal(payload); err == nil {
			payloadStr = sql.NullString{String: string(b), Valid: true}
		}
	}
	_, err := s.execWithRetry(ctx, `INSERT INTO ops_job (id, type, status, payload, created_at) VALUES (?, ?, 'running', ?, CURRENT_TIMESTAMP)`, id, jobType, payloadStr)
	if err != nil {
		return nil, err
	}
	return &OpsJob{ID: id, Type: jobType, Status: "running", Payload: payloadStr, CreatedAt: time.Now()}, nil
}

func (s *Store) CompleteOpsJob(ctx context.Context, id string, accepted int, errMsg string) {
	status := "succeeded"
	var lastErr sql.NullString
	if errMsg != "" {
		status = "failed"
		lastErr = sql.NullString{String: errMsg, Valid: true}
	}
	if _, err := s.execWithRetry(ctx, `UPDATE ops_job SET status = ?, accepted = ?, last_error = ?, finished_at = CURRENT_TIMESTAMP WHERE id = ?`, status, accepted, lastErr, id); err != nil {
		log.Printf("update ops job %s: %v", id, err)
	}
}

func (s *Store) AppendOpsLog(ctx context.Context, jobID, level, msg string) {
	if _, err := s.execWithRetry(ctx, `INSERT INTO ops_job_log (job_id, ts, level, message) VALUES (?, ?, ?, ?)`, jobID, time.Now().UTC(), level, msg); err != nil {
		log.Printf("persist ops log failed: %v", err)
	}
}

func (s *Store) ListOpsJobs(ctx context.Context, limit int) ([]OpsJob, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.queryWithRetry(ctx, `SELECT id, type, status, payload, accepted, created_at, finished_at, last_error FROM ops_job ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var jobs []OpsJob
	for rows.Next() {
		var j OpsJob
		if err := rows.Scan(&j.ID, &j.Type, &j.Status, &j.Payload, &j.Accepted, &j.CreatedAt, &j.FinishedAt, &j.LastError); err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (s *Store) GetOpsJob(ctx context.Context, id string) (*OpsJob, []OpsJobLog, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, type, status, payload, accepted, created_at, finished_at, last_error FROM ops_job WHERE id = ?`, id)
	var j OpsJob
	switch err := row.Scan(&j.ID, &j.Type, &j.Status, &j.Payload, &j.Accepted, &j.CreatedAt, &j.FinishedAt, &j.LastError); err {
	case nil:
	case sql.ErrNoRows:
		return nil, nil, nil
	default:
		return nil, nil, err
	}
	rows, err := s.queryWithRetry(ctx, `SELECT ts, level, message FROM ops_job_log WHERE job_id = ? ORDER BY ts ASC LIMIT 200`, id)
	if err != nil {
		return &j, nil, nil
	}
	defer rows.Close()
	var logs []OpsJobLog
	for rows.Next() {
		var evt OpsJobLog
		if err := rows.Scan(&evt.Timestamp, &evt.Level, &evt.Message); err == nil {
			logs = append(logs, evt)
		}
	}
	return &j, logs, nil
}
