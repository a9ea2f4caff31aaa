package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"todo_server/internal/models"

	"github.com/google/uuid"
)

type AuditSQLite struct {
	db *sql.DB
}

func NewAuditSQLite(db *sql.DB) *AuditSQLite { return &AuditSQLite{db: db} }

var _ AuditRepo = (*AuditSQLite)(nil)

// timestampLayout is fixed width so stored values order lexicographically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

const (
	insertAuditSQL = `INSERT INTO audit_events (id, occurred_at, remote_addr, method, path, status, username) VALUES (?, ?, ?, ?, ?, ?, ?)`
	selectAuditSQL = `SELECT id, occurred_at, remote_addr, method, path, status, username FROM audit_events`
)

// Append inserts an event. If EventID or OccurredAt are empty, they’re set.
func (r *AuditSQLite) Append(ctx context.Context, e models.AuditEvent) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, insertAuditSQL,
		e.EventID,
		e.OccurredAt.UTC().Format(timestampLayout),
		e.RemoteAddr,
		strings.ToUpper(e.Method),
		e.Path,
		e.Status,
		e.Username,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// List returns events within [from, to] (zero means unbounded), optionally
// restricted to one method, oldest first. limit <= 0 means no limit.
func (r *AuditSQLite) List(ctx context.Context, from, to time.Time, method string, limit int) ([]models.AuditEvent, error) {
	var (
		conds []string
		args  []any
	)
	if !from.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, from.UTC().Format(timestampLayout))
	}
	if !to.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, to.UTC().Format(timestampLayout))
	}
	if method = strings.ToUpper(strings.TrimSpace(method)); method != "" {
		conds = append(conds, "method = ?")
		args = append(args, method)
	}

	q := selectAuditSQL
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY occurred_at ASC"
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	out := make([]models.AuditEvent, 0, 64)
	for rows.Next() {
		var (
			ev models.AuditEvent
			ts string
		)
		if err := rows.Scan(&ev.EventID, &ts, &ev.RemoteAddr, &ev.Method, &ev.Path, &ev.Status, &ev.Username); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		if ev.OccurredAt, err = time.Parse(timestampLayout, ts); err != nil {
			return nil, fmt.Errorf("parse audit timestamp %q: %w", ts, err)
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
