package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"todo_server/internal/models"
)

// Domain errors returned by the store.
var (
	ErrUserExists   = errors.New("user already exists")
	ErrTaskNotFound = errors.New("task not found")
	ErrForbidden    = errors.New("task belongs to another user")
)

type Users interface {
	CreateUser(u models.User) error
	GetUser(username string) (models.User, bool)
}

type Tasks interface {
	CreateTask(content string, owner models.PublicUser) models.Task
	ListTasks() []models.Task
	UpdateTask(id uint64, actor string, patch models.TaskPatch) (models.Task, error)
	DeleteTask(id uint64, actor string) error
}

type AuditRepo interface {
	Append(ctx context.Context, e models.AuditEvent) error
	List(ctx context.Context, from, to time.Time, method string, limit int) ([]models.AuditEvent, error)
}

type Repository struct {
	Users Users
	Tasks Tasks
	Audit AuditRepo // nil when the audit trail is disabled
}

// NewRepository builds a fresh, empty in-memory store. The audit trail is
// backed by db when one is given.
func NewRepository(db *sql.DB) *Repository {
	store := NewMemoryStore()
	repos := &Repository{Users: store, Tasks: store}
	if db != nil {
		repos.Audit = NewAuditSQLite(db)
	}
	return repos
}
