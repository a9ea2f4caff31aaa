package service

import (
	"context"

	"todo_server/internal/models"
	"todo_server/internal/repository"
)

type Authorization interface {
	SignUp(username, password string) error
	Authenticate(username, password string) (models.User, bool)
}

// Tasks exposes owner-checked task operations.
type Tasks interface {
	Create(content string, owner models.User) models.Task
	List() []models.Task
	Update(id uint64, actor models.User, patch models.TaskPatch) (models.Task, error)
	Delete(id uint64, actor models.User) error
}

// Audit records dispatched requests and lists them back for the admin surface.
type Audit interface {
	Record(ctx context.Context, e models.AuditEvent) error
	List(ctx context.Context, f AuditFilter) ([]models.AuditEvent, error)
}

// Service aggregates all sub-services. Audit is nil when the audit trail is
// disabled.
type Service struct {
	Authorization
	Tasks
	Audit Audit
}

// NewService wires the repository layer into concrete services.
func NewService(repos *repository.Repository, bcryptCost int) *Service {
	s := &Service{
		Authorization: NewAuthService(repos.Users, bcryptCost),
		Tasks:         NewTaskService(repos.Tasks),
	}
	if repos.Audit != nil {
		s.Audit = NewAuditService(repos.Audit)
	}
	return s
}
