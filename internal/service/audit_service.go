package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"todo_server/internal/models"
	"todo_server/internal/repository"
)

var errInvalidTimeRange = errors.New("invalid time range: From must be <= To")

// AuditFilter selects audit events; zero values mean "no bound".
type AuditFilter struct {
	From   time.Time
	To     time.Time
	Method string
	Limit  int
}

type AuditService struct {
	repo repository.AuditRepo
}

func NewAuditService(repo repository.AuditRepo) *AuditService {
	return &AuditService{repo: repo}
}

func (s *AuditService) Record(ctx context.Context, e models.AuditEvent) error {
	return s.repo.Append(ctx, e)
}

func (s *AuditService) List(ctx context.Context, f AuditFilter) ([]models.AuditEvent, error) {
	from, to := normalizeToUTC(f.From), normalizeToUTC(f.To)
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return nil, errInvalidTimeRange
	}
	limit := f.Limit
	if limit < 0 {
		limit = 0
	}
	return s.repo.List(ctx, from, to, strings.ToUpper(strings.TrimSpace(f.Method)), limit)
}

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
