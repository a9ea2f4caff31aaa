package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"todo_server/internal/models"
)

// fakeAuditRepo is a minimal stub that satisfies repository.AuditRepo.
type fakeAuditRepo struct {
	gotFrom   time.Time
	gotTo     time.Time
	gotMethod string
	gotLimit  int
	appended  []models.AuditEvent

	events []models.AuditEvent
	err    error
	calls  int
}

func (f *fakeAuditRepo) Append(ctx context.Context, e models.AuditEvent) error {
	f.appended = append(f.appended, e)
	return f.err
}

func (f *fakeAuditRepo) List(ctx context.Context, from, to time.Time, method string, limit int) ([]models.AuditEvent, error) {
	f.calls++
	f.gotFrom, f.gotTo, f.gotMethod, f.gotLimit = from, to, method, limit
	return f.events, f.err
}

func TestAuditService_List_NormalizesFilter(t *testing.T) {
	repo := &fakeAuditRepo{events: []models.AuditEvent{{EventID: "e1"}}}
	svc := NewAuditService(repo)
	zone := time.FixedZone("UTC+3", 3*3600)
	from := time.Date(2025, time.August, 1, 12, 0, 0, 0, zone)

	got, err := svc.List(context.Background(), AuditFilter{From: from, Method: " put ", Limit: -5})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("events = %+v", got)
	}
	if repo.gotFrom.Location() != time.UTC || !repo.gotFrom.Equal(from) {
		t.Fatalf("from not normalized to UTC: %v", repo.gotFrom)
	}
	if !repo.gotTo.IsZero() {
		t.Fatalf("zero to must stay zero")
	}
	if repo.gotMethod != "PUT" || repo.gotLimit != 0 {
		t.Fatalf("method/limit = %q/%d", repo.gotMethod, repo.gotLimit)
	}
}

func TestAuditService_List_InvalidRange(t *testing.T) {
	repo := &fakeAuditRepo{}
	svc := NewAuditService(repo)
	now := time.Now()

	_, err := svc.List(context.Background(), AuditFilter{From: now, To: now.Add(-time.Minute)})
	if !errors.Is(err, errInvalidTimeRange) {
		t.Fatalf("expected errInvalidTimeRange, got %v", err)
	}
	if repo.calls != 0 {
		t.Fatalf("repo must not be queried on invalid range")
	}
}

func TestAuditService_Record(t *testing.T) {
	repo := &fakeAuditRepo{}
	svc := NewAuditService(repo)
	if err := svc.Record(context.Background(), models.AuditEvent{Method: "GET", Status: 200}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if len(repo.appended) != 1 || repo.appended[0].Status != 200 {
		t.Fatalf("appended = %+v", repo.appended)
	}
}
