package handlers

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"

	"todo_server/internal/models"
	"todo_server/internal/protocol"
	"todo_server/internal/repository"
	"todo_server/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAudit struct {
	mu        sync.Mutex
	recorded  []models.AuditEvent
	recordErr error

	resp    []models.AuditEvent
	listErr error
	lastF   service.AuditFilter
	listed  int
}

func (m *mockAudit) Record(ctx context.Context, e models.AuditEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recorded = append(m.recorded, e)
	return m.recordErr
}

func (m *mockAudit) List(ctx context.Context, f service.AuditFilter) ([]models.AuditEvent, error) {
	m.lastF = f
	m.listed++
	return m.resp, m.listErr
}

var errAuditDown = errors.New("audit down")

// ---- Shared Test Helpers ----

// newTestHandler wires a handler over a fresh in-memory store.
func newTestHandler(policy StatusPolicy, audit service.Audit) *Handler {
	services := service.NewService(repository.NewRepository(nil), service.DefaultBcryptCost)
	services.Audit = audit
	return NewHandler(services, policy, nil)
}

func newTestAdminRouter(audit service.Audit) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return newTestHandler(CompatPolicy, audit).InitAdminRoutes()
}

// send parses raw exactly like the connection loop and dispatches it.
func send(h *Handler, raw string) (protocol.Response, error) {
	return h.Dispatch(context.Background(), "127.0.0.1:40000", protocol.ParseRequest([]byte(raw)))
}

func basicHeader(username, password string) string {
	return "Authorization: Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password)) + "\r\n"
}

func register(h *Handler, username, password string) protocol.Response {
	resp, _ := send(h, "POST /users HTTP/1.1\r\n\r\n{\"username\":\""+username+"\",\"password\":\""+password+"\"}")
	return resp
}
