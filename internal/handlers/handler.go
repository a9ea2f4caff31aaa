package handlers

import (
	"context"
	"errors"

	"todo_server/internal/logger"
	"todo_server/internal/models"
	"todo_server/internal/protocol"
	"todo_server/internal/service"

	"github.com/gin-gonic/gin"
)

// ErrMalformedTaskID marks a request whose /tasks/{id} segment is not an
// unsigned integer. The reply is still written; the connection is then closed.
var ErrMalformedTaskID = errors.New("malformed task id")

// Handler dispatches framed requests of the task protocol and serves the
// admin routes.
type Handler struct {
	services *service.Service
	policy   StatusPolicy
	log      *logger.Logger
}

// NewHandler constructs a handler; a zero policy means CompatPolicy.
func NewHandler(services *service.Service, policy StatusPolicy, log *logger.Logger) *Handler {
	if policy == (StatusPolicy{}) {
		policy = CompatPolicy
	}
	return &Handler{services: services, policy: policy, log: log}
}

// Dispatch routes one parsed request. A non-nil error is a fault on this
// connection: the returned response should still be written, then the
// connection closed.
func (h *Handler) Dispatch(ctx context.Context, remote string, req protocol.Request) (protocol.Response, error) {
	resp, actor, err := h.route(req)
	h.record(ctx, models.AuditEvent{
		RemoteAddr: remote,
		Method:     req.Method,
		Path:       req.Path,
		Status:     resp.Status.Code(),
		Username:   actor,
	})
	if h.log != nil {
		h.log.Debugw("request_dispatched", "remote", remote, "method", req.Method, "path", req.Path, "status", string(resp.Status), "user", actor)
	}
	return resp, err
}

// route is the outer state machine. Registration comes before any
// authentication; everything else needs an Authorization header.
func (h *Handler) route(req protocol.Request) (protocol.Response, string, error) {
	if req.Method == methodPost && req.Path == pathUsers {
		return h.signUp(req), "", nil
	}

	header, ok := req.Header("Authorization")
	if !ok {
		return protocol.Unauthorized(), "", nil
	}

	user, ok := h.authenticate(header)
	if !ok {
		return h.policy.authFailure(), "", nil
	}

	resp, err := h.routeTasks(req, user)
	return resp, user.Username, err
}

func (h *Handler) authenticate(header string) (models.User, bool) {
	username, password, ok := service.DecodeBasic(header)
	if !ok {
		return models.User{}, false
	}
	return h.services.Authenticate(username, password)
}

// record appends to the audit trail. Failures never affect the reply.
func (h *Handler) record(ctx context.Context, e models.AuditEvent) {
	if h.services.Audit == nil {
		return
	}
	if err := h.services.Audit.Record(ctx, e); err != nil && h.log != nil {
		h.log.Warnw("audit_record_failed", "err", err, "method", e.Method, "path", e.Path)
	}
}

// InitAdminRoutes builds the gin router of the admin listener.
func (h *Handler) InitAdminRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", h.health)
	router.GET("/audit", h.getAudit)

	return router
}
