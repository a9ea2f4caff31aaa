package handlers

import (
	"errors"

	"todo_server/internal/protocol"
	"todo_server/internal/repository"
)

const (
	methodPost   = "POST"
	methodGet    = "GET"
	methodPut    = "PUT"
	methodDelete = "DELETE"

	pathUsers       = "/users"
	pathTasks       = "/tasks"
	pathTasksPrefix = "/tasks/"
)

// Reply messages.
const (
	msgEmptyBody         = "Empty body"
	msgMissingUsername   = "Missing username"
	msgMissingPassword   = "Missing password"
	msgMissingCreds      = "Missing username or password"
	msgUserExists        = "User already exists"
	msgUserCreated       = "User created"
	msgTaskCreated       = "Task created"
	msgTaskUpdated       = "Task updated"
	msgTaskDeleted       = "Task deleted"
	msgInvalidTaskID     = "Invalid task id"
	msgRegistrationFault = "Registration failed"
)

// signUp handles POST /users. Empty credentials are answered with 200 and
// an error payload, unlike the 400s for missing ones; clients rely on that.
func (h *Handler) signUp(req protocol.Request) protocol.Response {
	if req.Body == "" {
		return protocol.BadRequest(protocol.ErrorBody(msgEmptyBody))
	}
	username, ok := req.StringField("username")
	if !ok {
		return protocol.BadRequest(protocol.ErrorBody(msgMissingUsername))
	}
	password, ok := req.StringField("password")
	if !ok {
		return protocol.BadRequest(protocol.ErrorBody(msgMissingPassword))
	}
	if username == "" || password == "" {
		return protocol.JSON(protocol.ErrorBody(msgMissingCreds))
	}

	if err := h.services.SignUp(username, password); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return protocol.Conflict(protocol.ErrorBody(msgUserExists))
		}
		if h.log != nil {
			h.log.Errorw("sign_up_failed", "username", username, "err", err)
		}
		return protocol.BadRequest(protocol.ErrorBody(msgRegistrationFault))
	}

	if h.log != nil {
		h.log.Infow("user_created", "username", username)
	}
	return protocol.JSON(protocol.StatusBody(msgUserCreated))
}
