package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"todo_server/internal/models"
	"todo_server/internal/protocol"
	"todo_server/internal/repository"
)

// routeTasks is the authenticated sub-dispatch.
func (h *Handler) routeTasks(req protocol.Request, user models.User) (protocol.Response, error) {
	switch {
	case req.Method == methodPost && req.Path == pathTasks:
		return h.createTask(req, user), nil
	case req.Method == methodGet && req.Path == pathTasks:
		return protocol.JSON(h.services.List()), nil
	case req.Method == methodPut && strings.HasPrefix(req.Path, pathTasksPrefix):
		id, err := parseTaskID(req.Path)
		if err != nil {
			return protocol.BadRequest(protocol.ErrorBody(msgInvalidTaskID)), err
		}
		return h.updateTask(req, id, user), nil
	case req.Method == methodDelete && strings.HasPrefix(req.Path, pathTasksPrefix):
		id, err := parseTaskID(req.Path)
		if err != nil {
			return protocol.BadRequest(protocol.ErrorBody(msgInvalidTaskID)), err
		}
		return h.deleteTask(id, user), nil
	default:
		return protocol.NotFound(), nil
	}
}

func parseTaskID(path string) (uint64, error) {
	raw := strings.TrimPrefix(path, pathTasksPrefix)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTaskID, raw)
	}
	return id, nil
}

func (h *Handler) createTask(req protocol.Request, user models.User) protocol.Response {
	content, ok := req.StringField("content")
	if !ok || content == "" {
		return protocol.BadRequest(protocol.ErrorBody(msgEmptyBody))
	}
	task := h.services.Create(content, user)
	if h.log != nil {
		h.log.Infow("task_created", "id", task.ID, "owner", user.Username)
	}
	return protocol.JSON(protocol.StatusBody(msgTaskCreated))
}

// updateTask applies whichever of content/completed the body carries.
func (h *Handler) updateTask(req protocol.Request, id uint64, user models.User) protocol.Response {
	if req.Body == "" {
		return protocol.BadRequest(protocol.ErrorBody(msgEmptyBody))
	}

	var patch models.TaskPatch
	if content, ok := req.StringField("content"); ok {
		patch.Content = &content
	}
	if completed, ok := req.BoolField("completed"); ok {
		patch.Completed = &completed
	}

	if _, err := h.services.Update(id, user, patch); err != nil {
		return h.taskError(err, id, user)
	}
	return protocol.JSON(protocol.StatusBody(msgTaskUpdated))
}

func (h *Handler) deleteTask(id uint64, user models.User) protocol.Response {
	if err := h.services.Delete(id, user); err != nil {
		return h.taskError(err, id, user)
	}
	return protocol.JSON(protocol.StatusBody(msgTaskDeleted))
}

// taskError maps store errors; anything unexpected reads as not found.
func (h *Handler) taskError(err error, id uint64, user models.User) protocol.Response {
	if errors.Is(err, repository.ErrForbidden) {
		if h.log != nil {
			h.log.Infow("task_owner_mismatch", "id", id, "user", user.Username)
		}
		return h.policy.ownershipViolation()
	}
	if !errors.Is(err, repository.ErrTaskNotFound) && h.log != nil {
		h.log.Errorw("task_operation_failed", "id", id, "err", err)
	}
	return protocol.NotFound()
}
