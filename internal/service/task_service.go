package service

import (
	"todo_server/internal/models"
	"todo_server/internal/repository"
)

// TaskService acts on the task table on behalf of an authenticated user.
type TaskService struct {
	tasks repository.Tasks
}

func NewTaskService(tasks repository.Tasks) *TaskService {
	return &TaskService{tasks: tasks}
}

func (s *TaskService) Create(content string, owner models.User) models.Task {
	return s.tasks.CreateTask(content, owner.Public())
}

func (s *TaskService) List() []models.Task {
	return s.tasks.ListTasks()
}

// Update returns repository.ErrTaskNotFound or repository.ErrForbidden when
// the task is missing or owned by someone else, in that order of precedence.
func (s *TaskService) Update(id uint64, actor models.User, patch models.TaskPatch) (models.Task, error) {
	return s.tasks.UpdateTask(id, actor.Username, patch)
}

func (s *TaskService) Delete(id uint64, actor models.User) error {
	return s.tasks.DeleteTask(id, actor.Username)
}
