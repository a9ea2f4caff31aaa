package repository

import (
	"sort"
	"sync"

	"todo_server/internal/models"
)

// MemoryStore is the process-wide user and task state.
//
// Each table has its own lock. The only operation that needs two of them is
// CreateTask, and it always takes tasksMu before idMu.
type MemoryStore struct {
	usersMu sync.RWMutex
	users   map[string]models.User

	tasksMu sync.RWMutex
	tasks   map[uint64]models.Task

	idMu   sync.Mutex
	nextID uint64
}

var (
	_ Users = (*MemoryStore)(nil)
	_ Tasks = (*MemoryStore)(nil)
)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:  make(map[string]models.User),
		tasks:  make(map[uint64]models.Task),
		nextID: 1,
	}
}

// CreateUser inserts u unless the username is taken.
func (s *MemoryStore) CreateUser(u models.User) error {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()
	if _, ok := s.users[u.Username]; ok {
		return ErrUserExists
	}
	s.users[u.Username] = u
	return nil
}

func (s *MemoryStore) GetUser(username string) (models.User, bool) {
	s.usersMu.RLock()
	defer s.usersMu.RUnlock()
	u, ok := s.users[username]
	return u, ok
}

// CreateTask assigns the next id and stores a new, uncompleted task.
func (s *MemoryStore) CreateTask(content string, owner models.PublicUser) models.Task {
	s.tasksMu.Lock()
	defer s.tasksMu.Unlock()
	s.idMu.Lock()
	defer s.idMu.Unlock()

	t := models.Task{ID: s.nextID, Content: content, Owner: owner}
	s.tasks[t.ID] = t
	s.nextID++
	return t
}

// ListTasks returns a snapshot ordered by id.
func (s *MemoryStore) ListTasks() []models.Task {
	s.tasksMu.RLock()
	out := make([]models.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t)
	}
	s.tasksMu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// UpdateTask applies patch on behalf of actor. Existence is checked before
// ownership, so probing a missing id always reports ErrTaskNotFound.
func (s *MemoryStore) UpdateTask(id uint64, actor string, patch models.TaskPatch) (models.Task, error) {
	s.tasksMu.Lock()
	defer s.tasksMu.Unlock()

	t, err := s.ownedLocked(id, actor)
	if err != nil {
		return models.Task{}, err
	}
	if patch.Content != nil {
		t.Content = *patch.Content
	}
	if patch.Completed != nil {
		t.Completed = *patch.Completed
	}
	s.tasks[id] = t
	return t, nil
}

// DeleteTask removes the task on behalf of actor with the same checks as UpdateTask.
func (s *MemoryStore) DeleteTask(id uint64, actor string) error {
	s.tasksMu.Lock()
	defer s.tasksMu.Unlock()

	if _, err := s.ownedLocked(id, actor); err != nil {
		return err
	}
	delete(s.tasks, id)
	return nil
}

// ownedLocked must be called with tasksMu held.
func (s *MemoryStore) ownedLocked(id uint64, actor string) (models.Task, error) {
	t, ok := s.tasks[id]
	if !ok {
		return models.Task{}, ErrTaskNotFound
	}
	if t.Owner.Username != actor {
		return models.Task{}, ErrForbidden
	}
	return t, nil
}
