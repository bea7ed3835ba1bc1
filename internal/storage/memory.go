package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Varun5711/todocal/internal/models"
	usermodel "github.com/Varun5711/todocal/internal/models/user"
	"github.com/google/uuid"
)

// MemoryUserStorage is an in-process UserStore for tests and local runs.
type MemoryUserStorage struct {
	mu      sync.RWMutex
	users   map[string]*usermodel.User
	byEmail map[string]string
}

func NewMemoryUserStorage() *MemoryUserStorage {
	return &MemoryUserStorage{
		users:   make(map[string]*usermodel.User),
		byEmail: make(map[string]string),
	}
}

func (s *MemoryUserStorage) CreateUser(_ context.Context, req *usermodel.CreateUserRequest, passwordHash string) (*usermodel.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(req.Email)
	if _, exists := s.byEmail[email]; exists {
		return nil, ErrEmailTaken
	}

	now := time.Now().UTC()
	user := &usermodel.User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         req.Name,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	s.users[user.ID] = user
	s.byEmail[email] = user.ID

	copied := *user
	return &copied, nil
}

func (s *MemoryUserStorage) GetUserByEmail(_ context.Context, email string) (*usermodel.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.byEmail[strings.ToLower(email)]
	if !exists {
		return nil, nil
	}

	copied := *s.users[id]
	return &copied, nil
}

func (s *MemoryUserStorage) GetUserByID(_ context.Context, userID string) (*usermodel.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[userID]
	if !exists {
		return nil, nil
	}

	copied := *user
	return &copied, nil
}

// MemoryTodoStorage is an in-process TodoStore with the same ordering and
// ownership rules as TodoStorage.
type MemoryTodoStorage struct {
	mu    sync.RWMutex
	todos map[string]*models.Todo
}

func NewMemoryTodoStorage() *MemoryTodoStorage {
	return &MemoryTodoStorage{
		todos: make(map[string]*models.Todo),
	}
}

func (s *MemoryTodoStorage) CreateTodo(_ context.Context, todo *models.Todo) (*models.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := cloneTodo(todo)
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	todo.ID = stored.ID
	s.todos[stored.ID] = stored

	return cloneTodo(stored), nil
}

func (s *MemoryTodoStorage) ListTodos(_ context.Context, filter models.TodoFilter) ([]*models.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	todos := make([]*models.Todo, 0)
	for _, todo := range s.todos {
		if filter.Matches(todo) {
			todos = append(todos, cloneTodo(todo))
		}
	}

	sortTodos(todos)
	return todos, nil
}

func (s *MemoryTodoStorage) ToggleTodo(_ context.Context, id, userID string, now time.Time) (*models.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	todo := s.owned(id, userID)
	if todo == nil {
		return nil, nil
	}

	todo.Completed = !todo.Completed
	if todo.Completed {
		completedAt := now
		todo.CompletedAt = &completedAt
	} else {
		todo.CompletedAt = nil
	}
	todo.UpdatedAt = now

	return cloneTodo(todo), nil
}

func (s *MemoryTodoStorage) UpdateTodo(_ context.Context, id, userID string, patch models.TodoPatch, now time.Time) (*models.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	todo := s.owned(id, userID)
	if todo == nil {
		return nil, nil
	}

	if !patch.IsEmpty() {
		patch.Apply(todo)
		todo.DueDate = copyTime(todo.DueDate)
		todo.Category = copyString(todo.Category)
		todo.UpdatedAt = now
	}

	return cloneTodo(todo), nil
}

func (s *MemoryTodoStorage) DeleteTodo(_ context.Context, id, userID string) (*models.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	todo := s.owned(id, userID)
	if todo == nil {
		return nil, nil
	}

	delete(s.todos, id)
	return todo, nil
}

func (s *MemoryTodoStorage) CountCreatedBetween(_ context.Context, userID string, r models.TimeRange) (int64, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total, completed int64
	for _, todo := range s.todos {
		if todo.UserID != userID || !r.Contains(todo.CreatedAt) {
			continue
		}
		total++
		if todo.Completed {
			completed++
		}
	}

	return total, completed, nil
}

func (s *MemoryTodoStorage) CountOverdue(_ context.Context, userID string, now time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, todo := range s.todos {
		if todo.UserID == userID && !todo.Completed && todo.DueDate != nil && todo.DueDate.Before(now) {
			count++
		}
	}

	return count, nil
}

func (s *MemoryTodoStorage) owned(id, userID string) *models.Todo {
	todo, exists := s.todos[id]
	if !exists || todo.UserID != userID {
		return nil
	}
	return todo
}

// sortTodos orders by due date with missing dates first, then newest
// created, then id.
func sortTodos(todos []*models.Todo) {
	sort.SliceStable(todos, func(i, j int) bool {
		a, b := todos[i], todos[j]

		switch {
		case a.DueDate == nil && b.DueDate != nil:
			return true
		case a.DueDate != nil && b.DueDate == nil:
			return false
		case a.DueDate != nil && !a.DueDate.Equal(*b.DueDate):
			return a.DueDate.Before(*b.DueDate)
		}

		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

func cloneTodo(t *models.Todo) *models.Todo {
	copied := *t
	copied.DueDate = copyTime(t.DueDate)
	copied.CompletedAt = copyTime(t.CompletedAt)
	copied.Category = copyString(t.Category)
	return &copied
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
