package storage

import (
	"context"
	"errors"
	"time"

	"github.com/Varun5711/todocal/internal/models"
	usermodel "github.com/Varun5711/todocal/internal/models/user"
)

var ErrEmailTaken = errors.New("email already registered")

// Lookups return (nil, nil) when nothing matches.

type UserStore interface {
	CreateUser(ctx context.Context, req *usermodel.CreateUserRequest, passwordHash string) (*usermodel.User, error)
	GetUserByEmail(ctx context.Context, email string) (*usermodel.User, error)
	GetUserByID(ctx context.Context, userID string) (*usermodel.User, error)
}

// TodoStore scopes every single-todo operation by both id and owner so one
// user can never observe or touch another user's todos.
type TodoStore interface {
	CreateTodo(ctx context.Context, todo *models.Todo) (*models.Todo, error)
	ListTodos(ctx context.Context, filter models.TodoFilter) ([]*models.Todo, error)
	ToggleTodo(ctx context.Context, id, userID string, now time.Time) (*models.Todo, error)
	UpdateTodo(ctx context.Context, id, userID string, patch models.TodoPatch, now time.Time) (*models.Todo, error)
	DeleteTodo(ctx context.Context, id, userID string) (*models.Todo, error)
	CountCreatedBetween(ctx context.Context, userID string, r models.TimeRange) (total, completed int64, err error)
	CountOverdue(ctx context.Context, userID string, now time.Time) (int64, error)
}
