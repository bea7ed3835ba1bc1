package service

import (
	"context"
	"math"
	"time"

	"github.com/Varun5711/todocal/internal/apperr"
	"github.com/Varun5711/todocal/internal/filter"
	"github.com/Varun5711/todocal/internal/models"
	"github.com/Varun5711/todocal/internal/storage"
	"github.com/Varun5711/todocal/internal/validation"
)

const MsgTodoNotFound = "Todo not found"

type TodoService struct {
	todos storage.TodoStore
	now   func() time.Time
}

// NewTodoService uses time.Now when clock is nil.
func NewTodoService(todos storage.TodoStore, clock func() time.Time) *TodoService {
	if clock == nil {
		clock = time.Now
	}
	return &TodoService{todos: todos, now: clock}
}

func (s *TodoService) List(ctx context.Context, userID string, params filter.Params) ([]*models.Todo, error) {
	f, err := filter.Build(userID, params)
	if err != nil {
		return nil, err
	}

	todos, err := s.todos.ListTodos(ctx, f)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch todos", err)
	}
	return todos, nil
}

// MonthlyStats counts todos created in month. Overdue is not limited to
// the month: it counts every pending todo of the user already past due.
func (s *TodoService) MonthlyStats(ctx context.Context, userID, month string) (*models.MonthlyStats, error) {
	year, m, err := validation.ParseMonth(month)
	if err != nil {
		return nil, apperr.Validation("Month must be in YYYY-MM format", apperr.FieldError{
			Field:    "month",
			Message:  "Month must be in YYYY-MM format",
			Value:    month,
			Location: "params",
		})
	}

	total, completed, err := s.todos.CountCreatedBetween(ctx, userID, filter.MonthRange(year, m))
	if err != nil {
		return nil, apperr.Internal("Failed to fetch statistics", err)
	}

	overdue, err := s.todos.CountOverdue(ctx, userID, s.now().UTC())
	if err != nil {
		return nil, apperr.Internal("Failed to fetch statistics", err)
	}

	return &models.MonthlyStats{
		Month:          filter.FormatMonth(year, m),
		TotalTodos:     total,
		CompletedTodos: completed,
		PendingTodos:   total - completed,
		OverdueTodos:   overdue,
		CompletionRate: CompletionRate(completed, total),
	}, nil
}

// CompletionRate is the completed share as a whole percentage, rounded half
// away from zero, and 0 when there is nothing to complete.
func CompletionRate(completed, total int64) int64 {
	if total == 0 {
		return 0
	}
	return int64(math.Round(float64(completed) * 100 / float64(total)))
}

func (s *TodoService) Create(ctx context.Context, userID string, payload validation.TodoPayload) (*models.Todo, error) {
	draft, errs := validation.ValidateCreate(payload)
	if len(errs) > 0 {
		return nil, apperr.Validation("Validation failed", errs...)
	}

	now := s.now().UTC()
	todo, err := s.todos.CreateTodo(ctx, &models.Todo{
		UserID:    userID,
		Title:     draft.Title,
		DueDate:   draft.DueDate,
		Priority:  draft.Priority,
		Category:  draft.Category,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, apperr.Internal("Failed to create todo", err)
	}
	return todo, nil
}

func (s *TodoService) Toggle(ctx context.Context, userID, id string) (*models.Todo, error) {
	todo, err := s.todos.ToggleTodo(ctx, id, userID, s.now().UTC())
	return found(todo, err, "Failed to update todo")
}

func (s *TodoService) Update(ctx context.Context, userID, id string, payload validation.TodoPayload) (*models.Todo, error) {
	patch, errs := validation.ValidateUpdate(payload)
	if len(errs) > 0 {
		return nil, apperr.Validation("Validation failed", errs...)
	}

	todo, err := s.todos.UpdateTodo(ctx, id, userID, patch, s.now().UTC())
	return found(todo, err, "Failed to update todo")
}

func (s *TodoService) Delete(ctx context.Context, userID, id string) (*models.Todo, error) {
	todo, err := s.todos.DeleteTodo(ctx, id, userID)
	return found(todo, err, "Failed to delete todo")
}

// found maps a store miss to NotFound, which is also what another user's
// todo looks like.
func found(todo *models.Todo, err error, failure string) (*models.Todo, error) {
	if err != nil {
		return nil, apperr.Internal(failure, err)
	}
	if todo == nil {
		return nil, apperr.NotFound(MsgTodoNotFound)
	}
	return todo, nil
}
