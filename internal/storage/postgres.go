package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Varun5711/todocal/internal/database"
	"github.com/Varun5711/todocal/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type TodoStorage struct {
	db *database.DBManager
}

func NewTodoStorage(db *database.DBManager) *TodoStorage {
	return &TodoStorage{db: db}
}

func (s *TodoStorage) CreateTodo(ctx context.Context, todo *models.Todo) (*models.Todo, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if todo.ID == "" {
		todo.ID = uuid.New().String()
	}

	query := `
		INSERT INTO todos (` + todoColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + todoColumns

	created, err := scanTodo(s.db.Write().QueryRow(ctx, query,
		todo.ID,
		todo.UserID,
		todo.Title,
		todo.Completed,
		todo.DueDate,
		todo.CompletedAt,
		string(todo.Priority),
		todo.Category,
		todo.CreatedAt,
		todo.UpdatedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}

	return created, nil
}

func (s *TodoStorage) ListTodos(ctx context.Context, filter models.TodoFilter) ([]*models.Todo, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	where, args := buildTodoWhere(filter)
	query := `SELECT ` + todoColumns + ` FROM todos WHERE ` + where + ` ` + todoOrder

	// Lists follow writes from the same client, so they read the primary.
	rows, err := s.db.Write().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	defer rows.Close()

	todos := make([]*models.Todo, 0)
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		todos = append(todos, todo)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return todos, nil
}

// ToggleTodo flips completion in one statement so concurrent toggles never
// leave completed and completed_at out of step.
func (s *TodoStorage) ToggleTodo(ctx context.Context, id, userID string, now time.Time) (*models.Todo, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		UPDATE todos
		SET completed = NOT completed,
			completed_at = CASE WHEN completed THEN NULL ELSE $3::timestamptz END,
			updated_at = $3
		WHERE id = $1 AND user_id = $2
		RETURNING ` + todoColumns

	return s.queryOne(ctx, "toggle", query, id, userID, now)
}

func (s *TodoStorage) UpdateTodo(ctx context.Context, id, userID string, patch models.TodoPatch, now time.Time) (*models.Todo, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if patch.IsEmpty() {
		query := `SELECT ` + todoColumns + ` FROM todos WHERE id = $1 AND user_id = $2`
		return s.queryOne(ctx, "get", query, id, userID)
	}

	set, setArgs := buildTodoSet(patch, 2)
	query := `
		UPDATE todos
		SET ` + set + fmt.Sprintf(", updated_at = $%d", len(setArgs)+3) + `
		WHERE id = $1 AND user_id = $2
		RETURNING ` + todoColumns

	args := append([]any{id, userID}, setArgs...)
	return s.queryOne(ctx, "update", query, append(args, now)...)
}

func (s *TodoStorage) DeleteTodo(ctx context.Context, id, userID string) (*models.Todo, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `DELETE FROM todos WHERE id = $1 AND user_id = $2 RETURNING ` + todoColumns
	return s.queryOne(ctx, "delete", query, id, userID)
}

func (s *TodoStorage) CountCreatedBetween(ctx context.Context, userID string, r models.TimeRange) (int64, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	b := &whereBuilder{}
	b.add("user_id = %s", userID)
	b.addRange("created_at", r)

	query := `SELECT COUNT(*), COUNT(*) FILTER (WHERE completed) FROM todos WHERE ` + b.String()

	var total, completed int64
	if err := s.db.Read().QueryRow(ctx, query, b.args...).Scan(&total, &completed); err != nil {
		return 0, 0, fmt.Errorf("failed to count todos: %w", err)
	}

	return total, completed, nil
}

func (s *TodoStorage) CountOverdue(ctx context.Context, userID string, now time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		SELECT COUNT(*)
		FROM todos
		WHERE user_id = $1 AND completed = FALSE AND due_date < $2
	`

	var count int64
	if err := s.db.Read().QueryRow(ctx, query, userID, now).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count overdue todos: %w", err)
	}

	return count, nil
}

func (s *TodoStorage) queryOne(ctx context.Context, op, query string, args ...any) (*models.Todo, error) {
	todo, err := scanTodo(s.db.Write().QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to %s todo: %w", op, err)
	}
	return todo, nil
}

func scanTodo(row pgx.Row) (*models.Todo, error) {
	var todo models.Todo
	var priority string

	err := row.Scan(
		&todo.ID,
		&todo.UserID,
		&todo.Title,
		&todo.Completed,
		&todo.DueDate,
		&todo.CompletedAt,
		&priority,
		&todo.Category,
		&todo.CreatedAt,
		&todo.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	todo.Priority = models.Priority(priority)
	todo.DueDate = utcPtr(todo.DueDate)
	todo.CompletedAt = utcPtr(todo.CompletedAt)
	todo.CreatedAt = todo.CreatedAt.UTC()
	todo.UpdatedAt = todo.UpdatedAt.UTC()
	return &todo, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
