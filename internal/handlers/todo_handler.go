package handlers

import (
	"context"

	"github.com/Varun5711/todocal/internal/filter"
	"github.com/Varun5711/todocal/internal/middleware"
	"github.com/Varun5711/todocal/internal/models"
	"github.com/Varun5711/todocal/internal/validation"
	"github.com/gofiber/fiber/v2"
)

type TodoService interface {
	List(ctx context.Context, userID string, params filter.Params) ([]*models.Todo, error)
	MonthlyStats(ctx context.Context, userID, month string) (*models.MonthlyStats, error)
	Create(ctx context.Context, userID string, payload validation.TodoPayload) (*models.Todo, error)
	Toggle(ctx context.Context, userID, id string) (*models.Todo, error)
	Update(ctx context.Context, userID, id string, payload validation.TodoPayload) (*models.Todo, error)
	Delete(ctx context.Context, userID, id string) (*models.Todo, error)
}

// TodoHandler serves /api/todos. Every route sits behind AuthMiddleware.
type TodoHandler struct {
	todos TodoService
}

func NewTodoHandler(todos TodoService) *TodoHandler {
	return &TodoHandler{todos: todos}
}

func (h *TodoHandler) List(c *fiber.Ctx) error {
	var params filter.Params
	if err := c.QueryParser(&params); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query string")
	}

	todos, err := h.todos.List(c.UserContext(), userID(c), params)
	if err != nil {
		return err
	}
	return c.JSON(todos)
}

func (h *TodoHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.todos.MonthlyStats(c.UserContext(), userID(c), c.Params("month"))
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

func (h *TodoHandler) Create(c *fiber.Ctx) error {
	var payload validation.TodoPayload
	if err := decodeBody(c, &payload); err != nil {
		return err
	}

	todo, err := h.todos.Create(c.UserContext(), userID(c), payload)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(todo)
}

func (h *TodoHandler) Toggle(c *fiber.Ctx) error {
	id, err := todoID(c)
	if err != nil {
		return err
	}

	todo, err := h.todos.Toggle(c.UserContext(), userID(c), id)
	if err != nil {
		return err
	}
	return c.JSON(todo)
}

func (h *TodoHandler) Update(c *fiber.Ctx) error {
	id, err := todoID(c)
	if err != nil {
		return err
	}

	var payload validation.TodoPayload
	if err := decodeBody(c, &payload); err != nil {
		return err
	}

	todo, err := h.todos.Update(c.UserContext(), userID(c), id, payload)
	if err != nil {
		return err
	}
	return c.JSON(todo)
}

func (h *TodoHandler) Delete(c *fiber.Ctx) error {
	id, err := todoID(c)
	if err != nil {
		return err
	}

	todo, err := h.todos.Delete(c.UserContext(), userID(c), id)
	if err != nil {
		return err
	}
	return c.JSON(DeleteResponse{
		Message: "Todo deleted successfully",
		Todo:    todo,
	})
}

func userID(c *fiber.Ctx) string {
	if user := middleware.CurrentUser(c); user != nil {
		return user.ID
	}
	return ""
}
