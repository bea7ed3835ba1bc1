package handlers

import (
	"context"

	usermodel "github.com/Varun5711/todocal/internal/models/user"
	"github.com/Varun5711/todocal/internal/middleware"
	"github.com/gofiber/fiber/v2"
)

type AccountService interface {
	Register(ctx context.Context, req *usermodel.CreateUserRequest) (*usermodel.AuthResponse, error)
	Login(ctx context.Context, req *usermodel.LoginRequest) (*usermodel.AuthResponse, error)
}

type AuthHandler struct {
	accounts AccountService
}

func NewAuthHandler(accounts AccountService) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}

	resp, err := h.accounts.Register(c.UserContext(), &usermodel.CreateUserRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(AuthResponse{
		Success: true,
		Token:   resp.Token,
		User:    resp.User.Public(),
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}

	resp, err := h.accounts.Login(c.UserContext(), &usermodel.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(AuthResponse{
		Success: true,
		Token:   resp.Token,
		User:    resp.User.Public(),
	})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return fiber.ErrUnauthorized
	}

	return c.JSON(MeResponse{
		Success: true,
		User:    user.Public(),
	})
}
