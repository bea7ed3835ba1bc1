package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/Varun5711/todocal/internal/apperr"
	"github.com/Varun5711/todocal/internal/auth"
	"github.com/Varun5711/todocal/internal/logger"
	usermodel "github.com/Varun5711/todocal/internal/models/user"
	"github.com/Varun5711/todocal/internal/storage"
	"golang.org/x/sync/singleflight"
)

const (
	minPasswordLength = 6
	userCachePrefix   = "user:"

	MsgNoToken      = "No token provided. Please login to access this resource."
	MsgTokenExpired = "Token expired. Please login again."
	MsgTokenInvalid = "Invalid token. Please login again."
	MsgUserNotFound = "User not found. Token is invalid."
	MsgAuthFailed   = "Authentication failed. Please try again."
)

// UserCache stores users by id. Users never change after registration, so
// entries are never invalidated.
type UserCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}) error
}

type UserService struct {
	users  storage.UserStore
	hasher *auth.PasswordHasher
	jwt    *auth.JWTManager
	cache  UserCache
	log    *logger.Logger

	lookups singleflight.Group
}

// NewUserService accepts a nil cache.
func NewUserService(users storage.UserStore, hasher *auth.PasswordHasher, jwt *auth.JWTManager, cache UserCache, log *logger.Logger) *UserService {
	return &UserService{
		users:  users,
		hasher: hasher,
		jwt:    jwt,
		cache:  cache,
		log:    log,
	}
}

func (s *UserService) Register(ctx context.Context, req *usermodel.CreateUserRequest) (*usermodel.AuthResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if name == "" || email == "" || req.Password == "" {
		return nil, apperr.Validation("Please provide name, email, and password")
	}
	if len(req.Password) < minPasswordLength {
		return nil, apperr.Validation("Password must be at least 6 characters long")
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, apperr.Validation("Please provide a valid email")
	}
	if len(req.Password) > auth.MaxPasswordBytes {
		return nil, apperr.Validation("Password must be at most 72 characters long")
	}

	existing, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Internal("Failed to register user", err)
	}
	if existing != nil {
		return nil, apperr.Conflict("User with this email already exists")
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperr.Internal("Failed to register user", err)
	}

	user, err := s.users.CreateUser(ctx, &usermodel.CreateUserRequest{
		Email:    email,
		Name:     name,
		Password: req.Password,
	}, passwordHash)
	if errors.Is(err, storage.ErrEmailTaken) {
		return nil, apperr.Conflict("User with this email already exists")
	}
	if err != nil {
		return nil, apperr.Internal("Failed to register user", err)
	}

	s.log.Info("registered user %s", user.ID)
	return s.issue(user)
}

func (s *UserService) Login(ctx context.Context, req *usermodel.LoginRequest) (*usermodel.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, apperr.Validation("Please provide email and password")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Internal("Failed to login", err)
	}
	if user == nil {
		return nil, apperr.Unauthenticated("Invalid email or password")
	}

	if err := s.hasher.Check(user.PasswordHash, req.Password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			s.log.Warn("password check failed for user %s: %v", user.ID, err)
		}
		return nil, apperr.Unauthenticated("Invalid email or password")
	}

	return s.issue(user)
}

// Authenticate resolves a bearer token to its user. An empty token means
// the request carried none.
func (s *UserService) Authenticate(ctx context.Context, token string) (*usermodel.User, error) {
	if token == "" {
		return nil, apperr.Unauthenticated(MsgNoToken)
	}

	claims, err := s.jwt.ValidateToken(token)
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return nil, apperr.Unauthenticated(MsgTokenExpired)
	case err != nil:
		return nil, apperr.Unauthenticated(MsgTokenInvalid)
	}

	user, err := s.GetUser(ctx, claims.UserID)
	if err != nil {
		return nil, apperr.Internal(MsgAuthFailed, err)
	}
	if user == nil {
		return nil, apperr.Unauthenticated(MsgUserNotFound)
	}

	return user, nil
}

// GetUser returns (nil, nil) for an unknown id.
func (s *UserService) GetUser(ctx context.Context, userID string) (*usermodel.User, error) {
	key := userCachePrefix + userID

	if s.cache != nil {
		var cached usermodel.User
		found, err := s.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			s.log.Warn("user cache read failed: %v", err)
		}
		if found {
			return &cached, nil
		}
	}

	// Concurrent misses for one user share a single store read.
	val, err, _ := s.lookups.Do(key, func() (interface{}, error) {
		return s.users.GetUserByID(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	user, ok := val.(*usermodel.User)
	if !ok || user == nil {
		return nil, nil
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, user); err != nil {
			s.log.Warn("user cache write failed: %v", err)
		}
	}

	return user, nil
}

func (s *UserService) issue(user *usermodel.User) (*usermodel.AuthResponse, error) {
	token, expiresAt, err := s.jwt.GenerateToken(user.ID)
	if err != nil {
		return nil, apperr.Internal("Failed to issue token", err)
	}

	return &usermodel.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}
