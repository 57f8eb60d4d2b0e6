package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/garyjia/perdin-approval/internal/application/port"
	"github.com/garyjia/perdin-approval/internal/domain/apperr"
	"github.com/garyjia/perdin-approval/internal/domain/auth"
	"github.com/garyjia/perdin-approval/internal/domain/entity"
	"github.com/garyjia/perdin-approval/pkg/utils"
)

// RegisterInput carries a new account
type RegisterInput struct {
	Username string `json:"username" validate:"required,alphanum,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role" validate:"required,oneof=sdm pegawai"`
}

// LoginResult is returned after a successful login
type LoginResult struct {
	Token string       `json:"token"`
	User  *entity.User `json:"user"`
}

// AuthService registers accounts and issues access tokens
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*entity.User, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
}

type authServiceImpl struct {
	userRepo port.UserRepository
	hasher   port.PasswordHasher
	issuer   port.TokenIssuer
	logger   Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo port.UserRepository, hasher port.PasswordHasher, issuer port.TokenIssuer, logger Logger) AuthService {
	return &authServiceImpl{
		userRepo: userRepo,
		hasher:   hasher,
		issuer:   issuer,
		logger:   logger,
	}
}

// Register creates a user; a taken username is a conflict
func (s *authServiceImpl) Register(ctx context.Context, input RegisterInput) (*entity.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Role = strings.ToLower(strings.TrimSpace(input.Role))
	if err := utils.ValidateStruct(input); err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.logger.Error("Failed to hash password", "error", err)
		return nil, apperr.Internal("hash password", err)
	}

	user := &entity.User{
		Username:     input.Username,
		PasswordHash: hash,
		Role:         input.Role,
		CreatedAt:    time.Now(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.Error("Failed to register user", "error", err, "username", user.Username)
		return nil, err
	}

	s.logger.Info("User registered", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// Login verifies credentials and issues a token
func (s *authServiceImpl) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, apperr.Validation("username and password are required")
	}

	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Unauthenticated("invalid username or password")
		}
		return nil, err
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		s.logger.Info("Login rejected", "username", user.Username)
		return nil, apperr.Unauthenticated("invalid username or password")
	}

	role, err := auth.ParseRole(user.Role)
	if err != nil {
		return nil, apperr.Internal("stored role is invalid", err)
	}

	token, err := s.issuer.Issue(auth.Principal{UserID: user.ID, Username: user.Username, Role: role})
	if err != nil {
		s.logger.Error("Failed to issue token", "error", err, "user_id", user.ID)
		return nil, apperr.Internal("issue token", err)
	}

	s.logger.Info("User logged in", "user_id", user.ID)
	return &LoginResult{Token: token, User: user}, nil
}
