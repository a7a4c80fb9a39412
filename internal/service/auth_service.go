package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexedwards/argon2id"

	"github.com/parkingly/parkingly-server/internal/domain"
	"github.com/parkingly/parkingly-server/internal/repository"
	"github.com/parkingly/parkingly-server/pkg/auth"
	"github.com/parkingly/parkingly-server/pkg/logger"
)

type AuthService interface {
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error)
}

type authService struct {
	userRepo  repository.UserRepository
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthService(userRepo repository.UserRepository, jwtSecret string, tokenTTL time.Duration) AuthService {
	return &authService{userRepo: userRepo, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

func (s *authService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.User, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := argon2id.CreateHash(req.Password, argon2id.DefaultParams)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Self-service registration only ever creates regular users; the admin
	// account is seeded at startup.
	user, err := s.userRepo.Create(ctx, req.Name, req.Email, hash, auth.RoleUser)
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "User registered", "user_id", user.ID, "email", user.Email)
	return user, nil
}

func (s *authService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrInvalidCredentials
	}

	match, err := argon2id.ComparePasswordAndHash(req.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !match {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := auth.NewAccessToken(user.ID, user.Email, user.Role, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	logger.InfoContext(ctx, "User logged in", "user_id", user.ID, "role", user.Role)
	return &domain.LoginResponse{Token: token, User: user}, nil
}

// SeedAdmin ensures the operator account from configuration exists. Called
// once at startup; a no-op when the account is already present.
func SeedAdmin(ctx context.Context, userRepo repository.UserRepository, name, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	existing, err := userRepo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to look up admin account: %w", err)
	}
	if existing != nil {
		return nil
	}

	hash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	if _, err := userRepo.Create(ctx, name, email, hash, auth.RoleAdmin); err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}

	logger.InfoContext(ctx, "Admin account seeded", "email", email)
	return nil
}
