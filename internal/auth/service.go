// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tharavad/dues-api/internal/core"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAdminExists        = errors.New("admin already exists")
)

type Service struct {
	repo AdminRepository
	jwt  *JWTManager
}

func NewService(repo AdminRepository, jwt *JWTManager) *Service {
	return &Service{
		repo: repo,
		jwt:  jwt,
	}
}

// Login reports ErrInvalidCredentials for both an unknown username and a
// wrong password, and spends one hash computation either way.
func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
) (*LoginResponse, error) {
	ctx, span := core.StartSpan(ctx, "auth.Login")
	defer span.End()

	admin, err := s.repo.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention
			_, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
			core.AddSpanEvent(ctx, "login.rejected")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get admin: %w", err)
	}

	valid, err := core.VerifyPasswordTimingSafe(req.Password, &admin.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		core.AddSpanEvent(ctx, "login.rejected")
		return nil, ErrInvalidCredentials
	}

	issued, err := s.jwt.CreateAccessToken(admin)
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	core.AddSpanEvent(ctx, "login.accepted",
		attribute.String("admin.id", admin.ID),
	)

	return &LoginResponse{
		Token:     issued.Token,
		TokenType: "Bearer",
		ExpiresAt: issued.ExpiresAt,
		Admin:     ToAdminResponse(admin),
	}, nil
}

func (s *Service) GetCurrentAdmin(
	ctx context.Context,
	adminID string,
) (*AdminResponse, error) {
	admin, err := s.repo.GetByID(ctx, adminID)
	if err != nil {
		return nil, err
	}

	resp := ToAdminResponse(admin)
	return &resp, nil
}

// CreateAdmin is the one-time seed operation. An existing username is
// reported as ErrAdminExists and left untouched.
func (s *Service) CreateAdmin(
	ctx context.Context,
	username, password string,
) (*Admin, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, core.ValidationError("username and password are required")
	}

	passwordHash, err := core.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	admin := &Admin{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, admin); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrAdminExists
		}
		return nil, fmt.Errorf("create admin: %w", err)
	}

	return admin, nil
}
