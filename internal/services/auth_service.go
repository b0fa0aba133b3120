package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"event-ledger-service/internal/auth"
	"event-ledger-service/internal/database"
	"event-ledger-service/internal/models"
	"event-ledger-service/internal/repositories"
)

type AuthService struct {
	db        *sql.DB
	adminRepo repositories.AdminRepository
	tokens    *auth.TokenManager
}

func NewAuthService(db *sql.DB, adminRepo repositories.AdminRepository, tokens *auth.TokenManager) *AuthService {
	return &AuthService{db: db, adminRepo: adminRepo, tokens: tokens}
}

type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResult struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	Admin     auth.Principal `json:"admin"`
}

type CreateAdminInput struct {
	Username    string   `json:"username" validate:"required,min=3,max=100"`
	Password    string   `json:"password" validate:"required,min=8"`
	IsSuper     bool     `json:"is_super"`
	Permissions []string `json:"permissions"`
}

// Login checks the credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	if err := validateStruct(input).orNil(); err != nil {
		return nil, err
	}

	admin, err := s.adminRepo.GetAdminByUsername(ctx, input.Username)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	if !auth.CheckPassword(input.Password, admin.PasswordHash) {
		return nil, ErrUnauthorized
	}

	principal := auth.Principal{
		AdminID:     admin.ID,
		Username:    admin.Username,
		IsSuper:     admin.IsSuper,
		Permissions: admin.Permissions,
	}
	if admin.IsSuper {
		principal.Permissions = slices.Clone(models.AllPermissions)
	}

	token, expiresAt, err := s.tokens.Issue(principal)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, Admin: principal}, nil
}

// Authenticate resolves a bearer token to its principal.
func (s *AuthService) Authenticate(token string) (auth.Principal, error) {
	p, err := s.tokens.Parse(token)
	if err != nil {
		return auth.Principal{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return p, nil
}

func (s *AuthService) CreateAdmin(ctx context.Context, input CreateAdminInput) (*models.Admin, error) {
	verr := validateStruct(input)
	for _, p := range input.Permissions {
		if !slices.Contains(models.AllPermissions, p) {
			verr.add("permissions", fmt.Sprintf("unknown permission %q", p))
		}
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	hashed, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	permissions := slices.Clone(input.Permissions)
	if input.IsSuper {
		permissions = slices.Clone(models.AllPermissions)
	}
	slices.Sort(permissions)
	permissions = slices.Compact(permissions)

	admin := &models.Admin{
		Username:     input.Username,
		PasswordHash: hashed,
		IsSuper:      input.IsSuper,
		Permissions:  permissions,
	}
	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.adminRepo.InsertAdmin(ctx, tx, admin)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}
	return admin, nil
}
