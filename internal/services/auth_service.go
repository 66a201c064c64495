package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/models"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/repository"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/pkg/utils"
	"github.com/jackc/pgx/v5"
)

const (
	minPasswordLength = 8
	adminSubjectID    = "admin"
)

type accountStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}

type AuthService struct {
	users             accountStore
	jwtSecret         string
	adminEmail        string
	adminPasswordHash string
}

type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func NewAuthService(users accountStore, jwtSecret, adminEmail, adminPasswordHash string) *AuthService {
	return &AuthService{
		users:             users,
		jwtSecret:         jwtSecret,
		adminEmail:        normalizeEmail(adminEmail),
		adminPasswordHash: adminPasswordHash,
	}
}

func (s *AuthService) Register(ctx context.Context, email, password, role string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidInput
	}
	if len(password) < minPasswordLength {
		return nil, ErrInvalidInput
	}
	if role != models.RoleUser && role != models.RoleWorker {
		return nil, ErrInvalidInput
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{Email: email, PasswordHash: hash, Role: role}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, err
	}

	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !utils.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if user.IsBlocked {
		return nil, ErrAccountBlocked
	}
	return s.issue(user)
}

// AdminLogin checks the single configured admin account. Admins have no row
// in the users table.
func (s *AuthService) AdminLogin(email, password string) (*AuthResult, error) {
	if s.adminEmail == "" || s.adminPasswordHash == "" {
		return nil, ErrAdminNotConfigured
	}
	if normalizeEmail(email) != s.adminEmail || !utils.CheckPassword(password, s.adminPasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(&models.User{ID: adminSubjectID, Email: s.adminEmail, Role: models.RoleAdmin})
}

func (s *AuthService) Me(ctx context.Context, userID, role string) (*models.User, error) {
	if role == models.RoleAdmin {
		return &models.User{ID: userID, Email: s.adminEmail, Role: models.RoleAdmin}, nil
	}
	return s.users.GetByID(ctx, userID)
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := utils.GenerateToken(user.ID, user.Role, s.jwtSecret)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
