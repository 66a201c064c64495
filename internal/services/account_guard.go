package services

import (
	"context"
	"errors"

	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/models"
	"github.com/jackc/pgx/v5"
)

type accountReader interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// ensureActive refuses writes from accounts blocked after their token was
// issued. A nil reader skips the check.
func ensureActive(ctx context.Context, accounts accountReader, userID string) error {
	if accounts == nil {
		return nil
	}
	user, err := accounts.GetByID(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrForbidden
	}
	if err != nil {
		return err
	}
	if user.IsBlocked {
		return ErrAccountBlocked
	}
	return nil
}
