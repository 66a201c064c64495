package services

import "errors"

var (
	ErrForbidden              = errors.New("forbidden")
	ErrConflict               = errors.New("conflict")
	ErrInvalidStatus          = errors.New("invalid status")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrInvalidInput           = errors.New("invalid input")
	ErrWorkerNotFound         = errors.New("worker not found")
	ErrUserNotFound           = errors.New("user not found")
	ErrBookingNotFound        = errors.New("booking not found")
	ErrComplaintNotFound      = errors.New("complaint not found")
	ErrWorkerUnavailable      = errors.New("worker unavailable")
	ErrAccountBlocked         = errors.New("account blocked")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrAdminNotConfigured     = errors.New("admin login not configured")
	ErrStorageNotConfigured   = errors.New("storage not configured")
)
