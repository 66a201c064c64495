package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/models"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/repository"
	"github.com/jackc/pgx/v5"
)

const (
	maxComplaintSubjectLength     = 200
	maxComplaintDescriptionLength = 4000
)

type complaintStore interface {
	Create(ctx context.Context, input repository.CreateComplaintInput) (*models.Complaint, error)
	List(ctx context.Context, status string, limit, offset int) ([]models.Complaint, int, error)
	Resolve(ctx context.Context, id, status string, note *string) (*models.Complaint, error)
}

type ComplaintService struct {
	complaints complaintStore
	bookings   bookingReader
	accounts   accountReader
}

func NewComplaintService(complaints complaintStore, bookings bookingReader, accounts accountReader) *ComplaintService {
	return &ComplaintService{complaints: complaints, bookings: bookings, accounts: accounts}
}

type FileComplaintInput struct {
	BookingID   string
	Subject     string
	Description string
}

// File records a complaint about a booking. Only the booking's customer or
// worker may file one.
func (s *ComplaintService) File(ctx context.Context, actorID, role string, input FileComplaintInput) (*models.Complaint, error) {
	if role != models.RoleUser && role != models.RoleWorker {
		return nil, ErrForbidden
	}

	subject := strings.TrimSpace(input.Subject)
	description := strings.TrimSpace(input.Description)
	if subject == "" || description == "" ||
		len([]rune(subject)) > maxComplaintSubjectLength ||
		len([]rune(description)) > maxComplaintDescriptionLength {
		return nil, ErrInvalidInput
	}

	if _, err := uuid.Parse(input.BookingID); err != nil {
		return nil, ErrBookingNotFound
	}
	booking, err := s.bookings.GetByID(ctx, input.BookingID)
	if err != nil {
		return nil, mapBookingLookupError(err)
	}
	if !canAccessBooking(role, actorID, booking) {
		return nil, ErrForbidden
	}
	if err := ensureActive(ctx, s.accounts, actorID); err != nil {
		return nil, err
	}

	return s.complaints.Create(ctx, repository.CreateComplaintInput{
		BookingID:    booking.ID,
		ReporterID:   actorID,
		ReporterRole: role,
		Subject:      subject,
		Description:  description,
	})
}

func (s *ComplaintService) List(ctx context.Context, status string, page, limit int) ([]models.Complaint, int, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	switch status {
	case "", models.ComplaintOpen, models.ComplaintResolved, models.ComplaintDismissed:
	default:
		return nil, 0, ErrInvalidStatus
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return s.complaints.List(ctx, status, limit, (page-1)*limit)
}

// Resolve closes an open complaint as resolved or dismissed.
func (s *ComplaintService) Resolve(ctx context.Context, complaintID, status string, note *string) (*models.Complaint, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status != models.ComplaintResolved && status != models.ComplaintDismissed {
		return nil, ErrInvalidStatus
	}
	if _, err := uuid.Parse(complaintID); err != nil {
		return nil, ErrComplaintNotFound
	}

	note = trimOptional(note)
	if note != nil && *note == "" {
		note = nil
	}

	complaint, err := s.complaints.Resolve(ctx, complaintID, status, note)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrComplaintNotFound
		}
		return nil, err
	}
	return complaint, nil
}
