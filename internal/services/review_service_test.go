package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/models"
	"github.com/jackc/pgx/v5"
)

var errBeginCalled = errors.New("begin called")

type failingBeginner struct {
	calls int
}

func (b *failingBeginner) Begin(_ context.Context) (pgx.Tx, error) {
	b.calls++
	return nil, errBeginCalled
}

type stubReviewLister struct {
	limit, offset int
}

func (s *stubReviewLister) ListByWorker(_ context.Context, _ string, limit, offset int) ([]models.Review, int, error) {
	s.limit, s.offset = limit, offset
	return []models.Review{}, 0, nil
}

func TestCreateReviewGuards(t *testing.T) {
	completed := &models.Booking{ID: testBookingID, UserID: "customer", WorkerID: testWorkerID, Status: models.BookingCompleted}
	accepted := &models.Booking{ID: testBookingID, UserID: "customer", WorkerID: testWorkerID, Status: models.BookingAccepted}
	longComment := strings.Repeat("x", maxReviewCommentLength+1)

	cases := []struct {
		name      string
		actor     string
		role      string
		bookingID string
		booking   *models.Booking
		lookupErr error
		input     CreateReviewInput
		expected  error
	}{
		{"worker cannot review", "worker-user", models.RoleWorker, testBookingID, completed, nil, CreateReviewInput{Rating: 5}, ErrForbidden},
		{"rating too low", "customer", models.RoleUser, testBookingID, completed, nil, CreateReviewInput{Rating: 0}, ErrInvalidInput},
		{"rating too high", "customer", models.RoleUser, testBookingID, completed, nil, CreateReviewInput{Rating: 6}, ErrInvalidInput},
		{"comment too long", "customer", models.RoleUser, testBookingID, completed, nil, CreateReviewInput{Rating: 4, Comment: &longComment}, ErrInvalidInput},
		{"malformed booking id", "customer", models.RoleUser, "abc", completed, nil, CreateReviewInput{Rating: 4}, ErrBookingNotFound},
		{"missing booking", "customer", models.RoleUser, testBookingID, nil, pgx.ErrNoRows, CreateReviewInput{Rating: 4}, ErrBookingNotFound},
		{"someone else's booking", "stranger", models.RoleUser, testBookingID, completed, nil, CreateReviewInput{Rating: 4}, ErrForbidden},
		{"booking not completed", "customer", models.RoleUser, testBookingID, accepted, nil, CreateReviewInput{Rating: 4}, ErrInvalidStateTransition},
		{"eligible booking reaches the transaction", "customer", models.RoleUser, testBookingID, completed, nil, CreateReviewInput{Rating: 4}, errBeginCalled},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			beginner := &failingBeginner{}
			store := &stubBookingStore{booking: tc.booking, getErr: tc.lookupErr}
			service := NewReviewService(beginner, store, &stubReviewLister{}, nil, nil)

			_, err := service.Create(context.Background(), tc.actor, tc.role, tc.bookingID, tc.input)
			if !errors.Is(err, tc.expected) {
				t.Fatalf("expected %v, got %v", tc.expected, err)
			}
			if tc.expected != errBeginCalled && beginner.calls != 0 {
				t.Fatalf("transaction must not start when validation fails")
			}
		})
	}
}

func TestListReviewsPaginates(t *testing.T) {
	lister := &stubReviewLister{}
	service := NewReviewService(&failingBeginner{}, &stubBookingStore{}, lister, nil, nil)

	if _, _, err := service.ListByWorker(context.Background(), testWorkerID, 3, 20); err != nil {
		t.Fatalf("ListByWorker: %v", err)
	}
	if lister.limit != 20 || lister.offset != 40 {
		t.Fatalf("expected limit 20 offset 40, got %d/%d", lister.limit, lister.offset)
	}

	if _, _, err := service.ListByWorker(context.Background(), "not-a-uuid", 1, 10); !errors.Is(err, ErrWorkerNotFound) {
		t.Fatalf("expected ErrWorkerNotFound, got %v", err)
	}
}
