package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/events"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/models"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/repository"
	"github.com/jackc/pgx/v5"
)

const (
	testBookingID = "6f1c1a52-2b4a-4c84-9f0e-0d8e3a1d7b10"
	testWorkerID  = "0b7d4f4e-8d6a-4f53-9c77-2d1a0c3e5f21"
)

type stubBookingStore struct {
	booking     *models.Booking
	getErr      error
	updateErr   error
	markPaidErr error
	expired     []models.Booking
	lastCreate  repository.CreateBookingInput
	lastCutoff  time.Time
	lastFilter  repository.BookingListFilter
	updates     int
}

func (s *stubBookingStore) Create(_ context.Context, input repository.CreateBookingInput) (*models.Booking, error) {
	s.lastCreate = input
	return &models.Booking{
		ID:            testBookingID,
		UserID:        input.UserID,
		WorkerID:      input.WorkerID,
		WorkerUserID:  "worker-user",
		Amount:        input.Amount,
		Status:        models.BookingPending,
		PaymentStatus: models.PaymentUnpaid,
	}, nil
}

func (s *stubBookingStore) GetByID(_ context.Context, _ string) (*models.Booking, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	copy := *s.booking
	return &copy, nil
}

func (s *stubBookingStore) List(_ context.Context, filter repository.BookingListFilter) ([]models.Booking, error) {
	s.lastFilter = filter
	return []models.Booking{}, nil
}

func (s *stubBookingStore) UpdateStatusIfCurrent(_ context.Context, _ string, current, next string) (*models.Booking, error) {
	s.updates++
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	if s.booking.Status != current {
		return nil, pgx.ErrNoRows
	}
	updated := *s.booking
	updated.Status = next
	return &updated, nil
}

func (s *stubBookingStore) MarkPaid(_ context.Context, _ string) (*models.Booking, error) {
	if s.markPaidErr != nil {
		return nil, s.markPaidErr
	}
	updated := *s.booking
	updated.PaymentStatus = models.PaymentPaid
	return &updated, nil
}

func (s *stubBookingStore) ExpireStale(_ context.Context, cutoff time.Time) ([]models.Booking, error) {
	s.lastCutoff = cutoff
	return s.expired, nil
}

type stubWorkerReader struct {
	worker *models.Worker
	err    error
}

func (s *stubWorkerReader) GetByID(_ context.Context, _ string) (*models.Worker, error) {
	return s.worker, s.err
}

type recordingPublisher struct {
	events []events.BookingEvent
	err    error
}

func (p *recordingPublisher) PublishBooking(_ context.Context, event events.BookingEvent) error {
	p.events = append(p.events, event)
	return p.err
}

func newTestBookingService(store *stubBookingStore, worker *models.Worker, publisher events.Publisher) *BookingService {
	service := NewBookingService(store, &stubWorkerReader{worker: worker}, nil, publisher, nil)
	service.now = func() time.Time { return time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC) }
	return service
}

func TestValidateStatusTransition(t *testing.T) {
	cases := []struct {
		role, from, to string
		expected       error
	}{
		{models.RoleWorker, models.BookingPending, models.BookingAccepted, nil},
		{models.RoleWorker, models.BookingPending, models.BookingRejected, nil},
		{models.RoleWorker, models.BookingAccepted, models.BookingCompleted, nil},
		{models.RoleWorker, models.BookingPending, models.BookingCompleted, ErrInvalidStateTransition},
		{models.RoleWorker, models.BookingCompleted, models.BookingAccepted, ErrInvalidStateTransition},
		{models.RoleWorker, models.BookingPending, models.BookingCancelled, ErrForbidden},
		{models.RoleUser, models.BookingPending, models.BookingCancelled, nil},
		{models.RoleUser, models.BookingAccepted, models.BookingCancelled, nil},
		{models.RoleUser, models.BookingCompleted, models.BookingCancelled, ErrInvalidStateTransition},
		{models.RoleUser, models.BookingExpired, models.BookingCancelled, ErrInvalidStateTransition},
		{models.RoleUser, models.BookingPending, models.BookingAccepted, ErrForbidden},
		{models.RoleAdmin, models.BookingPending, models.BookingCancelled, ErrForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.role+":"+tc.from+"->"+tc.to, func(t *testing.T) {
			err := validateStatusTransition(tc.role, tc.from, tc.to)
			if !errors.Is(err, tc.expected) {
				t.Fatalf("expected %v, got %v", tc.expected, err)
			}
		})
	}
}

func TestNormalizeRequestedStatus(t *testing.T) {
	for input, expected := range map[string]string{
		"accept":    models.BookingAccepted,
		" Rejected": models.BookingRejected,
		"COMPLETE":  models.BookingCompleted,
		"canceled":  models.BookingCancelled,
	} {
		got, err := normalizeRequestedStatus(input)
		if err != nil || got != expected {
			t.Fatalf("normalizeRequestedStatus(%q) = %q, %v", input, got, err)
		}
	}
	if _, err := normalizeRequestedStatus("expired"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestCreateBookingComputesAmountAndPublishes(t *testing.T) {
	store := &stubBookingStore{}
	publisher := &recordingPublisher{}
	worker := &models.Worker{ID: testWorkerID, UserID: "worker-user", Charge: 150, IsAvailable: true}
	service := newTestBookingService(store, worker, publisher)

	booking, err := service.Create(context.Background(), "customer", models.RoleUser, CreateBookingInput{
		WorkerID:    testWorkerID,
		ScheduledAt: time.Date(2030, 1, 2, 10, 0, 0, 0, time.UTC),
		Hours:       2.5,
		Description: "  fix the kitchen tap ",
		Address:     " Anna Nagar ",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if booking.Amount != 375 {
		t.Fatalf("expected amount 375, got %v", booking.Amount)
	}
	if store.lastCreate.Description != "fix the kitchen tap" || store.lastCreate.Address != "anna nagar" {
		t.Fatalf("unexpected create input %+v", store.lastCreate)
	}
	if len(publisher.events) != 1 || publisher.events[0].Type != events.TypeBookingCreated {
		t.Fatalf("expected one created event, got %+v", publisher.events)
	}
	if publisher.events[0].WorkerUserID != "worker-user" {
		t.Fatalf("event must address the worker account, got %+v", publisher.events[0])
	}
}

func TestCreateBookingRejections(t *testing.T) {
	future := time.Date(2030, 1, 2, 10, 0, 0, 0, time.UTC)
	valid := CreateBookingInput{WorkerID: testWorkerID, ScheduledAt: future, Hours: 1, Description: "job"}

	cases := []struct {
		name     string
		role     string
		worker   *models.Worker
		mutate   func(*CreateBookingInput)
		expected error
	}{
		{"worker cannot book", models.RoleWorker, &models.Worker{ID: testWorkerID, IsAvailable: true}, nil, ErrForbidden},
		{"past schedule", models.RoleUser, &models.Worker{ID: testWorkerID, IsAvailable: true}, func(in *CreateBookingInput) {
			in.ScheduledAt = time.Date(2029, 12, 31, 0, 0, 0, 0, time.UTC)
		}, ErrInvalidInput},
		{"empty description", models.RoleUser, &models.Worker{ID: testWorkerID, IsAvailable: true}, func(in *CreateBookingInput) {
			in.Description = "  "
		}, ErrInvalidInput},
		{"zero hours", models.RoleUser, &models.Worker{ID: testWorkerID, IsAvailable: true}, func(in *CreateBookingInput) {
			in.Hours = 0
		}, ErrInvalidInput},
		{"malformed worker id", models.RoleUser, &models.Worker{ID: testWorkerID, IsAvailable: true}, func(in *CreateBookingInput) {
			in.WorkerID = "nope"
		}, ErrWorkerNotFound},
		{"blocked worker", models.RoleUser, &models.Worker{ID: testWorkerID, IsAvailable: true, IsBlocked: true}, nil, ErrWorkerNotFound},
		{"unavailable worker", models.RoleUser, &models.Worker{ID: testWorkerID}, nil, ErrWorkerUnavailable},
		{"self booking", models.RoleUser, &models.Worker{ID: testWorkerID, UserID: "customer", IsAvailable: true}, nil, ErrInvalidInput},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := valid
			if tc.mutate != nil {
				tc.mutate(&input)
			}
			service := newTestBookingService(&stubBookingStore{}, tc.worker, nil)
			_, err := service.Create(context.Background(), "customer", tc.role, input)
			if !errors.Is(err, tc.expected) {
				t.Fatalf("expected %v, got %v", tc.expected, err)
			}
		})
	}
}

func TestCreateBookingRefusesBlockedCustomer(t *testing.T) {
	store := &stubBookingStore{}
	worker := &models.Worker{ID: testWorkerID, UserID: "worker-user", Charge: 100, IsAvailable: true}
	service := newTestBookingService(store, worker, nil)
	input := CreateBookingInput{
		WorkerID:    testWorkerID,
		ScheduledAt: time.Date(2030, 1, 2, 10, 0, 0, 0, time.UTC),
		Hours:       1,
		Description: "job",
	}

	service.accounts = &stubAccountStore{byEmail: map[string]*models.User{
		"blocked@example.com": {ID: "customer", Role: models.RoleUser, IsBlocked: true},
	}}
	if _, err := service.Create(context.Background(), "customer", models.RoleUser, input); !errors.Is(err, ErrAccountBlocked) {
		t.Fatalf("expected ErrAccountBlocked, got %v", err)
	}
	if _, err := service.Create(context.Background(), "deleted", models.RoleUser, input); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for a missing account, got %v", err)
	}
	if store.lastCreate.UserID != "" {
		t.Fatalf("blocked customer must not create a booking, got %+v", store.lastCreate)
	}

	service.accounts = &stubAccountStore{byEmail: map[string]*models.User{
		"active@example.com": {ID: "customer", Role: models.RoleUser},
	}}
	if _, err := service.Create(context.Background(), "customer", models.RoleUser, input); err != nil {
		t.Fatalf("expected active customer to book, got %v", err)
	}
}

func TestUpdateStatusChecksOwnership(t *testing.T) {
	store := &stubBookingStore{booking: &models.Booking{
		ID: testBookingID, UserID: "customer", WorkerUserID: "worker-user", Status: models.BookingPending,
	}}
	publisher := &recordingPublisher{}
	service := newTestBookingService(store, nil, publisher)

	if _, err := service.UpdateStatus(context.Background(), "other-worker", models.RoleWorker, testBookingID, "accept"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	updated, err := service.UpdateStatus(context.Background(), "worker-user", models.RoleWorker, testBookingID, "accept")
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if updated.Status != models.BookingAccepted {
		t.Fatalf("expected accepted, got %q", updated.Status)
	}
	if len(publisher.events) != 1 || publisher.events[0].Status != models.BookingAccepted {
		t.Fatalf("expected accepted event, got %+v", publisher.events)
	}
}

func TestUpdateStatusLostRace(t *testing.T) {
	store := &stubBookingStore{
		booking:   &models.Booking{ID: testBookingID, UserID: "customer", Status: models.BookingPending},
		updateErr: pgx.ErrNoRows,
	}
	service := newTestBookingService(store, nil, nil)

	_, err := service.UpdateStatus(context.Background(), "customer", models.RoleUser, testBookingID, "cancel")
	if !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
	}
}

func TestGetBookingNotFound(t *testing.T) {
	service := newTestBookingService(&stubBookingStore{getErr: pgx.ErrNoRows}, nil, nil)

	if _, err := service.Get(context.Background(), "customer", models.RoleUser, testBookingID); !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound, got %v", err)
	}
	if _, err := service.Get(context.Background(), "customer", models.RoleUser, "42"); !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound for malformed id, got %v", err)
	}
}

func TestPayBooking(t *testing.T) {
	store := &stubBookingStore{booking: &models.Booking{
		ID: testBookingID, UserID: "customer", Status: models.BookingPending, PaymentStatus: models.PaymentUnpaid,
	}}
	publisher := &recordingPublisher{err: errors.New("redis down")}
	service := newTestBookingService(store, nil, publisher)

	if _, err := service.Pay(context.Background(), "customer", models.RoleUser, testBookingID); !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("expected pending booking payment to be rejected, got %v", err)
	}

	store.booking.Status = models.BookingAccepted
	paid, err := service.Pay(context.Background(), "customer", models.RoleUser, testBookingID)
	if err != nil {
		t.Fatalf("Pay: %v", err)
	}
	if paid.PaymentStatus != models.PaymentPaid {
		t.Fatalf("expected paid, got %q", paid.PaymentStatus)
	}

	store.booking.PaymentStatus = models.PaymentPaid
	store.markPaidErr = errors.New("must not be called")
	if _, err := service.Pay(context.Background(), "customer", models.RoleUser, testBookingID); err != nil {
		t.Fatalf("expected repeated payment to be a no-op, got %v", err)
	}
}

func TestExpireStalePublishesEachBooking(t *testing.T) {
	store := &stubBookingStore{expired: []models.Booking{
		{ID: "a", Status: models.BookingExpired},
		{ID: "b", Status: models.BookingExpired},
	}}
	publisher := &recordingPublisher{}
	service := newTestBookingService(store, nil, publisher)

	count, err := service.ExpireStale(context.Background())
	if err != nil {
		t.Fatalf("ExpireStale: %v", err)
	}
	if count != 2 || len(publisher.events) != 2 {
		t.Fatalf("expected 2 expirations and events, got %d/%d", count, len(publisher.events))
	}
	if !store.lastCutoff.Equal(time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected cutoff %v", store.lastCutoff)
	}
	if publisher.events[1].BookingID != "b" || publisher.events[1].Type != events.TypeBookingExpired {
		t.Fatalf("unexpected event %+v", publisher.events[1])
	}
}

func TestListBookingsValidatesStatus(t *testing.T) {
	store := &stubBookingStore{}
	service := newTestBookingService(store, nil, nil)

	if _, err := service.List(context.Background(), "w", models.RoleWorker, "bogus"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if _, err := service.List(context.Background(), "w", models.RoleWorker, " Pending "); err != nil {
		t.Fatalf("List: %v", err)
	}
	if store.lastFilter.Status != models.BookingPending || store.lastFilter.Role != models.RoleWorker {
		t.Fatalf("unexpected filter %+v", store.lastFilter)
	}
}
