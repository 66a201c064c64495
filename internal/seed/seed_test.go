package seed

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/models"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureYAML = `
accounts:
  - email: alice@example.com
    password: password1
  - email: bob@example.com
    password: password1
    role: worker
    worker:
      name: Bob Plumber
      skills: [Plumbing, pipes]
      address: 12 Main St
      lat: 12.97
      lng: 77.59
      charge: 300
      available: false
  - email: taken@example.com
    password: password1
`

type stubRegistrar struct {
	mu       sync.Mutex
	existing map[string]bool
	calls    []string
}

func (s *stubRegistrar) Register(_ context.Context, email, _, role string) (*services.AuthResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, email)
	if s.existing[email] {
		return nil, services.ErrConflict
	}
	return &services.AuthResult{User: &models.User{ID: "id-" + email, Email: email, Role: role}}, nil
}

type stubOnboarder struct {
	mu           sync.Mutex
	onboarded    map[string]services.OnboardWorkerInput
	availability map[string]bool
	err          error
}

func (s *stubOnboarder) Onboard(_ context.Context, userID, _ string, input services.OnboardWorkerInput) (*models.Worker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	if s.onboarded == nil {
		s.onboarded = map[string]services.OnboardWorkerInput{}
	}
	s.onboarded[userID] = input
	return &models.Worker{ID: "w-" + userID, UserID: userID}, nil
}

func (s *stubOnboarder) SetAvailability(_ context.Context, userID string, available bool) (*models.Worker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.availability == nil {
		s.availability = map[string]bool{}
	}
	s.availability[userID] = available
	return &models.Worker{UserID: userID, IsAvailable: available}, nil
}

func TestLoadDefaultsRoleAndValidates(t *testing.T) {
	fixture, err := Load(strings.NewReader(fixtureYAML))
	require.NoError(t, err)
	require.Len(t, fixture.Accounts, 3)
	assert.Equal(t, models.RoleUser, fixture.Accounts[0].Role)
	require.NotNil(t, fixture.Accounts[1].Worker)
	assert.Equal(t, []string{"Plumbing", "pipes"}, fixture.Accounts[1].Worker.Skills)
}

func TestLoadRejectsBadFixtures(t *testing.T) {
	cases := map[string]string{
		"unknown key":        "accounts:\n  - email: a@example.com\n    nickname: a\n",
		"missing email":      "accounts:\n  - password: x\n",
		"duplicate email":    "accounts:\n  - email: a@example.com\n  - email: A@example.com\n",
		"profile on a user":  "accounts:\n  - email: a@example.com\n    worker:\n      name: A\n",
		"malformed document": "accounts: [",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestRunSeedsAccountsAndSkipsExisting(t *testing.T) {
	fixture, err := Load(strings.NewReader(fixtureYAML))
	require.NoError(t, err)

	registrar := &stubRegistrar{existing: map[string]bool{"taken@example.com": true}}
	onboarder := &stubOnboarder{}

	result, err := NewSeeder(registrar, onboarder, 2, nil).Run(context.Background(), fixture)
	require.NoError(t, err)

	assert.Equal(t, Result{Created: 2, Skipped: 1, Workers: 1}, result)
	assert.Len(t, registrar.calls, 3)

	input, ok := onboarder.onboarded["id-bob@example.com"]
	require.True(t, ok)
	assert.Equal(t, "Bob Plumber", input.Name)
	require.NotNil(t, input.Latitude)
	assert.InDelta(t, 12.97, *input.Latitude, 1e-9)
	assert.Equal(t, false, onboarder.availability["id-bob@example.com"])
}

func TestRunCollectsErrors(t *testing.T) {
	fixture, err := Load(strings.NewReader(fixtureYAML))
	require.NoError(t, err)

	onboardErr := errors.New("db down")
	result, err := NewSeeder(&stubRegistrar{}, &stubOnboarder{err: onboardErr}, 0, nil).Run(context.Background(), fixture)

	require.Error(t, err)
	assert.ErrorIs(t, err, onboardErr)
	assert.Contains(t, err.Error(), "bob@example.com")
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 0, result.Workers)
}
