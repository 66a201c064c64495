// Package seed loads demo accounts and worker profiles from a YAML fixture.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/models"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/services"
	"github.com/panjf2000/ants/v2"
	"gopkg.in/yaml.v3"
)

const defaultPoolSize = 4

type Fixture struct {
	Accounts []Account `yaml:"accounts"`
}

type Account struct {
	Email    string         `yaml:"email"`
	Password string         `yaml:"password"`
	Role     string         `yaml:"role"`
	Worker   *WorkerProfile `yaml:"worker"`
}

type WorkerProfile struct {
	Name          string   `yaml:"name"`
	Skills        []string `yaml:"skills"`
	Bio           string   `yaml:"bio"`
	Address       string   `yaml:"address"`
	Lat           *float64 `yaml:"lat"`
	Lng           *float64 `yaml:"lng"`
	Charge        float64  `yaml:"charge"`
	MaxDistanceKm *float64 `yaml:"max_distance_km"`
	Phone         *string  `yaml:"phone"`
	Available     *bool    `yaml:"available"`
}

// Load decodes a fixture and rejects unknown keys and worker profiles attached
// to non-worker accounts.
func Load(r io.Reader) (*Fixture, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var fixture Fixture
	if err := decoder.Decode(&fixture); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}

	seen := make(map[string]struct{}, len(fixture.Accounts))
	for i, account := range fixture.Accounts {
		email := strings.ToLower(strings.TrimSpace(account.Email))
		if email == "" {
			return nil, fmt.Errorf("account %d: email is required", i)
		}
		if _, dup := seen[email]; dup {
			return nil, fmt.Errorf("account %d: duplicate email %s", i, email)
		}
		seen[email] = struct{}{}

		if account.Role == "" {
			fixture.Accounts[i].Role = models.RoleUser
		}
		if account.Worker != nil && fixture.Accounts[i].Role != models.RoleWorker {
			return nil, fmt.Errorf("account %d: worker profile on a %s account", i, fixture.Accounts[i].Role)
		}
	}
	return &fixture, nil
}

type AccountRegistrar interface {
	Register(ctx context.Context, email, password, role string) (*services.AuthResult, error)
}

type WorkerOnboarder interface {
	Onboard(ctx context.Context, userID, role string, input services.OnboardWorkerInput) (*models.Worker, error)
	SetAvailability(ctx context.Context, userID string, available bool) (*models.Worker, error)
}

type Result struct {
	Created int
	Skipped int
	Workers int
}

type Seeder struct {
	accounts AccountRegistrar
	workers  WorkerOnboarder
	poolSize int
	logger   *slog.Logger
}

func NewSeeder(accounts AccountRegistrar, workers WorkerOnboarder, poolSize int, logger *slog.Logger) *Seeder {
	if poolSize < 1 {
		poolSize = defaultPoolSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{accounts: accounts, workers: workers, poolSize: poolSize, logger: logger}
}

// Run registers every account concurrently. Accounts whose email already
// exists are skipped, which makes repeated runs safe.
func (s *Seeder) Run(ctx context.Context, fixture *Fixture) (Result, error) {
	pool, err := ants.NewPool(s.poolSize)
	if err != nil {
		return Result{}, fmt.Errorf("create seed pool: %w", err)
	}
	defer pool.Release()

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		result Result
		errs   []error
	)

	for _, account := range fixture.Accounts {
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()

			outcome, err := s.seedAccount(ctx, account)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				errs = append(errs, fmt.Errorf("%s: %w", account.Email, err))
			case outcome == outcomeSkipped:
				result.Skipped++
			default:
				result.Created++
				if outcome == outcomeWorker {
					result.Workers++
				}
			}
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			errs = append(errs, fmt.Errorf("%s: %w", account.Email, submitErr))
			mu.Unlock()
		}
	}

	wg.Wait()
	return result, errors.Join(errs...)
}

type outcome int

const (
	outcomeAccount outcome = iota
	outcomeWorker
	outcomeSkipped
)

func (s *Seeder) seedAccount(ctx context.Context, account Account) (outcome, error) {
	if err := ctx.Err(); err != nil {
		return outcomeAccount, err
	}

	registered, err := s.accounts.Register(ctx, account.Email, account.Password, account.Role)
	if err != nil {
		if errors.Is(err, services.ErrConflict) {
			s.logger.Info("seed account exists", "email", account.Email)
			return outcomeSkipped, nil
		}
		return outcomeAccount, fmt.Errorf("register: %w", err)
	}

	if account.Worker == nil {
		return outcomeAccount, nil
	}

	profile := account.Worker
	userID := registered.User.ID
	_, err = s.workers.Onboard(ctx, userID, registered.User.Role, services.OnboardWorkerInput{
		Name:          profile.Name,
		Skills:        profile.Skills,
		Bio:           profile.Bio,
		Address:       profile.Address,
		Latitude:      profile.Lat,
		Longitude:     profile.Lng,
		Charge:        profile.Charge,
		MaxDistanceKm: profile.MaxDistanceKm,
		Phone:         profile.Phone,
	})
	if err != nil {
		return outcomeAccount, fmt.Errorf("onboard worker: %w", err)
	}

	if profile.Available != nil {
		if _, err := s.workers.SetAvailability(ctx, userID, *profile.Available); err != nil {
			return outcomeAccount, fmt.Errorf("set availability: %w", err)
		}
	}
	return outcomeWorker, nil
}
