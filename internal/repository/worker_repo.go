package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/discovery"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/models"
	"github.com/jackc/pgx/v5"
)

const workerColumns = `w.id, w.user_id, w.name, w.skills, w.bio, w.address, w.latitude, w.longitude,
		w.charge, w.is_available, w.is_blocked, w.average_rating, w.rating_count, w.max_distance_km,
		w.phone, w.avatar_url, w.created_at, w.updated_at`

// distanceExpr is the Haversine distance in meters between a worker row and
// the origin bound to %[1]s (latitude) and %[2]s (longitude).
const distanceExpr = `(2 * 6371000 * ASIN(LEAST(1, SQRT(
		POWER(SIN(RADIANS(w.latitude - %[1]s::float8) / 2), 2) +
		COS(RADIANS(%[1]s::float8)) * COS(RADIANS(w.latitude)) *
		POWER(SIN(RADIANS(w.longitude - %[2]s::float8) / 2), 2)
	))))`

type WorkerRepository struct {
	db DBTX
}

func NewWorkerRepository(db DBTX) *WorkerRepository {
	return &WorkerRepository{db: db}
}

type CreateWorkerInput struct {
	UserID        string
	Name          string
	Skills        []string
	Bio           string
	Address       string
	Latitude      float64
	Longitude     float64
	Charge        float64
	MaxDistanceKm float64
	Phone         *string
}

type UpdateWorkerInput struct {
	Name          *string
	Skills        *[]string
	Bio           *string
	Address       *string
	Latitude      *float64
	Longitude     *float64
	Charge        *float64
	MaxDistanceKm *float64
	Phone         *string
	AvatarURL     *string
}

func (r *WorkerRepository) Create(ctx context.Context, input CreateWorkerInput) (*models.Worker, error) {
	query := `
		INSERT INTO workers AS w (id, user_id, name, skills, bio, address, latitude, longitude,
			charge, max_distance_km, phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + workerColumns
	return scanWorker(r.db.QueryRow(ctx, query,
		uuid.NewString(),
		input.UserID,
		input.Name,
		input.Skills,
		input.Bio,
		input.Address,
		input.Latitude,
		input.Longitude,
		input.Charge,
		input.MaxDistanceKm,
		input.Phone,
	))
}

func (r *WorkerRepository) GetByID(ctx context.Context, id string) (*models.Worker, error) {
	query := `SELECT ` + workerColumns + ` FROM workers w WHERE w.id = $1`
	return scanWorker(r.db.QueryRow(ctx, query, id))
}

func (r *WorkerRepository) GetByUserID(ctx context.Context, userID string) (*models.Worker, error) {
	query := `SELECT ` + workerColumns + ` FROM workers w WHERE w.user_id = $1`
	return scanWorker(r.db.QueryRow(ctx, query, userID))
}

func (r *WorkerRepository) UpdatePartial(ctx context.Context, userID string, input UpdateWorkerInput) (*models.Worker, error) {
	query := `
		UPDATE workers AS w
		SET name = COALESCE($1, w.name),
			skills = COALESCE($2, w.skills),
			bio = COALESCE($3, w.bio),
			address = COALESCE($4, w.address),
			latitude = COALESCE($5, w.latitude),
			longitude = COALESCE($6, w.longitude),
			charge = COALESCE($7, w.charge),
			max_distance_km = COALESCE($8, w.max_distance_km),
			phone = COALESCE($9, w.phone),
			avatar_url = COALESCE($10, w.avatar_url),
			updated_at = NOW()
		WHERE w.user_id = $11
		RETURNING ` + workerColumns
	return scanWorker(r.db.QueryRow(ctx, query,
		input.Name,
		input.Skills,
		input.Bio,
		input.Address,
		input.Latitude,
		input.Longitude,
		input.Charge,
		input.MaxDistanceKm,
		input.Phone,
		input.AvatarURL,
		userID,
	))
}

func (r *WorkerRepository) SetAvailability(ctx context.Context, userID string, available bool) (*models.Worker, error) {
	query := `
		UPDATE workers AS w
		SET is_available = $2, updated_at = NOW()
		WHERE w.user_id = $1
		RETURNING ` + workerColumns
	return scanWorker(r.db.QueryRow(ctx, query, userID, available))
}

func (r *WorkerRepository) SetBlocked(ctx context.Context, workerID string, blocked bool) (*models.Worker, error) {
	query := `
		UPDATE workers AS w
		SET is_blocked = $2, updated_at = NOW()
		WHERE w.id = $1
		RETURNING ` + workerColumns
	return scanWorker(r.db.QueryRow(ctx, query, workerID, blocked))
}

// RefreshRating recomputes the rating aggregate from the reviews table.
// Call it inside the transaction that wrote the review.
func (r *WorkerRepository) RefreshRating(ctx context.Context, workerID string) (*models.Worker, error) {
	query := `
		UPDATE workers AS w
		SET average_rating = agg.average,
			rating_count = agg.total,
			updated_at = NOW()
		FROM (
			SELECT ROUND(AVG(rating)::numeric, 1)::float8 AS average, COUNT(*)::int AS total
			FROM reviews
			WHERE worker_id = $1
		) AS agg
		WHERE w.id = $1
		RETURNING ` + workerColumns
	return scanWorker(r.db.QueryRow(ctx, query, workerID))
}

// ListAll returns every worker, discoverable or not, ordered by id.
func (r *WorkerRepository) ListAll(ctx context.Context) ([]models.Worker, error) {
	query := `SELECT ` + workerColumns + ` FROM workers w ORDER BY w.id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return collectWorkers(rows)
}

// ListCategories returns every skill tag held by a discoverable worker with
// the number of such workers, most common first.
func (r *WorkerRepository) ListCategories(ctx context.Context) ([]models.SkillCount, error) {
	query := `
		SELECT skill, COUNT(DISTINCT w.id)::int
		FROM workers w, unnest(w.skills) AS skill
		WHERE w.is_available = TRUE AND w.is_blocked = FALSE
		GROUP BY skill
		ORDER BY 2 DESC, skill ASC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]models.SkillCount, 0)
	for rows.Next() {
		var entry models.SkillCount
		if err := rows.Scan(&entry.Skill, &entry.Workers); err != nil {
			return nil, err
		}
		categories = append(categories, entry)
	}
	return categories, rows.Err()
}

func (r *WorkerRepository) CountTotals(ctx context.Context) (total int, blocked int, err error) {
	query := `SELECT COUNT(*)::int, COUNT(*) FILTER (WHERE is_blocked)::int FROM workers`
	err = r.db.QueryRow(ctx, query).Scan(&total, &blocked)
	return total, blocked, err
}

// FindMatching implements discovery.Directory.
func (r *WorkerRepository) FindMatching(ctx context.Context, filter discovery.Filter, opts discovery.FindOptions) ([]models.Worker, error) {
	query, args := buildWorkerQuery(filter, opts)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectWorkers(rows)
}

// Count implements discovery.Directory.
func (r *WorkerRepository) Count(ctx context.Context, filter discovery.Filter) (int, error) {
	query, args := buildWorkerCountQuery(filter)

	var count int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// buildWorkerCountQuery ignores filter.Near; the radius only narrows ranked pages.
func buildWorkerCountQuery(filter discovery.Filter) (string, []any) {
	where, args := workerPredicates(filter)
	return `SELECT COUNT(*)::int FROM workers w WHERE ` + where, args
}

func buildWorkerQuery(filter discovery.Filter, opts discovery.FindOptions) (string, []any) {
	where, args := workerPredicates(filter)

	var b strings.Builder
	b.WriteString(`SELECT ` + workerColumns + ` FROM workers w WHERE `)
	b.WriteString(where)

	if filter.Near != nil {
		args = append(args, filter.Near.Origin.Latitude, filter.Near.Origin.Longitude)
		distance := fmt.Sprintf(distanceExpr, fmt.Sprintf("$%d", len(args)-1), fmt.Sprintf("$%d", len(args)))
		args = append(args, filter.Near.RadiusMeters)
		fmt.Fprintf(&b, " AND %s <= $%d ORDER BY %s ASC, w.id ASC", distance, len(args), distance)
	}

	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}

	return b.String(), args
}

func workerPredicates(filter discovery.Filter) (string, []any) {
	args := make([]any, 0, 4)
	parts := []string{"w.is_available = TRUE", "w.is_blocked = FALSE"}

	switch filter.Scope {
	case discovery.PlacedOnly:
		parts = append(parts, "NOT (w.latitude = 0 AND w.longitude = 0)")
	case discovery.SentinelOnly:
		parts = append(parts, "w.latitude = 0 AND w.longitude = 0")
	}

	if len(filter.Categories) > 0 {
		patterns := make([]string, 0, len(filter.Categories))
		for _, category := range filter.Categories {
			patterns = append(patterns, containsPattern(category))
		}
		args = append(args, patterns)
		parts = append(parts, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM unnest(w.skills) AS skill WHERE skill ILIKE ANY($%d::text[]))", len(args)))
	}

	if filter.FreeText != "" {
		args = append(args, containsPattern(filter.FreeText))
		n := len(args)
		parts = append(parts, fmt.Sprintf(
			"(EXISTS (SELECT 1 FROM unnest(w.skills) AS skill WHERE skill ILIKE $%[1]d) OR w.bio ILIKE $%[1]d OR w.name ILIKE $%[1]d OR w.address ILIKE $%[1]d)", n))
	}

	if filter.AddressText != "" {
		args = append(args, containsPattern(filter.AddressText))
		parts = append(parts, fmt.Sprintf("w.address ILIKE $%d", len(args)))
	}

	return strings.Join(parts, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns a literal into an ILIKE substring pattern.
func containsPattern(value string) string {
	return "%" + likeEscaper.Replace(value) + "%"
}

func collectWorkers(rows pgx.Rows) ([]models.Worker, error) {
	defer rows.Close()

	workers := make([]models.Worker, 0)
	for rows.Next() {
		worker, err := scanWorker(rows)
		if err != nil {
			return nil, err
		}
		workers = append(workers, *worker)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return workers, nil
}

func scanWorker(row pgx.Row) (*models.Worker, error) {
	var worker models.Worker
	var latitude, longitude float64
	err := row.Scan(
		&worker.ID,
		&worker.UserID,
		&worker.Name,
		&worker.Skills,
		&worker.Bio,
		&worker.Address,
		&latitude,
		&longitude,
		&worker.Charge,
		&worker.IsAvailable,
		&worker.IsBlocked,
		&worker.AverageRating,
		&worker.RatingCount,
		&worker.MaxDistanceKm,
		&worker.Phone,
		&worker.AvatarURL,
		&worker.CreatedAt,
		&worker.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	worker.Location = models.NewGeoPoint(latitude, longitude)
	return &worker, nil
}
