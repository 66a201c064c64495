package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/models"
	"github.com/jackc/pgx/v5"
)

const complaintColumns = `id, booking_id, reporter_id, reporter_role, subject, description, status,
		resolution_note, created_at, resolved_at`

type CreateComplaintInput struct {
	BookingID    string
	ReporterID   string
	ReporterRole string
	Subject      string
	Description  string
}

type ComplaintRepository struct {
	db DBTX
}

func NewComplaintRepository(db DBTX) *ComplaintRepository {
	return &ComplaintRepository{db: db}
}

func (r *ComplaintRepository) Create(ctx context.Context, input CreateComplaintInput) (*models.Complaint, error) {
	query := `
		INSERT INTO complaints (id, booking_id, reporter_id, reporter_role, subject, description, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'open')
		RETURNING ` + complaintColumns
	return scanComplaint(r.db.QueryRow(ctx, query,
		uuid.NewString(),
		input.BookingID,
		input.ReporterID,
		input.ReporterRole,
		input.Subject,
		input.Description,
	))
}

func (r *ComplaintRepository) List(ctx context.Context, status string, limit, offset int) ([]models.Complaint, int, error) {
	args := make([]any, 0, 3)
	where := "TRUE"
	if status = strings.TrimSpace(status); status != "" {
		args = append(args, status)
		where = fmt.Sprintf("status = $%d", len(args))
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*)::int FROM complaints WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`
		SELECT %s
		FROM complaints
		WHERE %s
		ORDER BY created_at DESC, id ASC
		LIMIT $%d OFFSET $%d
	`, complaintColumns, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	complaints := make([]models.Complaint, 0)
	for rows.Next() {
		complaint, err := scanComplaint(rows)
		if err != nil {
			return nil, 0, err
		}
		complaints = append(complaints, *complaint)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return complaints, total, nil
}

// Resolve closes an open complaint. pgx.ErrNoRows means it does not exist or
// was already closed.
func (r *ComplaintRepository) Resolve(ctx context.Context, id, status string, note *string) (*models.Complaint, error) {
	query := `
		UPDATE complaints
		SET status = $2, resolution_note = $3, resolved_at = NOW()
		WHERE id = $1 AND status = 'open'
		RETURNING ` + complaintColumns
	return scanComplaint(r.db.QueryRow(ctx, query, id, status, note))
}

func (r *ComplaintRepository) CountOpen(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*)::int FROM complaints WHERE status = 'open'`).Scan(&count)
	return count, err
}

func scanComplaint(row pgx.Row) (*models.Complaint, error) {
	var complaint models.Complaint
	err := row.Scan(
		&complaint.ID,
		&complaint.BookingID,
		&complaint.ReporterID,
		&complaint.ReporterRole,
		&complaint.Subject,
		&complaint.Description,
		&complaint.Status,
		&complaint.ResolutionNote,
		&complaint.CreatedAt,
		&complaint.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return &complaint, nil
}
