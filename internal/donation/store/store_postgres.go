package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"civicfund/internal/donation/models"
	id "civicfund/pkg/domain"
	txcontext "civicfund/pkg/platform/tx"
)

const uniqueViolation = "23505"

// PostgresStore persists donations in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) q(ctx context.Context) queryer {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const donationColumns = `id, campaign_id, donor_id, donor_name, email, amount_cents, currency,
	frequency, anonymous, employer, occupation, message, created_at`

func (s *PostgresStore) Create(ctx context.Context, d *models.Donation) error {
	var donorID uuid.NullUUID
	if !d.DonorID.IsNil() {
		donorID = uuid.NullUUID{UUID: uuid.UUID(d.DonorID), Valid: true}
	}
	_, err := s.q(ctx).ExecContext(ctx, `INSERT INTO donations (`+donationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		uuid.UUID(d.ID), uuid.UUID(d.CampaignID), donorID, d.DonorName, d.Email, d.AmountCents,
		d.Currency, string(d.Frequency), d.Anonymous, d.Employer, d.Occupation, d.Message, d.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrConflict
		}
		return fmt.Errorf("insert donation: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, donationID id.DonationID) (*models.Donation, error) {
	row := s.q(ctx).QueryRowContext(ctx, `SELECT `+donationColumns+` FROM donations WHERE id = $1`, uuid.UUID(donationID))
	d, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return d, err
}

func (s *PostgresStore) List(ctx context.Context, filter models.ListFilter) ([]*models.Donation, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if !filter.DonorID.IsNil() {
		where = append(where, "donor_id = "+arg(uuid.UUID(filter.DonorID)))
	}
	if !filter.CampaignID.IsNil() {
		where = append(where, "campaign_id = "+arg(uuid.UUID(filter.CampaignID)))
	}
	if !filter.Since.IsZero() {
		where = append(where, "created_at >= "+arg(filter.Since))
	}

	query := `SELECT ` + donationColumns + ` FROM donations`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}

	rows, err := s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	defer rows.Close()

	var result []*models.Donation
	for rows.Next() {
		d, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate donations: %w", err)
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (*models.Donation, error) {
	var (
		d          models.Donation
		donationID uuid.UUID
		campaignID uuid.UUID
		donorID    uuid.NullUUID
		frequency  string
	)
	err := row.Scan(&donationID, &campaignID, &donorID, &d.DonorName, &d.Email, &d.AmountCents,
		&d.Currency, &frequency, &d.Anonymous, &d.Employer, &d.Occupation, &d.Message, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan donation: %w", err)
	}
	d.ID = id.DonationID(donationID)
	d.CampaignID = id.CampaignID(campaignID)
	if donorID.Valid {
		d.DonorID = id.UserID(donorID.UUID)
	}
	d.Frequency = models.Frequency(frequency)
	return &d, nil
}
