package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"civicfund/internal/campaign/models"
	id "civicfund/pkg/domain"
	txcontext "civicfund/pkg/platform/tx"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// PostgresStore persists campaigns in PostgreSQL.
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

const campaignColumns = `id, slug, title, summary, description, category, organizer, organizer_id,
	goal_cents, raised_cents, donor_count, image_url, featured, status, ends_at, review_note,
	created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, c *models.Campaign) error {
	query := `INSERT INTO campaigns (` + campaignColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := s.q(ctx).ExecContext(ctx, query,
		uuid.UUID(c.ID), c.Slug, c.Title, c.Summary, c.Description, c.Category, c.Organizer,
		nullableUser(c.OrganizerID), c.GoalCents, c.RaisedCents, c.DonorCount, c.ImageURL,
		c.Featured, string(c.Status), c.EndsAt, c.ReviewNote, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrConflict
		}
		return fmt.Errorf("insert campaign: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, campaignID id.CampaignID) (*models.Campaign, error) {
	row := s.q(ctx).QueryRowContext(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, uuid.UUID(campaignID))
	return scanOne(row)
}

func (s *PostgresStore) FindBySlug(ctx context.Context, slug string) (*models.Campaign, error) {
	row := s.q(ctx).QueryRowContext(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE slug = $1`, slug)
	return scanOne(row)
}

func (s *PostgresStore) List(ctx context.Context, filter models.ListFilter) ([]*models.Campaign, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			statuses[i] = string(st)
		}
		where = append(where, "status = ANY("+arg(pq.Array(statuses))+")")
	}
	if filter.Category != "" && filter.Category != "all" {
		where = append(where, "category = "+arg(filter.Category))
	}
	if filter.Featured != nil {
		where = append(where, "featured = "+arg(*filter.Featured))
	}
	if !filter.OrganizerID.IsNil() {
		where = append(where, "organizer_id = "+arg(uuid.UUID(filter.OrganizerID)))
	}
	if filter.Query != "" {
		p := arg("%" + strings.ToLower(filter.Query) + "%")
		where = append(where, "(LOWER(title) LIKE "+p+" OR LOWER(summary) LIKE "+p+" OR LOWER(organizer) LIKE "+p+")")
	}

	query := `SELECT ` + campaignColumns + ` FROM campaigns`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY featured DESC, created_at DESC, id"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}

	rows, err := s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	var result []*models.Campaign
	for rows.Next() {
		c, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate campaigns: %w", err)
	}
	return result, nil
}

// Execute locks the row with SELECT ... FOR UPDATE, validates, mutates and
// writes back inside one transaction.
func (s *PostgresStore) Execute(ctx context.Context, campaignID id.CampaignID, validate func(*models.Campaign) error, mutate func(*models.Campaign)) (*models.Campaign, error) {
	var result *models.Campaign
	err := txcontext.Run(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1 FOR UPDATE`, uuid.UUID(campaignID))
		c, err := scanOne(row)
		if err != nil {
			return err
		}
		if err := validate(c); err != nil {
			return err
		}
		mutate(c)
		_, err = tx.ExecContext(ctx, `UPDATE campaigns SET
			title = $2, summary = $3, description = $4, category = $5, goal_cents = $6,
			raised_cents = $7, donor_count = $8, image_url = $9, featured = $10, status = $11,
			ends_at = $12, review_note = $13, updated_at = $14
			WHERE id = $1`,
			uuid.UUID(c.ID), c.Title, c.Summary, c.Description, c.Category, c.GoalCents,
			c.RaisedCents, c.DonorCount, c.ImageURL, c.Featured, string(c.Status),
			c.EndsAt, c.ReviewNote, c.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("update campaign: %w", err)
		}
		result = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOne(row *sql.Row) (*models.Campaign, error) {
	c, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

func scan(row scanner) (*models.Campaign, error) {
	var (
		c           models.Campaign
		campaignID  uuid.UUID
		organizerID uuid.NullUUID
		status      string
		endsAt      sql.NullTime
	)
	err := row.Scan(&campaignID, &c.Slug, &c.Title, &c.Summary, &c.Description, &c.Category,
		&c.Organizer, &organizerID, &c.GoalCents, &c.RaisedCents, &c.DonorCount, &c.ImageURL,
		&c.Featured, &status, &endsAt, &c.ReviewNote, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan campaign: %w", err)
	}
	c.ID = id.CampaignID(campaignID)
	c.Status = models.Status(status)
	if organizerID.Valid {
		c.OrganizerID = id.UserID(organizerID.UUID)
	}
	if endsAt.Valid {
		t := endsAt.Time
		c.EndsAt = &t
	}
	return &c, nil
}

func nullableUser(userID id.UserID) any {
	if userID.IsNil() {
		return nil
	}
	return uuid.UUID(userID)
}
