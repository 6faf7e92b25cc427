package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"civicfund/internal/registration/models"
	id "civicfund/pkg/domain"
	txcontext "civicfund/pkg/platform/tx"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

const registrationColumns = `id, full_name, email, phone, role, organization, address, documents,
	password_hash, status, review_note, reviewed_by, submitted_at, reviewed_at, user_id`

// PostgresStore persists registrations; documents are a JSONB column.
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

func (s *PostgresStore) Create(ctx context.Context, r *models.Registration) error {
	docs, err := marshalDocuments(r.Documents)
	if err != nil {
		return err
	}
	_, err = s.q(ctx).ExecContext(ctx, `INSERT INTO registrations (`+registrationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		uuid.UUID(r.ID), r.FullName, r.Email, r.Phone, string(r.Role), r.Organization, r.Address, docs,
		r.PasswordHash, string(r.Status), r.ReviewNote, nullableUser(r.ReviewedBy), r.SubmittedAt,
		r.ReviewedAt, nullableUser(r.UserID),
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrConflict
		}
		return fmt.Errorf("insert registration: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, registrationID id.RegistrationID) (*models.Registration, error) {
	row := s.q(ctx).QueryRowContext(ctx, `SELECT `+registrationColumns+` FROM registrations WHERE id = $1`, uuid.UUID(registrationID))
	return scanOne(row)
}

func (s *PostgresStore) List(ctx context.Context, filter models.ListFilter) ([]*models.Registration, error) {
	var args []any
	query := `SELECT ` + registrationColumns + ` FROM registrations`
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			statuses[i] = string(st)
		}
		args = append(args, pq.Array(statuses))
		query += " WHERE status = ANY($1)"
	}
	query += " ORDER BY submitted_at, id"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()
	var result []*models.Registration
	for rows.Next() {
		r, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate registrations: %w", err)
	}
	return result, nil
}

// Execute locks the row, validates, mutates and writes back in one transaction,
// joining the caller's transaction when there is one.
func (s *PostgresStore) Execute(ctx context.Context, registrationID id.RegistrationID, validate func(*models.Registration) error, mutate func(*models.Registration)) (*models.Registration, error) {
	var result *models.Registration
	err := txcontext.Run(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `SELECT `+registrationColumns+` FROM registrations WHERE id = $1 FOR UPDATE`, uuid.UUID(registrationID))
		r, err := scanOne(row)
		if err != nil {
			return err
		}
		if err := validate(r); err != nil {
			return err
		}
		mutate(r)
		_, err = tx.ExecContext(ctx, `UPDATE registrations SET
			status = $2, review_note = $3, reviewed_by = $4, reviewed_at = $5, user_id = $6
			WHERE id = $1`,
			uuid.UUID(r.ID), string(r.Status), r.ReviewNote, nullableUser(r.ReviewedBy), r.ReviewedAt, nullableUser(r.UserID),
		)
		if err != nil {
			return fmt.Errorf("update registration: %w", err)
		}
		result = r
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

func scanOne(row *sql.Row) (*models.Registration, error) {
	r, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return r, err
}

func scan(row scanner) (*models.Registration, error) {
	var (
		r              models.Registration
		registrationID uuid.UUID
		role, status   string
		docs           []byte
		reviewedBy     uuid.NullUUID
		reviewedAt     sql.NullTime
		userID         uuid.NullUUID
	)
	err := row.Scan(&registrationID, &r.FullName, &r.Email, &r.Phone, &role, &r.Organization, &r.Address,
		&docs, &r.PasswordHash, &status, &r.ReviewNote, &reviewedBy, &r.SubmittedAt, &reviewedAt, &userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan registration: %w", err)
	}
	if err := json.Unmarshal(docs, &r.Documents); err != nil {
		return nil, fmt.Errorf("decode registration documents: %w", err)
	}
	r.ID = id.RegistrationID(registrationID)
	r.Role = id.Role(role)
	r.Status = models.Status(status)
	if reviewedBy.Valid {
		r.ReviewedBy = id.UserID(reviewedBy.UUID)
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		r.ReviewedAt = &t
	}
	if userID.Valid {
		r.UserID = id.UserID(userID.UUID)
	}
	return &r, nil
}

func marshalDocuments(docs []models.DocumentMeta) ([]byte, error) {
	if docs == nil {
		docs = []models.DocumentMeta{}
	}
	b, err := json.Marshal(docs)
	if err != nil {
		return nil, fmt.Errorf("encode registration documents: %w", err)
	}
	return b, nil
}

func nullableUser(userID id.UserID) any {
	if userID.IsNil() {
		return nil
	}
	return uuid.UUID(userID)
}

