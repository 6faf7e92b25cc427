package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"civicfund/internal/auth/models"
	id "civicfund/pkg/domain"
	"civicfund/pkg/email"
	txcontext "civicfund/pkg/platform/tx"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

const userColumns = `id, email, full_name, password_hash, role, status, created_at, updated_at, last_login_at`

// PostgresStore persists users in PostgreSQL.
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

func (s *PostgresStore) Create(ctx context.Context, u *models.User) error {
	_, err := s.q(ctx).ExecContext(ctx, `INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.UUID(u.ID), email.Normalize(u.Email), u.FullName, u.PasswordHash, string(u.Role),
		string(u.Status), u.CreatedAt, u.UpdatedAt, u.LastLoginAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	row := s.q(ctx).QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, uuid.UUID(userID))
	return scanOne(row)
}

func (s *PostgresStore) FindByEmail(ctx context.Context, address string) (*models.User, error) {
	row := s.q(ctx).QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = $1`, email.Normalize(address))
	return scanOne(row)
}

func (s *PostgresStore) List(ctx context.Context, filter models.ListFilter) ([]*models.User, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.Role != "" {
		where = append(where, "role = "+arg(string(filter.Role)))
	}
	if filter.Status != "" {
		where = append(where, "status = "+arg(string(filter.Status)))
	}
	if q := strings.ToLower(strings.TrimSpace(filter.Query)); q != "" {
		p := arg("%" + q + "%")
		where = append(where, "(LOWER(email) LIKE "+p+" OR LOWER(full_name) LIKE "+p+")")
	}
	query := `SELECT ` + userColumns + ` FROM users`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}

	rows, err := s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	var result []*models.User
	for rows.Next() {
		u, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return result, nil
}

// Execute locks the row, validates, mutates and writes back in one transaction.
func (s *PostgresStore) Execute(ctx context.Context, userID id.UserID, validate func(*models.User) error, mutate func(*models.User)) (*models.User, error) {
	var result *models.User
	err := txcontext.Run(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, uuid.UUID(userID))
		u, err := scanOne(row)
		if err != nil {
			return err
		}
		if err := validate(u); err != nil {
			return err
		}
		mutate(u)
		_, err = tx.ExecContext(ctx, `UPDATE users SET
			full_name = $2, password_hash = $3, role = $4, status = $5, updated_at = $6, last_login_at = $7
			WHERE id = $1`,
			uuid.UUID(u.ID), u.FullName, u.PasswordHash, string(u.Role), string(u.Status), u.UpdatedAt, u.LastLoginAt,
		)
		if err != nil {
			return fmt.Errorf("update user: %w", err)
		}
		result = u
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

func scanOne(row *sql.Row) (*models.User, error) {
	u, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return u, err
}

func scan(row scanner) (*models.User, error) {
	var (
		u         models.User
		userID    uuid.UUID
		role      string
		status    string
		lastLogin sql.NullTime
	)
	err := row.Scan(&userID, &u.Email, &u.FullName, &u.PasswordHash, &role, &status,
		&u.CreatedAt, &u.UpdatedAt, &lastLogin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.ID = id.UserID(userID)
	u.Role = id.Role(role)
	u.Status = models.Status(status)
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLoginAt = &t
	}
	return &u, nil
}
