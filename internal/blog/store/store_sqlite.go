package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"civicfund/internal/blog/models"
	"civicfund/internal/platform/sqlite"
	id "civicfund/pkg/domain"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const postColumns = `id, slug, title, excerpt, content, category, tags, author, published_at, read_minutes, views, featured`

// SQLiteStore persists posts in an embedded SQLite database. Tags are a JSON
// array column; timestamps are unix milliseconds.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens the blog database at path and applies its migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sqlite.Open(ctx, path, migrationFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("open blog store: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Upsert(ctx context.Context, p *models.Post) error {
	tags, err := json.Marshal(p.Tags)
	if err != nil {
		return fmt.Errorf("encode post tags: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO posts (`+postColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET
			title = excluded.title,
			excerpt = excluded.excerpt,
			content = excluded.content,
			category = excluded.category,
			tags = excluded.tags,
			author = excluded.author,
			published_at = excluded.published_at,
			read_minutes = excluded.read_minutes,
			featured = excluded.featured`,
		p.ID.String(), p.Slug, p.Title, p.Excerpt, p.Content, p.Category, string(tags), p.Author,
		p.PublishedAt.UTC().UnixMilli(), p.ReadMinutes, p.Views, p.Featured,
	)
	if err != nil {
		return fmt.Errorf("upsert post: %w", err)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]*models.Post, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+postColumns+` FROM posts`)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()
	var out []*models.Post
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) FindBySlug(ctx context.Context, slug string) (*models.Post, error) {
	p, err := scan(s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE slug = ?`, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (s *SQLiteStore) IncrementViews(ctx context.Context, slug string) (*models.Post, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE posts SET views = views + 1 WHERE slug = ?`, slug)
	if err != nil {
		return nil, fmt.Errorf("increment post views: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrNotFound
	}
	return s.FindBySlug(ctx, slug)
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (*models.Post, error) {
	var (
		p           models.Post
		rawID, tags string
		published   int64
	)
	err := row.Scan(&rawID, &p.Slug, &p.Title, &p.Excerpt, &p.Content, &p.Category, &tags, &p.Author,
		&published, &p.ReadMinutes, &p.Views, &p.Featured)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan post: %w", err)
	}
	postID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("parse post id: %w", err)
	}
	p.ID = id.PostID(postID)
	if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
		return nil, fmt.Errorf("decode post tags: %w", err)
	}
	p.PublishedAt = time.UnixMilli(published).UTC()
	return &p, nil
}
