package post

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/xo/dburl"
	"go.uber.org/zap"

	// Registers the "sqlite" driver.
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS posts (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	slug        TEXT NOT NULL UNIQUE,
	subtitle    TEXT,
	author      TEXT NOT NULL,
	cover_image TEXT,
	content     TEXT NOT NULL,
	published   INTEGER NOT NULL DEFAULT 0,
	created_at  INTEGER NOT NULL,
	updated_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS posts_created_at ON posts (created_at DESC);
`

const postColumns = `id, title, slug, subtitle, author, cover_image, content, published, created_at, updated_at`

// OpenDB opens the database described by rawURL, for example
// "sqlite:folio.db" or "sqlite::memory:".
func OpenDB(ctx context.Context, rawURL string) (*sql.DB, error) {
	u, err := dburl.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse database url %q", rawURL)
	}

	switch u.Driver {
	case "sqlite", "sqlite3", "moderncsqlite":
	default:
		return nil, errors.Errorf("unsupported database driver %q", u.Driver)
	}

	db, err := sql.Open("sqlite", u.DSN)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	// SQLite serializes writers and every ":memory:" connection is a
	// separate database.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	return db, nil
}

// SQLStore is a Store backed by database/sql.
type SQLStore struct {
	db     *sql.DB
	logger *zap.Logger
}

var _ Store = (*SQLStore)(nil)

// NewSQLStore creates the posts table if needed. The store takes ownership
// of db and closes it in Close.
func NewSQLStore(ctx context.Context, db *sql.DB, logger *zap.Logger) (*SQLStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, errors.Wrap(err, "failed to create schema")
	}
	return &SQLStore{db: db, logger: logger}, nil
}

func (s *SQLStore) Create(ctx context.Context, p *Post) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO posts (`+postColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, p.Slug, nullString(p.Subtitle), p.Author, nullString(p.CoverImage),
		p.Content, p.Published, p.CreatedAt.UnixMilli(), p.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return errors.Wrap(err, "failed to insert post")
	}
	s.logger.Debug("post created", zap.String("id", p.ID), zap.String("slug", p.Slug))
	return nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (*Post, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id)
	return scanPost(row)
}

func (s *SQLStore) GetBySlug(ctx context.Context, slug string) (*Post, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE slug = ?`, slug)
	return scanPost(row)
}

func (s *SQLStore) Update(ctx context.Context, p *Post) error {
	result, err := s.db.ExecContext(
		ctx,
		`UPDATE posts
		SET title = ?, slug = ?, subtitle = ?, author = ?, cover_image = ?, content = ?, published = ?, updated_at = ?
		WHERE id = ?`,
		p.Title, p.Slug, nullString(p.Subtitle), p.Author, nullString(p.CoverImage),
		p.Content, p.Published, p.UpdatedAt.UnixMilli(), p.ID,
	)
	if err != nil {
		return errors.Wrap(err, "failed to update post")
	}
	n, err := result.RowsAffected()
	if err != nil {
		return errors.WithStack(err)
	}
	if n == 0 {
		return ErrNotFound
	}
	s.logger.Debug("post updated", zap.String("id", p.ID), zap.Bool("published", p.Published))
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, id string) (_ *Post, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	p, err := scanPost(tx.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id))
	if err != nil {
		return nil, err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id); err != nil {
		return nil, errors.Wrap(err, "failed to delete post")
	}
	if err = tx.Commit(); err != nil {
		return nil, errors.WithStack(err)
	}

	s.logger.Debug("post deleted", zap.String("id", id))
	return p, nil
}

func (s *SQLStore) List(ctx context.Context, opts ListOptions) ([]*Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts`
	if opts.PublishedOnly {
		query += ` WHERE published = 1`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list posts")
	}
	defer func() { _ = rows.Close() }()

	var result []*Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, errors.WithStack(rows.Err())
}

func (s *SQLStore) Close() error {
	return errors.WithStack(s.db.Close())
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(row scanner) (*Post, error) {
	var (
		p                Post
		subtitle, cover  sql.NullString
		created, updated int64
	)
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &subtitle, &p.Author, &cover, &p.Content, &p.Published, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan post")
	}

	if subtitle.Valid {
		p.Subtitle = &subtitle.String
	}
	if cover.Valid {
		p.CoverImage = &cover.String
	}
	p.CreatedAt = time.UnixMilli(created).UTC()
	p.UpdatedAt = time.UnixMilli(updated).UTC()
	return &p, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
