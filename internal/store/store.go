package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"postbox/internal/post"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrClosed is returned by operations issued after Close.
var ErrClosed = errors.New("store is closed")

// Store is the durable local cache of posts. It wraps a SQLite database and
// pushes a change notification to every subscriber after each committed
// mutation; subscribers re-query and emit a fresh snapshot.
type Store struct {
	db *sql.DB

	mu      sync.Mutex
	subs    map[int]chan struct{}
	nextSub int
	closed  bool
	done    chan struct{}
}

// Open opens (creating if needed) the database at path and applies pending
// schema migrations.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// modernc/sqlite serializes writers; a single connection sidesteps
	// SQLITE_BUSY between coordinators.
	db.SetMaxOpenConns(1)

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		db:   db,
		subs: make(map[int]chan struct{}),
		done: make(chan struct{}),
	}, nil
}

func runMigrations(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("init migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Close tears down all subscriptions and closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.done)
	s.mu.Unlock()
	return s.db.Close()
}

// Count reports the number of stored posts.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM post`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}

// UpsertMany inserts posts, replacing any row with the same id. The replace
// rewrites the whole row, so a re-fetched post comes back with read reset to
// false. Rows are written as independent statements; a mid-batch failure
// leaves earlier rows in place.
func (s *Store) UpsertMany(ctx context.Context, posts []post.Post) ([]int64, error) {
	if len(posts) == 0 {
		return nil, nil
	}
	stmt, err := s.db.PrepareContext(ctx,
		`INSERT OR REPLACE INTO post (id, user_id, title, body) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("prepare upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	ids := make([]int64, 0, len(posts))
	for _, p := range posts {
		res, err := stmt.ExecContext(ctx, p.ID, p.UserID, p.Title, p.Body)
		if err != nil {
			if len(ids) > 0 {
				s.broadcast()
			}
			return ids, fmt.Errorf("upsert post %d: %w", p.ID, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			id = p.ID
		}
		ids = append(ids, id)
	}
	s.broadcast()
	return ids, nil
}

// SetRead marks the given posts as read. Absent ids are silently ignored.
func (s *Store) SetRead(ctx context.Context, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE post SET read = 1 WHERE id IN (` + placeholders(len(ids)) + `)`
	res, err := s.db.ExecContext(ctx, query, idArgs(ids)...)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		s.broadcast()
	}
	return nil
}

// DeleteMany removes the given posts. Absent ids are silently ignored.
func (s *Store) DeleteMany(ctx context.Context, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	query := `DELETE FROM post WHERE id IN (` + placeholders(len(ids)) + `)`
	res, err := s.db.ExecContext(ctx, query, idArgs(ids)...)
	if err != nil {
		return fmt.Errorf("delete posts: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		s.broadcast()
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func idArgs(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

func (s *Store) queryAll(ctx context.Context) ([]post.Post, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, title, body, read FROM post ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var posts []post.Post
	for rows.Next() {
		var p post.Post
		if err := rows.Scan(&p.ID, &p.UserID, &p.Title, &p.Body, &p.Read); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return posts, nil
}

func (s *Store) queryOne(ctx context.Context, id int64) (post.Post, bool, error) {
	var p post.Post
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, body, read FROM post WHERE id = ?`, id).
		Scan(&p.ID, &p.UserID, &p.Title, &p.Body, &p.Read)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return post.Post{}, false, nil
	case err != nil:
		return post.Post{}, false, fmt.Errorf("query post %d: %w", id, err)
	}
	return p, true, nil
}
