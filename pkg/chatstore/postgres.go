package chatstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx postgres driver registered as 'pgx'
)

// PostgresStore keeps chat preferences and watch subscriptions in
// Postgres. Schema setup is idempotent via Migrate.
type PostgresStore struct {
	db *sql.DB
}

var _ Store = (*PostgresStore)(nil)

// OpenPostgres connects, verifies the connection, and applies the schema.
func OpenPostgres(ctx context.Context, url string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &PostgresStore{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS chat_languages (
			chat_id BIGINT PRIMARY KEY,
			lang TEXT NOT NULL,
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS watches (
			chat_id BIGINT NOT NULL,
			handle TEXT NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			PRIMARY KEY (chat_id, handle)
		)`,
		`CREATE TABLE IF NOT EXISTS watch_state (
			handle TEXT PRIMARY KEY,
			last_post_id TEXT NOT NULL,
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_watches_handle ON watches(handle)`,
	}
	for i, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d failed: %w", i, err)
		}
	}
	return nil
}

func (s *PostgresStore) ChatLanguage(ctx context.Context, chatID int64) (string, error) {
	var lang string
	err := s.db.QueryRowContext(ctx,
		`SELECT lang FROM chat_languages WHERE chat_id = $1`, chatID).Scan(&lang)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read chat language: %w", err)
	}
	return lang, nil
}

func (s *PostgresStore) SetChatLanguage(ctx context.Context, chatID int64, lang string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_languages(chat_id, lang, updated_at) VALUES($1, $2, NOW())
		 ON CONFLICT(chat_id) DO UPDATE SET lang = EXCLUDED.lang, updated_at = NOW()`,
		chatID, lang)
	if err != nil {
		return fmt.Errorf("save chat language: %w", err)
	}
	return nil
}

func (s *PostgresStore) AddWatch(ctx context.Context, chatID int64, handle string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO watches(chat_id, handle) VALUES($1, $2)
		 ON CONFLICT(chat_id, handle) DO NOTHING`,
		chatID, handle)
	if err != nil {
		return fmt.Errorf("add watch: %w", err)
	}
	return nil
}

func (s *PostgresStore) RemoveWatch(ctx context.Context, chatID int64, handle string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM watches WHERE chat_id = $1 AND handle = $2`, chatID, handle)
	if err != nil {
		return fmt.Errorf("remove watch: %w", err)
	}
	return nil
}

func (s *PostgresStore) WatchesForChat(ctx context.Context, chatID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT handle FROM watches WHERE chat_id = $1 ORDER BY handle`, chatID)
	if err != nil {
		return nil, fmt.Errorf("list chat watches: %w", err)
	}
	defer rows.Close()

	var handles []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, err
		}
		handles = append(handles, h)
	}
	return handles, rows.Err()
}

func (s *PostgresStore) Watches(ctx context.Context) ([]Watch, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT chat_id, handle FROM watches ORDER BY handle, chat_id`)
	if err != nil {
		return nil, fmt.Errorf("list watches: %w", err)
	}
	defer rows.Close()

	var watches []Watch
	for rows.Next() {
		var w Watch
		if err := rows.Scan(&w.ChatID, &w.Handle); err != nil {
			return nil, err
		}
		watches = append(watches, w)
	}
	return watches, rows.Err()
}

func (s *PostgresStore) LastSeenPostID(ctx context.Context, handle string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT last_post_id FROM watch_state WHERE handle = $1`, handle).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read watch state: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) SetLastSeenPostID(ctx context.Context, handle, postID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO watch_state(handle, last_post_id, updated_at) VALUES($1, $2, NOW())
		 ON CONFLICT(handle) DO UPDATE SET last_post_id = EXCLUDED.last_post_id, updated_at = NOW()`,
		handle, postID)
	if err != nil {
		return fmt.Errorf("save watch state: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error { return s.db.Close() }
