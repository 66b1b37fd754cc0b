package prompts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackzampolin/promptshelf/internal/catalog"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists overrides in a local SQLite file.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

var sqliteMigrations = []string{
	`CREATE TABLE IF NOT EXISTS prompt_overrides (
		doc_id      TEXT PRIMARY KEY,
		slug        TEXT,
		title       TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		content     TEXT NOT NULL DEFAULT '',
		tier        INTEGER NOT NULL DEFAULT 3,
		categories  TEXT NOT NULL DEFAULT '[]',
		version     INTEGER NOT NULL DEFAULT 1,
		status      TEXT NOT NULL DEFAULT 'ACTIVE',
		attributes  TEXT NOT NULL DEFAULT '{}',
		updated_at  TEXT NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_prompt_overrides_active_slug
		ON prompt_overrides(slug) WHERE status = 'ACTIVE'`,
}

const sqliteColumns = `doc_id, slug, title, description, content, tier, categories, version, status, attributes, updated_at`

// activeSlugMatch matches a row by slug, or by doc_id for legacy rows without one.
const activeSlugMatch = `status = 'ACTIVE' AND (slug = ? OR ((slug IS NULL OR slug = '') AND doc_id = ?))`

// OpenSQLiteStore opens (or creates) the database at path and applies migrations.
func OpenSQLiteStore(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite has a single writer.
	db.SetMaxOpenConns(1)

	for _, m := range sqliteMigrations {
		if _, err := db.Exec(m); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	logger.Info("sqlite override store ready", "path", path)
	return &SQLiteStore{db: db, logger: logger}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOverride(row rowScanner) (*Override, error) {
	var (
		o          Override
		slug       sql.NullString
		tier       int
		categories string
		attrs      string
		updatedAt  string
	)
	if err := row.Scan(&o.DocID, &slug, &o.Title, &o.Description, &o.Content, &tier,
		&categories, &o.Version, &o.Status, &attrs, &updatedAt); err != nil {
		return nil, err
	}
	o.Slug = slug.String
	o.Tier = catalog.Tier(tier)
	o.UpdatedAt = parseTime(updatedAt)
	if categories != "" {
		if err := json.Unmarshal([]byte(categories), &o.Categories); err != nil {
			return nil, fmt.Errorf("failed to decode categories for %s: %w", o.DocID, err)
		}
	}
	normalize(&o)
	if err := decodeAttributes(attrs, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// Get returns the active override for slug.
func (s *SQLiteStore) Get(ctx context.Context, slug string) (*Override, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqliteColumns+` FROM prompt_overrides WHERE `+activeSlugMatch, slug, slug)
	o, err := scanOverride(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return o, nil
}

// GetMany fetches all requested slugs in a single query.
func (s *SQLiteStore) GetMany(ctx context.Context, slugs []string) (map[string]*Override, error) {
	out := make(map[string]*Override, len(slugs))
	if len(slugs) == 0 {
		return out, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(slugs)), ",")
	args := make([]any, 0, len(slugs)*2)
	for _, slug := range slugs {
		args = append(args, slug)
	}
	for _, slug := range slugs {
		args = append(args, slug)
	}

	query := fmt.Sprintf(`SELECT %s FROM prompt_overrides
		WHERE status = 'ACTIVE' AND (slug IN (%s) OR ((slug IS NULL OR slug = '') AND doc_id IN (%s)))`,
		sqliteColumns, placeholders, placeholders)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		o, err := scanOverride(rows)
		if err != nil {
			return nil, err
		}
		out[o.Slug] = o
	}
	return out, rows.Err()
}

// GetByDocID returns the active override with the given document id.
func (s *SQLiteStore) GetByDocID(ctx context.Context, docID string) (*Override, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqliteColumns+` FROM prompt_overrides WHERE status = 'ACTIVE' AND doc_id = ?`, docID)
	o, err := scanOverride(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return o, nil
}

// List returns every active override ordered by slug.
func (s *SQLiteStore) List(ctx context.Context) ([]Override, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqliteColumns+` FROM prompt_overrides WHERE status = 'ACTIVE' ORDER BY COALESCE(NULLIF(slug, ''), doc_id)`)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var out []Override
	for rows.Next() {
		o, err := scanOverride(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

// Create inserts o inside a transaction and assigns its DocID.
func (s *SQLiteStore) Create(ctx context.Context, o *Override) error {
	if o.Slug == "" {
		return fmt.Errorf("%w: empty slug", ErrValidation)
	}
	attrs, err := encodeAttributes(o)
	if err != nil {
		return err
	}
	categories, err := json.Marshal(nonNil(o.Categories))
	if err != nil {
		return fmt.Errorf("failed to encode categories: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var n int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM prompt_overrides WHERE `+activeSlugMatch, o.Slug, o.Slug).Scan(&n); err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("%w: override %s already exists", ErrConflict, o.Slug)
	}

	docID := uuid.NewString()
	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO prompt_overrides (`+sqliteColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		docID, o.Slug, o.Title, o.Description, o.Content, int(o.Tier), string(categories),
		o.Version, StatusActive, attrs, formatTime(now))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: override %s already exists", ErrConflict, o.Slug)
		}
		return fmt.Errorf("insert failed: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit failed: %w", err)
	}

	o.DocID = docID
	o.Status = StatusActive
	o.UpdatedAt = now
	s.logger.Debug("created override", "slug", o.Slug, "version", o.Version)
	return nil
}

// Update writes o only if the stored version still equals expectedVersion.
func (s *SQLiteStore) Update(ctx context.Context, o *Override, expectedVersion int) error {
	attrs, err := encodeAttributes(o)
	if err != nil {
		return err
	}
	categories, err := json.Marshal(nonNil(o.Categories))
	if err != nil {
		return fmt.Errorf("failed to encode categories: %w", err)
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE prompt_overrides
		SET title = ?, description = ?, content = ?, tier = ?, categories = ?,
			version = ?, attributes = ?, updated_at = ?
		WHERE `+activeSlugMatch+` AND version = ?`,
		o.Title, o.Description, o.Content, int(o.Tier), string(categories),
		o.Version, attrs, formatTime(now),
		o.Slug, o.Slug, expectedVersion)
	if err != nil {
		return fmt.Errorf("update failed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s is no longer at version %d", ErrConflict, o.Slug, expectedVersion)
	}

	o.UpdatedAt = now
	return nil
}

// Delete removes the override for slug.
func (s *SQLiteStore) Delete(ctx context.Context, slug string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM prompt_overrides WHERE `+activeSlugMatch, slug, slug); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	return nil
}

// isUniqueViolation checks the driver message; modernc does not export a
// typed constraint error through database/sql.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
