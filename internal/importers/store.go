package importers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/fixbot/internal/db"
)

// Store keeps the record of imported catalog files.
type Store struct {
	db *db.DB
}

// NewStore creates a new importers store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Record saves an import outcome. ID, status and time are filled in when
// empty.
func (s *Store) Record(ctx context.Context, src Source) (*Source, error) {
	if src.ID == "" {
		src.ID = uuid.New().String()
	}
	if src.Status == "" {
		src.Status = StatusCompleted
	}
	if src.ImportedAt.IsZero() {
		src.ImportedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO import_sources (id, path, format, entries, status, error, imported_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		src.ID, src.Path, string(src.Format), src.Entries, src.Status, src.Error, src.ImportedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting import source: %w", err)
	}
	return &src, nil
}

// GetByID retrieves an import record. It returns nil when none exists.
func (s *Store) GetByID(ctx context.Context, id string) (*Source, error) {
	var src Source
	var format string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, path, format, entries, status, error, imported_at
		 FROM import_sources WHERE id = ?`, id,
	).Scan(&src.ID, &src.Path, &format, &src.Entries, &src.Status, &src.Error, &src.ImportedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting import source: %w", err)
	}
	src.Format = Format(format)
	return &src, nil
}

// List returns every import record, newest first.
func (s *Store) List(ctx context.Context) ([]Source, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, path, format, entries, status, error, imported_at
		 FROM import_sources ORDER BY imported_at DESC, rowid DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing import sources: %w", err)
	}
	defer rows.Close()

	var sources []Source
	for rows.Next() {
		var src Source
		var format string
		if err := rows.Scan(&src.ID, &src.Path, &format, &src.Entries, &src.Status, &src.Error, &src.ImportedAt); err != nil {
			return nil, fmt.Errorf("scanning import source: %w", err)
		}
		src.Format = Format(format)
		sources = append(sources, src)
	}
	return sources, rows.Err()
}

// Delete removes an import record. The imported knowledge stays.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM import_sources WHERE id = ?`, id)
	return err
}
