// Package store persists domain documents in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"moxbot/internal/core/domain"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	kind       TEXT NOT NULL,
	id         TEXT NOT NULL,
	body       BLOB NOT NULL,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (kind, id)
);`

type SQLite struct {
	db *sql.DB
}

// Open opens or creates the document database at path and applies the
// schema.
func Open(path string) (*SQLite, error) {
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open document db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping document db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	log.Info().Str("path", path).Msg("document store opened")

	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) LoadDocument(ctx context.Context, kind, id string) (*domain.Document, error) {
	doc := &domain.Document{Kind: kind, ID: id}

	var updated int64
	err := s.db.QueryRowContext(ctx,
		`SELECT body, updated_at FROM documents WHERE kind = ? AND id = ?`, kind, id).
		Scan(&doc.Body, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}

	doc.UpdatedAt = time.UnixMilli(updated).UTC()
	return doc, nil
}

func (s *SQLite) ListDocuments(ctx context.Context, kind string) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, body, updated_at FROM documents WHERE kind = ? ORDER BY id`, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		doc := domain.Document{Kind: kind}
		var updated int64
		if err := rows.Scan(&doc.ID, &doc.Body, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		doc.UpdatedAt = time.UnixMilli(updated).UTC()
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

func (s *SQLite) SaveDocument(ctx context.Context, doc *domain.Document) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (kind, id, body, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (kind, id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		doc.Kind, doc.ID, doc.Body, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}

	return nil
}
