package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/crisislens/analyzer/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS analysis_records (
	document_id TEXT PRIMARY KEY,
	content_hash TEXT NOT NULL,
	detected_language TEXT NOT NULL,
	overall_status TEXT NOT NULL,
	event_category TEXT NOT NULL,
	sentiment_label TEXT NOT NULL,
	payload TEXT NOT NULL,
	analyzed_at TIMESTAMP NOT NULL
)`

// SQLStore persists records in PostgreSQL or SQLite. The full record lives in
// a JSON payload column; a few fields are broken out for querying.
type SQLStore struct {
	db *sqlx.DB
}

// NewPostgres opens a PostgreSQL-backed store and ensures the schema.
func NewPostgres(ctx context.Context, dsn string) (*SQLStore, error) {
	return newSQL(ctx, "postgres", dsn)
}

// NewSQLite opens a SQLite-backed store and ensures the schema.
func NewSQLite(ctx context.Context, path string) (*SQLStore, error) {
	return newSQL(ctx, "sqlite3", path)
}

func newSQL(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", driver, err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: ping %s: %w", driver, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: ensure schema: %w", err)
	}
	return &SQLStore{db: db}, nil
}

// Save implements Store. A conflicting document id keeps the existing row.
func (s *SQLStore) Save(ctx context.Context, record *domain.AnalysisRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("storage: marshal record: %w", err)
	}

	query := s.db.Rebind(`
		INSERT INTO analysis_records
			(document_id, content_hash, detected_language, overall_status, event_category, sentiment_label, payload, analyzed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (document_id) DO NOTHING`)
	_, err = s.db.ExecContext(ctx, query,
		record.DocumentID,
		record.ContentHash,
		record.DetectedLanguage,
		string(record.OverallStatus),
		record.Event.Category,
		record.Sentiment.Label,
		string(payload),
		record.AnalyzedAt,
	)
	if err != nil {
		return fmt.Errorf("storage: insert record: %w", err)
	}
	return nil
}

// Get implements Store.
func (s *SQLStore) Get(ctx context.Context, documentID string) (*domain.AnalysisRecord, error) {
	var payload string
	query := s.db.Rebind(`SELECT payload FROM analysis_records WHERE document_id = ?`)
	err := s.db.GetContext(ctx, &payload, query, documentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: select record: %w", err)
	}

	var record domain.AnalysisRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, fmt.Errorf("storage: unmarshal record: %w", err)
	}
	return &record, nil
}

// Close implements Store.
func (s *SQLStore) Close() error { return s.db.Close() }
