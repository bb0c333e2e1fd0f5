// Package sqlite persists review history in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/techn4r/ai-code-reviewer/internal/usecase/review"
)

// Store implements the reviewer's Store port using SQLite.
type Store struct {
	db *sql.DB
}

var _ review.Store = (*Store)(nil)

// NewStore opens (or creates) a SQLite store at the given path.
// Use ":memory:" for an in-memory database in tests.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return s, nil
}

func (s *Store) createSchema() error {
	schema := `
	-- One row per reviewed file or code block
	CREATE TABLE IF NOT EXISTS reviews (
		review_id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at INTEGER NOT NULL,
		file_path TEXT,
		language TEXT NOT NULL,
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		mode TEXT NOT NULL,
		total_issues INTEGER NOT NULL,
		quality_score REAL NOT NULL,
		result_json TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_reviews_created ON reviews(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_reviews_file ON reviews(file_path);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveResult stores one review outcome.
func (s *Store) SaveResult(ctx context.Context, rec review.StoreRecord) error {
	query := `
		INSERT INTO reviews (created_at, file_path, language, provider, model, mode, total_issues, quality_score, result_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		time.Now().Unix(),
		rec.FilePath,
		rec.Language,
		rec.Provider,
		rec.Model,
		rec.Mode,
		rec.TotalIssues,
		rec.QualityScore,
		rec.ResultJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to save review: %w", err)
	}
	return nil
}

// Run is one row of review history.
type Run struct {
	ReviewID     int64
	CreatedAt    time.Time
	FilePath     string
	Language     string
	Provider     string
	Model        string
	Mode         string
	TotalIssues  int
	QualityScore float64
}

// RecentRuns returns up to limit most recent reviews, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT review_id, created_at, COALESCE(file_path, ''), language, provider, model, mode, total_issues, quality_score
		FROM reviews
		ORDER BY created_at DESC, review_id DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var createdAt int64
		if err := rows.Scan(&r.ReviewID, &createdAt, &r.FilePath, &r.Language,
			&r.Provider, &r.Model, &r.Mode, &r.TotalIssues, &r.QualityScore); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		r.CreatedAt = time.Unix(createdAt, 0)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// ResultJSON returns the stored result document for one review.
func (s *Store) ResultJSON(ctx context.Context, reviewID int64) (string, error) {
	var doc sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT result_json FROM reviews WHERE review_id = ?`, reviewID).Scan(&doc)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("review %d not found", reviewID)
	}
	if err != nil {
		return "", fmt.Errorf("failed to load review %d: %w", reviewID, err)
	}
	return doc.String, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
