// Package storage provides the relational run-history store and the vector
// store abstraction backing semantic code search.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	// postgres driver
	_ "github.com/lib/pq"

	"github.com/driftaldev/redline/internal/core"
)

//go:generate mockgen -destination=../../mocks/mock_store.go -package=mocks github.com/driftaldev/redline/internal/storage Store

// Repository is the persisted record of an indexed repository.
type Repository struct {
	ID             int64     `db:"id"`
	FullName       string    `db:"full_name"`
	ClonePath      string    `db:"clone_path"`
	CollectionName string    `db:"collection_name"`
	EmbedderModel  string    `db:"embedder_model"`
	LastIndexedSHA string    `db:"last_indexed_sha"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// Store defines all database operations: run history plus repository
// index records.
type Store interface {
	SaveRun(ctx context.Context, run *core.ReviewRun) error
	GetRecentRuns(ctx context.Context, limit int) ([]core.ReviewRun, error)
	GetRunByID(ctx context.Context, id int64) (*core.ReviewRun, error)

	GetRepositoryByFullName(ctx context.Context, fullName string) (*Repository, error)
	CreateRepository(ctx context.Context, repo *Repository) error
	UpdateRepository(ctx context.Context, repo *Repository) error
}

type postgresStore struct {
	db *sqlx.DB
}

// NewStore creates a Postgres-backed Store.
func NewStore(db *sqlx.DB) Store {
	return &postgresStore{db: db}
}

// runRow maps the runs table; core.ReviewRun stays free of db tags.
type runRow struct {
	ID             int64     `db:"id"`
	RepoFullName   string    `db:"repo_full_name"`
	PRNumber       int       `db:"pr_number"`
	HeadSHA        string    `db:"head_sha"`
	ChangeType     string    `db:"change_type"`
	Complexity     string    `db:"complexity"`
	RiskScore      int       `db:"risk_score"`
	FilesReviewed  int       `db:"files_reviewed"`
	IssueCount     int       `db:"issue_count"`
	CriticalCount  int       `db:"critical_count"`
	HighCount      int       `db:"high_count"`
	DurationMillis int64     `db:"duration_ms"`
	Status         string    `db:"status"`
	CreatedAt      time.Time `db:"created_at"`
}

func (r runRow) toCore() core.ReviewRun {
	return core.ReviewRun{
		ID:             r.ID,
		RepoFullName:   r.RepoFullName,
		PRNumber:       r.PRNumber,
		HeadSHA:        r.HeadSHA,
		ChangeType:     r.ChangeType,
		Complexity:     r.Complexity,
		RiskScore:      r.RiskScore,
		FilesReviewed:  r.FilesReviewed,
		IssueCount:     r.IssueCount,
		CriticalCount:  r.CriticalCount,
		HighCount:      r.HighCount,
		DurationMillis: r.DurationMillis,
		Status:         r.Status,
		CreatedAt:      r.CreatedAt,
	}
}

// SaveRun inserts one completed run summary and backfills the generated ID.
func (s *postgresStore) SaveRun(ctx context.Context, run *core.ReviewRun) error {
	query := `
		INSERT INTO runs (
			repo_full_name, pr_number, head_sha, change_type, complexity,
			risk_score, files_reviewed, issue_count, critical_count,
			high_count, duration_ms, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`

	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	row := s.db.QueryRowContext(ctx, query,
		run.RepoFullName, run.PRNumber, run.HeadSHA, run.ChangeType,
		run.Complexity, run.RiskScore, run.FilesReviewed, run.IssueCount,
		run.CriticalCount, run.HighCount, run.DurationMillis, run.Status, createdAt)
	if err := row.Scan(&run.ID); err != nil {
		return fmt.Errorf("inserting run for %s: %w", run.RepoFullName, err)
	}
	return nil
}

// GetRecentRuns returns the newest runs first, up to limit.
func (s *postgresStore) GetRecentRuns(ctx context.Context, limit int) ([]core.ReviewRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []runRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT * FROM runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent runs: %w", err)
	}

	runs := make([]core.ReviewRun, len(rows))
	for i, r := range rows {
		runs[i] = r.toCore()
	}
	return runs, nil
}

// GetRunByID returns one run, or nil when it does not exist.
func (s *postgresStore) GetRunByID(ctx context.Context, id int64) (*core.ReviewRun, error) {
	var row runRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM runs WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching run %d: %w", id, err)
	}
	run := row.toCore()
	return &run, nil
}

// GetRepositoryByFullName returns the repository record, or nil when the
// repository was never indexed.
func (s *postgresStore) GetRepositoryByFullName(ctx context.Context, fullName string) (*Repository, error) {
	var repo Repository
	err := s.db.GetContext(ctx, &repo,
		`SELECT * FROM repositories WHERE full_name = $1`, fullName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching repository %s: %w", fullName, err)
	}
	return &repo, nil
}

// CreateRepository inserts a new repository record and backfills its ID.
func (s *postgresStore) CreateRepository(ctx context.Context, repo *Repository) error {
	query := `
		INSERT INTO repositories (full_name, clone_path, collection_name, embedder_model, last_indexed_sha, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id`

	row := s.db.QueryRowContext(ctx, query,
		repo.FullName, repo.ClonePath, repo.CollectionName, repo.EmbedderModel, repo.LastIndexedSHA)
	if err := row.Scan(&repo.ID); err != nil {
		return fmt.Errorf("inserting repository %s: %w", repo.FullName, err)
	}
	return nil
}

// UpdateRepository rewrites the mutable fields of an existing record.
func (s *postgresStore) UpdateRepository(ctx context.Context, repo *Repository) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE repositories
		SET clone_path = $1, collection_name = $2, embedder_model = $3,
		    last_indexed_sha = $4, updated_at = NOW()
		WHERE id = $5`,
		repo.ClonePath, repo.CollectionName, repo.EmbedderModel, repo.LastIndexedSHA, repo.ID)
	if err != nil {
		return fmt.Errorf("updating repository %s: %w", repo.FullName, err)
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("repository %s not found for update", repo.FullName)
	}
	return nil
}
