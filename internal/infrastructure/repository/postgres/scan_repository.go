package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/mvcarvalho/docsentinel/internal/core/domain"
)

// ScanRepository persists scan jobs and their analysis results in a single
// scans table. Result columns stay NULL until the worker completes the job.
type ScanRepository struct {
	db *sql.DB
}

func NewScanRepository(db *sql.DB) *ScanRepository {
	return &ScanRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *ScanRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026052101)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS scans (
	id TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	mime_type TEXT NOT NULL,
	storage_path TEXT NOT NULL,
	size_bytes BIGINT NOT NULL,
	status TEXT NOT NULL,
	error_message TEXT,
	score_total DOUBLE PRECISION,
	technical_score DOUBLE PRECISION,
	ia_score DOUBLE PRECISION,
	risk_level TEXT,
	recommendation TEXT,
	flags JSONB,
	justification TEXT,
	has_hidden_pages BOOLEAN,
	page_details JSONB,
	completed_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_scans_status ON scans(status);
CREATE INDEX IF NOT EXISTS idx_scans_created_at ON scans(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *ScanRepository) Create(ctx context.Context, job *domain.ScanJob) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO scans (
	id, filename, mime_type, storage_path, size_bytes, status, error_message, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`,
		job.ID, job.FileName, job.MimeType, job.StoragePath, job.SizeBytes,
		string(job.Status), job.Error, job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert scan: %w", err)
	}
	return nil
}

func (r *ScanRepository) GetJob(ctx context.Context, id string) (*domain.ScanJob, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, filename, mime_type, storage_path, size_bytes, status, error_message, created_at, updated_at
FROM scans
WHERE id = $1
`, id)

	var job domain.ScanJob
	var status string
	var errMessage sql.NullString

	err := row.Scan(
		&job.ID, &job.FileName, &job.MimeType, &job.StoragePath, &job.SizeBytes,
		&status, &errMessage, &job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrScanNotFound, "get scan job", fmt.Errorf("scan %s", id))
		}
		return nil, fmt.Errorf("scan job row: %w", err)
	}

	job.Status = domain.ScanStatus(status)
	job.Error = errMessage.String
	return &job, nil
}

// UpdateStatus advances the job lifecycle. Completed and failed rows are
// final: the guarded WHERE clause leaves them untouched, so a redelivered
// queue message cannot flip a finished scan back to processing.
func (r *ScanRepository) UpdateStatus(ctx context.Context, id string, status domain.ScanStatus, errMessage string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE scans
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1 AND status NOT IN ('completed', 'failed')
`, id, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update scan status: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return r.notFoundUnlessTerminal(ctx, id, "update scan status")
	}
	return nil
}

// notFoundUnlessTerminal disambiguates a zero-row guarded update: a missing
// row is ErrScanNotFound, an already-terminal row is a no-op.
func (r *ScanRepository) notFoundUnlessTerminal(ctx context.Context, id, operation string) error {
	var status string
	err := r.db.QueryRowContext(ctx, `SELECT status FROM scans WHERE id = $1`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.WrapError(domain.ErrScanNotFound, operation, fmt.Errorf("scan %s", id))
	}
	if err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}
	return nil
}

func (r *ScanRepository) SaveResult(ctx context.Context, result *domain.ScanResult) error {
	flagsJSON, err := json.Marshal(result.Flags)
	if err != nil {
		return fmt.Errorf("marshal flags: %w", err)
	}
	pagesJSON, err := json.Marshal(result.PageDetails)
	if err != nil {
		return fmt.Errorf("marshal page details: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
UPDATE scans
SET score_total = $2, technical_score = $3, ia_score = $4, risk_level = $5,
	recommendation = $6, flags = $7, justification = $8, has_hidden_pages = $9,
	page_details = $10, completed_at = $11, updated_at = $12
WHERE id = $1 AND completed_at IS NULL
`,
		result.ID, result.ScoreTotal, result.TechnicalScore, result.IAScore, string(result.RiskLevel),
		result.Recommendation, flagsJSON, result.Justification, result.HasHiddenPages,
		pagesJSON, result.CreatedAt, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save scan result: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return r.notFoundUnlessTerminal(ctx, result.ID, "save scan result")
	}
	return nil
}

func (r *ScanRepository) GetResult(ctx context.Context, id string) (*domain.ScanResult, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, filename, score_total, technical_score, ia_score, risk_level,
	recommendation, flags, justification, has_hidden_pages, page_details, completed_at
FROM scans
WHERE id = $1 AND completed_at IS NOT NULL
`, id)

	var result domain.ScanResult
	var riskLevel sql.NullString
	var recommendation, justification sql.NullString
	var hasHiddenPages sql.NullBool
	var flagsRaw, pagesRaw []byte
	var completedAt sql.NullTime

	err := row.Scan(
		&result.ID, &result.FileName, &result.ScoreTotal, &result.TechnicalScore, &result.IAScore,
		&riskLevel, &recommendation, &flagsRaw, &justification, &hasHiddenPages, &pagesRaw, &completedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrScanNotFound, "get scan result", fmt.Errorf("scan %s", id))
		}
		return nil, fmt.Errorf("scan result row: %w", err)
	}

	if len(flagsRaw) > 0 {
		if err := json.Unmarshal(flagsRaw, &result.Flags); err != nil {
			return nil, fmt.Errorf("unmarshal flags: %w", err)
		}
	}
	if len(pagesRaw) > 0 {
		if err := json.Unmarshal(pagesRaw, &result.PageDetails); err != nil {
			return nil, fmt.Errorf("unmarshal page details: %w", err)
		}
	}

	result.RiskLevel = domain.RiskLevel(riskLevel.String)
	result.Recommendation = recommendation.String
	result.Justification = justification.String
	result.HasHiddenPages = hasHiddenPages.Bool
	result.CreatedAt = completedAt.Time
	return &result, nil
}
