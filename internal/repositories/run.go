package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/ytid/internal/models"
	"github.com/desertthunder/ytid/internal/shared"
)

const runColumns = `id, input_path, output_path, strategy, pool_size, max_retries, total, resolved, failed, skipped, retries, status, error, started_at, finished_at`

// RunRepository implements models.Repository[*models.RunRecord] for run history.
//
// It also satisfies tasks.RunRecorder so the engine can store a record after every run.
type RunRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.RunRecord] = (*RunRepository)(nil)

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a run record, generating an ID when the record has none
func (r *RunRepository) Create(run *models.RunRecord) error {
	if run.RunID == "" {
		run.RunID = shared.GenerateID()
	}
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO runs (` + runColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		run.RunID,
		run.InputPath,
		run.OutputPath,
		run.Strategy,
		run.PoolSize,
		run.MaxRetries,
		run.Total,
		run.Resolved,
		run.Failed,
		run.Skipped,
		run.Retries,
		run.Status,
		run.Error,
		run.StartedAt.UTC(),
		run.FinishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// RecordRun stores rec. It implements tasks.RunRecorder.
func (r *RunRepository) RecordRun(rec *models.RunRecord) error {
	return r.Create(rec)
}

// Get retrieves a run by ID
func (r *RunRepository) Get(id string) (*models.RunRecord, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE id = ?`
	return r.scan(r.db.QueryRow(query, id))
}

// Latest retrieves the most recently started run
func (r *RunRepository) Latest() (*models.RunRecord, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC LIMIT 1`
	return r.scan(r.db.QueryRow(query))
}

// Update overwrites the counters and status of an existing run
func (r *RunRepository) Update(run *models.RunRecord) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		UPDATE runs
		SET total = ?, resolved = ?, failed = ?, skipped = ?, retries = ?, status = ?, error = ?, finished_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query,
		run.Total,
		run.Resolved,
		run.Failed,
		run.Skipped,
		run.Retries,
		run.Status,
		run.Error,
		run.FinishedAt.UTC(),
		run.RunID,
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return requireAffected(result, "run", run.RunID)
}

// Delete removes a run by ID
func (r *RunRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	return requireAffected(result, "run", id)
}

// List retrieves runs, newest first.
//
// Supported criteria: "status" (string), "input_path" (string), "limit" (int).
func (r *RunRepository) List(criteria map[string]any) ([]*models.RunRecord, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE 1 = 1`
	args := []any{}

	if status, ok := criteria["status"].(string); ok && status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}
	if input, ok := criteria["input_path"].(string); ok && input != "" {
		query += " AND input_path = ?"
		args = append(args, input)
	}

	query += " ORDER BY started_at DESC"
	limit, limitArgs := limitClause(criteria)
	query += limit
	args = append(args, limitArgs...)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.RunRecord
	for rows.Next() {
		run, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return runs, nil
}

func (r *RunRepository) scan(row scanner) (*models.RunRecord, error) {
	var run models.RunRecord
	err := row.Scan(
		&run.RunID,
		&run.InputPath,
		&run.OutputPath,
		&run.Strategy,
		&run.PoolSize,
		&run.MaxRetries,
		&run.Total,
		&run.Resolved,
		&run.Failed,
		&run.Skipped,
		&run.Retries,
		&run.Status,
		&run.Error,
		&run.StartedAt,
		&run.FinishedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: run", shared.ErrRecordNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	return &run, nil
}
