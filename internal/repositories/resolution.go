package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/ytid/internal/models"
	"github.com/desertthunder/ytid/internal/shared"
)

const resolutionColumns = `id, query_key, query, video_id, strategy, hits, created_at, updated_at`

// ResolutionRepository implements models.Repository[*models.Resolution] for the resolution cache.
//
// Rows are keyed by a normalized query so equivalent searches share one entry.
type ResolutionRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.Resolution] = (*ResolutionRepository)(nil)

// NewResolutionRepository creates a new ResolutionRepository with the given database connection
func NewResolutionRepository(db *sql.DB) *ResolutionRepository {
	return &ResolutionRepository{db: db}
}

// Create inserts a new [models.Resolution] with a generated ID
func (r *ResolutionRepository) Create(res *models.Resolution) error {
	if err := res.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	res.SetID(shared.GenerateID())

	query := `
		INSERT INTO resolutions (` + resolutionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		res.ID(),
		res.QueryKey(),
		res.Query(),
		res.VideoID(),
		res.Strategy(),
		res.Hits(),
		res.CreatedAt(),
		res.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert resolution: %w", err)
	}
	return nil
}

// Get retrieves a resolution by ID
func (r *ResolutionRepository) Get(id string) (*models.Resolution, error) {
	query := `SELECT ` + resolutionColumns + ` FROM resolutions WHERE id = ?`
	return r.scan(r.db.QueryRow(query, id))
}

// GetByQueryKey retrieves the resolution cached for a normalized query
func (r *ResolutionRepository) GetByQueryKey(key string) (*models.Resolution, error) {
	query := `SELECT ` + resolutionColumns + ` FROM resolutions WHERE query_key = ?`
	return r.scan(r.db.QueryRow(query, key))
}

// Update changes the video ID and hit count of an existing resolution
func (r *ResolutionRepository) Update(res *models.Resolution) error {
	if err := res.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	res.SetUpdatedAt(now)

	query := `
		UPDATE resolutions
		SET video_id = ?, strategy = ?, hits = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query, res.VideoID(), res.Strategy(), res.Hits(), now, res.ID())
	if err != nil {
		return fmt.Errorf("failed to update resolution: %w", err)
	}
	return requireAffected(result, "resolution", res.ID())
}

// Upsert stores videoID for key, replacing any earlier mapping
func (r *ResolutionRepository) Upsert(res *models.Resolution) error {
	if err := res.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if res.ID() == "" {
		res.SetID(shared.GenerateID())
	}

	query := `
		INSERT INTO resolutions (` + resolutionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(query_key) DO UPDATE SET
			video_id = excluded.video_id,
			strategy = excluded.strategy,
			updated_at = excluded.updated_at
	`

	_, err := r.db.Exec(query,
		res.ID(),
		res.QueryKey(),
		res.Query(),
		res.VideoID(),
		res.Strategy(),
		res.Hits(),
		res.CreatedAt(),
		res.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert resolution: %w", err)
	}
	return nil
}

// Touch increments the hit counter for key
func (r *ResolutionRepository) Touch(key string) error {
	result, err := r.db.Exec(`UPDATE resolutions SET hits = hits + 1 WHERE query_key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to record cache hit: %w", err)
	}
	return requireAffected(result, "resolution", key)
}

// Delete removes a resolution by ID
func (r *ResolutionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM resolutions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete resolution: %w", err)
	}
	return requireAffected(result, "resolution", id)
}

// Clear removes every cached resolution and returns how many were deleted
func (r *ResolutionRepository) Clear() (int64, error) {
	result, err := r.db.Exec(`DELETE FROM resolutions`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear resolutions: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return n, nil
}

// List retrieves resolutions, most recently updated first.
//
// Supported criteria: "strategy" (string), "video_id" (string), "limit" (int).
func (r *ResolutionRepository) List(criteria map[string]any) ([]*models.Resolution, error) {
	query := `SELECT ` + resolutionColumns + ` FROM resolutions WHERE 1 = 1`
	args := []any{}

	if strategy, ok := criteria["strategy"].(string); ok && strategy != "" {
		query += " AND strategy = ?"
		args = append(args, strategy)
	}
	if videoID, ok := criteria["video_id"].(string); ok && videoID != "" {
		query += " AND video_id = ?"
		args = append(args, videoID)
	}

	query += " ORDER BY updated_at DESC, query_key ASC"
	limit, limitArgs := limitClause(criteria)
	query += limit
	args = append(args, limitArgs...)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query resolutions: %w", err)
	}
	defer rows.Close()

	var resolutions []*models.Resolution
	for rows.Next() {
		res, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		resolutions = append(resolutions, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return resolutions, nil
}

// Count returns the number of cached resolutions
func (r *ResolutionRepository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM resolutions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count resolutions: %w", err)
	}
	return n, nil
}

func (r *ResolutionRepository) scan(row scanner) (*models.Resolution, error) {
	var (
		id        string
		queryKey  string
		query     string
		videoID   string
		strategy  string
		hits      int
		createdAt time.Time
		updatedAt time.Time
	)

	err := row.Scan(&id, &queryKey, &query, &videoID, &strategy, &hits, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: resolution", shared.ErrRecordNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan resolution: %w", err)
	}

	return models.HydrateResolution(id, queryKey, query, videoID, strategy, hits, createdAt, updatedAt), nil
}
