// package repositories provides persistence layer implementations for all model types.
//
// Each repository implements models.Repository[T] for a specific entity type.
package repositories

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/ytid/internal/shared"
)

// scanner is satisfied by both [sql.Row] and [sql.Rows].
type scanner interface {
	Scan(dest ...any) error
}

// requireAffected turns a zero-row UPDATE or DELETE into [shared.ErrRecordNotFound].
func requireAffected(result sql.Result, kind, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s %s", shared.ErrRecordNotFound, kind, id)
	}
	return nil
}

// limitClause reads criteria["limit"] and returns a LIMIT clause with its argument.
func limitClause(criteria map[string]any) (string, []any) {
	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		return " LIMIT ?", []any{limit}
	}
	return "", nil
}
