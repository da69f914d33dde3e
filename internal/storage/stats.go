package storage

import (
	"context"
	"fmt"
	"time"
)

// DataStats holds aggregate statistics about one user's stored data.
type DataStats struct {
	SavedPrograms int64      `json:"saved_programs"`
	Imports       int64      `json:"imports"`
	FailedImports int64      `json:"failed_imports"`
	LastSaved     *time.Time `json:"last_saved"`
	LastImport    *time.Time `json:"last_import"`
}

// GetDataStats returns aggregate statistics for a user's stored data.
func (db *DB) GetDataStats(ctx context.Context, userID int) (*DataStats, error) {
	stats := &DataStats{}

	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), MAX(updated_at) FROM kv_entries WHERE user_id = $1 AND key LIKE 'program:%'`, userID,
	).Scan(&stats.SavedPrograms, &stats.LastSaved)
	if err != nil {
		return nil, fmt.Errorf("counting saved programs: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'error'), MAX(created_at)
		 FROM import_logs WHERE user_id = $1`, userID,
	).Scan(&stats.Imports, &stats.FailedImports, &stats.LastImport)
	if err != nil {
		return nil, fmt.Errorf("counting imports: %w", err)
	}

	return stats, nil
}
