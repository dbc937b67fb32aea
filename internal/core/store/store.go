// Package store reads and writes the export catalog, source records and
// export results through the named queries of internal/core/db.
package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/HealthAssessmentORG/SPSCC-CS490-SeniorProject-HealthAssessment/internal/core/db"
	"github.com/HealthAssessmentORG/SPSCC-CS490-SeniorProject-HealthAssessment/internal/types"
)

// Store wraps a Queries handle. Methods that write several rows run in one
// transaction via Queries.InTx.
type Store struct {
	q *db.Queries
}

// New creates a Store over q.
func New(q *db.Queries) *Store {
	return &Store{q: q}
}

// notFound maps sql.ErrNoRows to types.ErrNotFound with context.
func notFound(err error, what string, id any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %v: %w", what, id, types.ErrNotFound)
	}
	return fmt.Errorf("failed to load %s %v: %w", what, id, err)
}

// nullIfEmpty stores empty optional text as NULL.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
