package store

import (
	"context"
	"fmt"
	"time"

	"github.com/HealthAssessmentORG/SPSCC-CS490-SeniorProject-HealthAssessment/internal/core/db"
	"github.com/HealthAssessmentORG/SPSCC-CS490-SeniorProject-HealthAssessment/internal/types"
)

// CreateExportFile records the start of an export with status running.
func (s *Store) CreateExportFile(ctx context.Context, f types.ExportFile) error {
	_, err := s.q.Exec(ctx, "insert-export-file",
		f.ID, f.ExportSpecID, f.MappingSetID, f.RunID, f.FilePath, f.RowLength, s.q.Timestamp(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("failed to create export file %s: %w", f.ID, err)
	}
	return nil
}

// FinishExportFile sets the final status and record count of an export.
func (s *Store) FinishExportFile(ctx context.Context, id types.ExportFileID, status string, recordCount int) error {
	res, err := s.q.Exec(ctx, "finish-export-file", status, recordCount, s.q.Timestamp(time.Now()), id)
	if err != nil {
		return fmt.Errorf("failed to finish export file %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("export file %s: %w", id, types.ErrNotFound)
	}
	return nil
}

// GetExportFile loads an export file row.
func (s *Store) GetExportFile(ctx context.Context, id types.ExportFileID) (types.ExportFile, error) {
	var f types.ExportFile
	if err := s.q.Get(ctx, "get-export-file", &f, id); err != nil {
		return types.ExportFile{}, notFound(err, "export file", id)
	}
	return f, nil
}

// SaveFindings persists findings of an export in one transaction.
func (s *Store) SaveFindings(ctx context.Context, id types.ExportFileID, findings []types.ValidationFinding) error {
	if len(findings) == 0 {
		return nil
	}

	return s.q.InTx(ctx, func(q *db.Queries) error {
		for _, f := range findings {
			_, err := q.Exec(ctx, "insert-validation-error",
				types.NewID(), id, f.RecordOrdinal, f.ExportFieldName, f.ErrorCode,
				nullIfEmpty(f.Expected), nullIfEmpty(f.Actual), f.Message,
			)
			if err != nil {
				return fmt.Errorf("failed to save finding for record %d field %s: %w", f.RecordOrdinal, f.ExportFieldName, err)
			}
		}
		return nil
	})
}

// CountFindings returns the number of findings per error code, most
// frequent first.
func (s *Store) CountFindings(ctx context.Context, id types.ExportFileID) ([]types.ErrorCount, error) {
	var counts []types.ErrorCount
	if err := s.q.Select(ctx, "count-validation-errors", &counts, id); err != nil {
		return nil, fmt.Errorf("failed to count findings of export file %s: %w", id, err)
	}
	return counts, nil
}

// ListFindings returns the findings of an export ordered by record ordinal.
func (s *Store) ListFindings(ctx context.Context, id types.ExportFileID) ([]types.ValidationFinding, error) {
	var findings []types.ValidationFinding
	if err := s.q.Select(ctx, "list-validation-errors", &findings, id); err != nil {
		return nil, fmt.Errorf("failed to list findings of export file %s: %w", id, err)
	}
	return findings, nil
}
