// Package export runs one fixed-width export end to end: catalog load,
// plan compilation, rendering, file write and findings bookkeeping.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lestrrat-go/strftime"
	"go.uber.org/zap"

	"github.com/HealthAssessmentORG/SPSCC-CS490-SeniorProject-HealthAssessment/internal/core/config"
	"github.com/HealthAssessmentORG/SPSCC-CS490-SeniorProject-HealthAssessment/internal/fixedwidth"
	"github.com/HealthAssessmentORG/SPSCC-CS490-SeniorProject-HealthAssessment/internal/mapping"
	"github.com/HealthAssessmentORG/SPSCC-CS490-SeniorProject-HealthAssessment/internal/types"
)

// Store is the persistence the export needs. Implemented by store.Store.
type Store interface {
	GetExportSpec(ctx context.Context, id types.ExportSpecID) (types.ExportSpec, error)
	ListExportFields(ctx context.Context, id types.ExportSpecID) ([]types.ExportField, error)
	GetMappingSet(ctx context.Context, id types.MappingSetID) (types.MappingSet, error)
	ListMappingRules(ctx context.Context, id types.MappingSetID) ([]types.MappingRuleDef, error)
	RunExists(ctx context.Context, id types.RunID) error
	LoadRecordContexts(ctx context.Context, runID types.RunID) ([]types.RecordContext, error)
	CreateExportFile(ctx context.Context, f types.ExportFile) error
	FinishExportFile(ctx context.Context, id types.ExportFileID, status string, recordCount int) error
	SaveFindings(ctx context.Context, id types.ExportFileID, findings []types.ValidationFinding) error
	CountFindings(ctx context.Context, id types.ExportFileID) ([]types.ErrorCount, error)
}

// Request selects what to export. An empty OutputPath uses the configured
// directory and file pattern.
type Request struct {
	SpecID       types.ExportSpecID
	MappingSetID types.MappingSetID
	RunID        types.RunID
	OutputPath   string
}

// Result describes a completed export.
type Result struct {
	ExportFileID types.ExportFileID
	Path         string
	RecordCount  int
	FindingCount int
	ErrorCounts  []types.ErrorCount
}

// Service runs exports. Safe for sequential reuse; each Run is independent.
type Service struct {
	store Store
	cfg   *config.ExportConfig
	log   *zap.Logger
	now   func() time.Time
}

// NewService creates a service and ensures the output directory exists.
func NewService(store Store, cfg *config.ExportConfig, log *zap.Logger) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if cfg == nil {
		return nil, fmt.Errorf("cfg cannot be nil")
	}
	if log == nil {
		log = zap.NewNop()
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", cfg.OutputDir, err)
	}

	return &Service{store: store, cfg: cfg, log: log, now: time.Now}, nil
}

// OutputPath returns the default export path for time t.
func (s *Service) OutputPath(t time.Time) (string, error) {
	f, err := strftime.New(s.cfg.FilePattern)
	if err != nil {
		return "", fmt.Errorf("invalid file pattern %q: %w", s.cfg.FilePattern, err)
	}
	return filepath.Join(s.cfg.OutputDir, f.FormatString(t)), nil
}

// Run performs one export:
//  1. load spec, mapping set, fields and rules; compile the plan
//  2. create the export_file row (running)
//  3. load records, render them, write the file in ordinal order
//  4. persist findings and finish the export_file row (completed)
//
// Errors in step 1 leave no trace in the database. Later errors mark the
// export_file row failed.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	log := s.log.With(
		zap.String("export_spec_id", string(req.SpecID)),
		zap.String("mapping_set_id", string(req.MappingSetID)),
		zap.String("run_id", string(req.RunID)),
	)

	spec, plan, err := s.compile(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.store.RunExists(ctx, req.RunID); err != nil {
		return nil, err
	}

	path := req.OutputPath
	if path == "" {
		if path, err = s.OutputPath(s.now()); err != nil {
			return nil, err
		}
	}

	file := types.ExportFile{
		ID:           types.NewExportFileID(),
		ExportSpecID: spec.ID,
		MappingSetID: req.MappingSetID,
		RunID:        req.RunID,
		FilePath:     path,
		RowLength:    spec.RowLength,
	}
	if err := s.store.CreateExportFile(ctx, file); err != nil {
		return nil, err
	}
	log = log.With(zap.String("export_file_id", string(file.ID)), zap.String("path", path))
	log.Info("export started", zap.Int("row_length", spec.RowLength), zap.Int("fields", len(plan)))

	result, err := s.write(ctx, file, plan)
	if err != nil {
		// Record the failure even when ctx is already cancelled.
		if ferr := s.store.FinishExportFile(context.WithoutCancel(ctx), file.ID, types.ExportStatusFailed, 0); ferr != nil {
			log.Error("failed to mark export failed", zap.Error(ferr))
		}
		log.Error("export failed", zap.Error(err))
		return nil, err
	}

	log.Info("export completed",
		zap.Int("records", result.RecordCount),
		zap.Int("findings", result.FindingCount),
	)
	for _, c := range result.ErrorCounts {
		log.Warn("validation findings", zap.String("error_code", c.ErrorCode), zap.Int("count", c.Count))
	}
	return result, nil
}

// compile loads the catalog side of a request and compiles the plan.
// Nothing is written.
func (s *Service) compile(ctx context.Context, req Request) (types.ExportSpec, []mapping.WriterFieldPlan, error) {
	spec, err := s.store.GetExportSpec(ctx, req.SpecID)
	if err != nil {
		return types.ExportSpec{}, nil, err
	}
	if spec.RowLength <= 0 {
		return types.ExportSpec{}, nil, fmt.Errorf("%w: spec %s has row length %d", types.ErrInvalidRowLength, spec.ID, spec.RowLength)
	}

	set, err := s.store.GetMappingSet(ctx, req.MappingSetID)
	if err != nil {
		return types.ExportSpec{}, nil, err
	}
	if set.ExportSpecID != spec.ID {
		return types.ExportSpec{}, nil, fmt.Errorf("%w: mapping set %s, spec %s", types.ErrMappingSetMismatch, set.ID, spec.ID)
	}

	fields, err := s.store.ListExportFields(ctx, spec.ID)
	if err != nil {
		return types.ExportSpec{}, nil, err
	}
	defs, err := s.store.ListMappingRules(ctx, set.ID)
	if err != nil {
		return types.ExportSpec{}, nil, err
	}

	plan, err := mapping.CompileDefinitions(fields, defs)
	if err != nil {
		return types.ExportSpec{}, nil, fmt.Errorf("failed to compile mapping set %s: %w", set.Name, err)
	}
	return spec, plan, nil
}

func (s *Service) write(ctx context.Context, file types.ExportFile, plan []mapping.WriterFieldPlan) (*Result, error) {
	records, err := s.store.LoadRecordContexts(ctx, file.RunID)
	if err != nil {
		return nil, err
	}

	rendered, err := Render(ctx, file.RowLength, plan, records, s.cfg.Workers)
	if err != nil {
		return nil, err
	}

	lines := make([]string, len(rendered))
	var findings []types.ValidationFinding
	for i, r := range rendered {
		lines[i] = r.Line
		findings = append(findings, r.Findings...)
	}

	if err := fixedwidth.WriteLines(file.FilePath, file.RowLength, lines); err != nil {
		return nil, err
	}
	if err := s.store.SaveFindings(ctx, file.ID, findings); err != nil {
		return nil, err
	}
	if err := s.store.FinishExportFile(ctx, file.ID, types.ExportStatusCompleted, len(lines)); err != nil {
		return nil, err
	}

	counts, err := s.store.CountFindings(ctx, file.ID)
	if err != nil {
		return nil, err
	}

	return &Result{
		ExportFileID: file.ID,
		Path:         file.FilePath,
		RecordCount:  len(lines),
		FindingCount: len(findings),
		ErrorCounts:  counts,
	}, nil
}
