package export

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/HealthAssessmentORG/SPSCC-CS490-SeniorProject-HealthAssessment/internal/types"
)

// fakeStore is an in-memory Store.
type fakeStore struct {
	mu sync.Mutex

	spec    types.ExportSpec
	set     types.MappingSet
	fields  []types.ExportField
	defs    []types.MappingRuleDef
	runID   types.RunID
	records []types.RecordContext
	loadErr error

	files    map[types.ExportFileID]types.ExportFile
	findings map[types.ExportFileID][]types.ValidationFinding
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		spec:     types.ExportSpec{ID: "spec-1", Name: "TEST", Version: "1"},
		set:      types.MappingSet{ID: "set-1", ExportSpecID: "spec-1", Name: "default"},
		runID:    "run-1",
		files:    make(map[types.ExportFileID]types.ExportFile),
		findings: make(map[types.ExportFileID][]types.ValidationFinding),
	}
}

func (f *fakeStore) GetExportSpec(_ context.Context, id types.ExportSpecID) (types.ExportSpec, error) {
	if id != f.spec.ID {
		return types.ExportSpec{}, fmt.Errorf("export spec %s: %w", id, types.ErrNotFound)
	}
	return f.spec, nil
}

func (f *fakeStore) ListExportFields(context.Context, types.ExportSpecID) ([]types.ExportField, error) {
	return f.fields, nil
}

func (f *fakeStore) GetMappingSet(_ context.Context, id types.MappingSetID) (types.MappingSet, error) {
	if id != f.set.ID {
		return types.MappingSet{}, fmt.Errorf("mapping set %s: %w", id, types.ErrNotFound)
	}
	return f.set, nil
}

func (f *fakeStore) ListMappingRules(context.Context, types.MappingSetID) ([]types.MappingRuleDef, error) {
	return f.defs, nil
}

func (f *fakeStore) RunExists(_ context.Context, id types.RunID) error {
	if id != f.runID {
		return fmt.Errorf("run %s: %w", id, types.ErrNotFound)
	}
	return nil
}

func (f *fakeStore) LoadRecordContexts(context.Context, types.RunID) ([]types.RecordContext, error) {
	return f.records, f.loadErr
}

func (f *fakeStore) CreateExportFile(_ context.Context, file types.ExportFile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	file.Status = types.ExportStatusRunning
	f.files[file.ID] = file
	return nil
}

func (f *fakeStore) FinishExportFile(_ context.Context, id types.ExportFileID, status string, recordCount int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	file, ok := f.files[id]
	if !ok {
		return fmt.Errorf("export file %s: %w", id, types.ErrNotFound)
	}
	file.Status = status
	file.RecordCount = recordCount
	f.files[id] = file
	return nil
}

func (f *fakeStore) SaveFindings(_ context.Context, id types.ExportFileID, findings []types.ValidationFinding) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findings[id] = append(f.findings[id], findings...)
	return nil
}

func (f *fakeStore) CountFindings(_ context.Context, id types.ExportFileID) ([]types.ErrorCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	byCode := make(map[string]int)
	for _, fd := range f.findings[id] {
		byCode[fd.ErrorCode]++
	}
	counts := make([]types.ErrorCount, 0, len(byCode))
	for code, n := range byCode {
		counts = append(counts, types.ErrorCount{ErrorCode: code, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].ErrorCode < counts[j].ErrorCode
	})
	return counts, nil
}

// onlyFile returns the single export file recorded by the fake.
func (f *fakeStore) onlyFile() (types.ExportFile, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.files) != 1 {
		return types.ExportFile{}, false
	}
	for _, file := range f.files {
		return file, true
	}
	return types.ExportFile{}, false
}
