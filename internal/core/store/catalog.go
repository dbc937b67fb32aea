package store

import (
	"context"
	"fmt"

	"github.com/HealthAssessmentORG/SPSCC-CS490-SeniorProject-HealthAssessment/internal/core/db"
	"github.com/HealthAssessmentORG/SPSCC-CS490-SeniorProject-HealthAssessment/internal/types"
)

// GetExportSpec loads an export spec header by id.
func (s *Store) GetExportSpec(ctx context.Context, id types.ExportSpecID) (types.ExportSpec, error) {
	var spec types.ExportSpec
	if err := s.q.Get(ctx, "get-export-spec", &spec, id); err != nil {
		return types.ExportSpec{}, notFound(err, "export spec", id)
	}
	return spec, nil
}

// FindExportSpec loads an export spec header by name and version.
func (s *Store) FindExportSpec(ctx context.Context, name, version string) (types.ExportSpec, error) {
	var spec types.ExportSpec
	if err := s.q.Get(ctx, "find-export-spec", &spec, name, version); err != nil {
		return types.ExportSpec{}, notFound(err, "export spec", name+"@"+version)
	}
	return spec, nil
}

// ListExportFields returns the fields of a spec in field order, with the
// domain type of their value domain (empty when none).
func (s *Store) ListExportFields(ctx context.Context, id types.ExportSpecID) ([]types.ExportField, error) {
	var fields []types.ExportField
	if err := s.q.Select(ctx, "list-export-fields", &fields, id); err != nil {
		return nil, fmt.Errorf("failed to list export fields for spec %s: %w", id, err)
	}
	return fields, nil
}

// GetMappingSet loads a mapping set by id.
func (s *Store) GetMappingSet(ctx context.Context, id types.MappingSetID) (types.MappingSet, error) {
	var set types.MappingSet
	if err := s.q.Get(ctx, "get-mapping-set", &set, id); err != nil {
		return types.MappingSet{}, notFound(err, "mapping set", id)
	}
	return set, nil
}

// FindMappingSet loads a mapping set by spec and name.
func (s *Store) FindMappingSet(ctx context.Context, specID types.ExportSpecID, name string) (types.MappingSet, error) {
	var set types.MappingSet
	if err := s.q.Get(ctx, "find-mapping-set", &set, specID, name); err != nil {
		return types.MappingSet{}, notFound(err, "mapping set", name)
	}
	return set, nil
}

// ListMappingRules returns the raw rule definitions of a mapping set in
// insertion order. Absent pipeline, pad rule and default read as "".
func (s *Store) ListMappingRules(ctx context.Context, id types.MappingSetID) ([]types.MappingRuleDef, error) {
	var defs []types.MappingRuleDef
	if err := s.q.Select(ctx, "list-mapping-rules", &defs, id); err != nil {
		return nil, fmt.Errorf("failed to list mapping rules for set %s: %w", id, err)
	}
	return defs, nil
}

// ListEnumValues returns the codes of a value domain ordered by code.
func (s *Store) ListEnumValues(ctx context.Context, domainID string) ([]types.EnumValue, error) {
	var values []types.EnumValue
	if err := s.q.Select(ctx, "list-domain-enum-values", &values, domainID); err != nil {
		return nil, fmt.Errorf("failed to list enum values for domain %s: %w", domainID, err)
	}
	return values, nil
}

// ImportCatalog writes a layout in one transaction: upsert the spec by
// (name, version), replace its fields (dependent mapping rules are deleted
// first), upsert value domains and enum codes, upsert the mapping set and
// replace its rules.
func (s *Store) ImportCatalog(ctx context.Context, in types.CatalogImport) (types.ImportResult, error) {
	var result types.ImportResult

	err := s.q.InTx(ctx, func(q *db.Queries) error {
		tx := New(q)

		specID, err := tx.UpsertExportSpec(ctx, in.SpecName, in.SpecVersion, in.RowLength)
		if err != nil {
			return err
		}

		fieldIDs, err := tx.ReplaceExportFields(ctx, specID, in.Fields)
		if err != nil {
			return err
		}

		setID, err := tx.UpsertMappingSet(ctx, specID, in.MappingSetName)
		if err != nil {
			return err
		}

		var defs []types.MappingRuleDef
		for i, f := range in.Fields {
			if f.Rule == nil {
				continue
			}
			defs = append(defs, types.MappingRuleDef{
				ExportFieldID:     fieldIDs[i],
				SourceExpression:  f.Rule.SourceExpression,
				TransformPipeline: f.Rule.TransformPipeline,
				PadRule:           f.Rule.PadRule,
				DefaultValue:      f.Rule.DefaultValue,
			})
		}
		if err := tx.ReplaceMappingRules(ctx, setID, defs); err != nil {
			return err
		}

		result = types.ImportResult{
			ExportSpecID: specID,
			MappingSetID: setID,
			FieldCount:   len(fieldIDs),
			RuleCount:    len(defs),
		}
		return nil
	})
	if err != nil {
		return types.ImportResult{}, err
	}
	return result, nil
}

// UpsertExportSpec inserts a spec or updates the row length of the existing
// spec with the same name and version, and returns its id.
func (s *Store) UpsertExportSpec(ctx context.Context, name, version string, rowLength int) (types.ExportSpecID, error) {
	if rowLength <= 0 {
		return "", fmt.Errorf("%w: %d", types.ErrInvalidRowLength, rowLength)
	}

	if _, err := s.q.Exec(ctx, "upsert-export-spec", types.NewID(), name, version, rowLength); err != nil {
		return "", fmt.Errorf("failed to upsert export spec %s@%s: %w", name, version, err)
	}

	spec, err := s.FindExportSpec(ctx, name, version)
	if err != nil {
		return "", err
	}
	return spec.ID, nil
}

// ReplaceExportFields deletes the fields of a spec, and every mapping rule
// pointing at them, then inserts fields in order. Returned ids are
// index-aligned with fields.
func (s *Store) ReplaceExportFields(ctx context.Context, specID types.ExportSpecID, fields []types.CatalogField) ([]types.ExportFieldID, error) {
	for _, name := range []string{"delete-spec-mapping-rules", "delete-field-mapping-rules", "delete-export-fields"} {
		if _, err := s.q.Exec(ctx, name, specID); err != nil {
			return nil, fmt.Errorf("failed to clear fields of spec %s (%s): %w", specID, name, err)
		}
	}

	ids := make([]types.ExportFieldID, 0, len(fields))
	for _, f := range fields {
		domainID, err := s.UpsertValueDomain(ctx, f.Domain)
		if err != nil {
			return nil, err
		}

		id := types.ExportFieldID(types.NewID())
		_, err = s.q.Exec(ctx, "insert-export-field",
			id, specID, nullIfEmpty(domainID), f.Order, nullIfEmpty(f.QuestionCode), f.Name,
			f.StartPos, f.EndPos, f.Length, nullIfEmpty(f.Description), nullIfEmpty(f.ValuesSpecRaw),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert export field %s: %w", f.Name, err)
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// UpsertValueDomain finds or creates the domain keyed by (type, raw spec) and
// adds any enum codes it does not have yet. An empty domain type yields "".
func (s *Store) UpsertValueDomain(ctx context.Context, d types.ValueDomain) (string, error) {
	if d.Type == "" {
		return "", nil
	}

	if _, err := s.q.Exec(ctx, "insert-value-domain", types.NewID(), d.Type, d.RawSpec); err != nil {
		return "", fmt.Errorf("failed to upsert value domain %s: %w", d.Type, err)
	}

	var domainID string
	if err := s.q.Get(ctx, "find-value-domain", &domainID, d.Type, d.RawSpec); err != nil {
		return "", notFound(err, "value domain", d.Type)
	}

	for _, ev := range d.EnumValues {
		if _, err := s.q.Exec(ctx, "insert-domain-enum-value", types.NewID(), domainID, ev.Code, ev.Meaning); err != nil {
			return "", fmt.Errorf("failed to insert enum value %s of domain %s: %w", ev.Code, d.Type, err)
		}
	}

	return domainID, nil
}

// UpsertMappingSet finds or creates the named mapping set of a spec.
func (s *Store) UpsertMappingSet(ctx context.Context, specID types.ExportSpecID, name string) (types.MappingSetID, error) {
	if _, err := s.q.Exec(ctx, "insert-mapping-set", types.NewID(), specID, name); err != nil {
		return "", fmt.Errorf("failed to upsert mapping set %s: %w", name, err)
	}

	set, err := s.FindMappingSet(ctx, specID, name)
	if err != nil {
		return "", err
	}
	return set.ID, nil
}

// ReplaceMappingRules replaces every rule of a mapping set.
func (s *Store) ReplaceMappingRules(ctx context.Context, setID types.MappingSetID, defs []types.MappingRuleDef) error {
	if _, err := s.q.Exec(ctx, "delete-mapping-rules", setID); err != nil {
		return fmt.Errorf("failed to clear rules of mapping set %s: %w", setID, err)
	}

	for _, d := range defs {
		_, err := s.q.Exec(ctx, "insert-mapping-rule",
			types.NewID(), setID, d.ExportFieldID, d.SourceExpression,
			nullIfEmpty(d.TransformPipeline), nullIfEmpty(d.PadRule), nullIfEmpty(d.DefaultValue),
		)
		if err != nil {
			return fmt.Errorf("failed to insert mapping rule for field %s: %w", d.ExportFieldID, err)
		}
	}
	return nil
}
