// internal/types/export.go
package types

/*
 * Domain types for the fixed-width export.
 *
 * Provides ExportSpec, ExportField, MappingRuleDef, RecordContext and
 * ValidationFinding used by internal/mapping, internal/fixedwidth and
 * internal/validate. These types are storage agnostic - database rows and
 * layout files are converted to them at the store/layout boundary.
 *
 * Key types:
 *   - ExportField: one fixed-position column of the output line
 *   - MappingRuleDef: raw rule text as stored (parsed by internal/mapping)
 *   - RecordContext: per-record bundle of source rows and responses
 *   - ValidationFinding: non-fatal per-field finding
 */

// Source table names accepted by COL: source expressions.
const (
	TableAssessment     = "ASSESSMENT"
	TableDeployer       = "DEPLOYER"
	TableProviderReview = "PROVIDER_REVIEW"
)

// ExportSpec is the header of a fixed-width layout.
type ExportSpec struct {
	ID        ExportSpecID `db:"export_spec_id"`
	Name      string       `db:"spec_name"`
	Version   string       `db:"spec_version"`
	RowLength int          `db:"row_length"`
}

// ExportField is one named, fixed-position column of the output line.
// StartPos and EndPos are 1-indexed and inclusive; Length = EndPos-StartPos+1.
type ExportField struct {
	ID         ExportFieldID `db:"export_field_id"`
	Name       string        `db:"field_name"`
	StartPos   int           `db:"start_pos"`
	EndPos     int           `db:"end_pos"`
	Length     int           `db:"field_length"`
	DomainType string        `db:"domain_type"` // empty when the field has no domain
}

// MappingRuleDef is an unparsed mapping rule as stored in the catalog.
// Empty TransformPipeline and PadRule mean "no transforms" and "no pad rule".
type MappingRuleDef struct {
	ExportFieldID     ExportFieldID `db:"export_field_id"`
	SourceExpression  string        `db:"source_expression"`
	TransformPipeline string        `db:"transform_pipeline"`
	PadRule           string        `db:"pad_rule"`
	DefaultValue      string        `db:"default_value"`
}

// Row is one flat source row keyed by column name.
// Values are whatever the database driver produced (string, []byte,
// int64, float64, bool, time.Time or nil).
type Row map[string]any

// RecordContext is the per-record input bundle for field resolution.
// Read-only during resolution; owned by the caller for one record.
type RecordContext struct {
	Assessment     Row
	Deployer       Row
	ProviderReview Row
	Responses      map[string]string // key = ResponseKey(question, field)
}

// Table returns the row for a source table name, or nil for unknown names.
func (c *RecordContext) Table(name string) Row {
	if c == nil {
		return nil
	}
	switch name {
	case TableAssessment:
		return c.Assessment
	case TableDeployer:
		return c.Deployer
	case TableProviderReview:
		return c.ProviderReview
	default:
		return nil
	}
}

// Response returns the normalized response for a question/field pair.
func (c *RecordContext) Response(questionCode, fieldName string) (string, bool) {
	if c == nil {
		return "", false
	}
	v, ok := c.Responses[ResponseKey(questionCode, fieldName)]
	return v, ok
}

// ResponseKey builds the responses map key "QUESTION_CODE:FIELD_NAME".
func ResponseKey(questionCode, fieldName string) string {
	return questionCode + ":" + fieldName
}

// ValidationFinding is one non-fatal problem found in a rendered record.
type ValidationFinding struct {
	RecordOrdinal   int    `db:"record_ordinal"`
	ExportFieldName string `db:"export_field_name"`
	ErrorCode       string `db:"error_code"`
	Expected        string `db:"expected"`
	Actual          string `db:"actual"`
	Message         string `db:"message"`
}

// ErrorCount is the number of findings recorded for one error code.
type ErrorCount struct {
	ErrorCode string `db:"error_code"`
	Count     int    `db:"cnt"`
}
