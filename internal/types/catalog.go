package types

// Export file statuses.
const (
	ExportStatusRunning   = "running"
	ExportStatusCompleted = "completed"
	ExportStatusFailed    = "failed"
)

// MappingSet groups the mapping rules used for one export spec.
type MappingSet struct {
	ID           MappingSetID `db:"mapping_set_id"`
	ExportSpecID ExportSpecID `db:"export_spec_id"`
	Name         string       `db:"mapping_name"`
}

// ExportFile is one produced export and its bookkeeping.
type ExportFile struct {
	ID           ExportFileID `db:"export_file_id"`
	ExportSpecID ExportSpecID `db:"export_spec_id"`
	MappingSetID MappingSetID `db:"mapping_set_id"`
	RunID        RunID        `db:"run_id"`
	FilePath     string       `db:"file_path"`
	RowLength    int          `db:"row_length"`
	RecordCount  int          `db:"record_count"`
	Status       string       `db:"status"`
}

// ValueDomain is the declared value domain of a field.
type ValueDomain struct {
	Type       string
	RawSpec    string
	EnumValues []EnumValue
}

// EnumValue is one code of an enumerated domain.
type EnumValue struct {
	Code    string `db:"code"`
	Meaning string `db:"meaning"`
}

// CatalogRule is the mapping rule text attached to a field on import.
type CatalogRule struct {
	SourceExpression  string
	TransformPipeline string
	PadRule           string
	DefaultValue      string
}

// CatalogField is one export field as imported into the catalog.
// Rule is nil for fields that render blank.
type CatalogField struct {
	Order         int
	QuestionCode  string
	Name          string
	StartPos      int
	EndPos        int
	Length        int
	Description   string
	ValuesSpecRaw string
	Domain        ValueDomain
	Rule          *CatalogRule
}

// CatalogImport is a complete layout ready to be written to the catalog:
// spec header, ordered fields and the mapping set holding their rules.
type CatalogImport struct {
	SpecName       string
	SpecVersion    string
	RowLength      int
	MappingSetName string
	Fields         []CatalogField
}

// ImportResult identifies the catalog rows written by an import.
type ImportResult struct {
	ExportSpecID ExportSpecID
	MappingSetID MappingSetID
	FieldCount   int
	RuleCount    int
}
