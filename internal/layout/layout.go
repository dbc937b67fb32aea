// internal/layout/layout.go
package layout

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/HealthAssessmentORG/SPSCC-CS490-SeniorProject-HealthAssessment/internal/mapping"
	"github.com/HealthAssessmentORG/SPSCC-CS490-SeniorProject-HealthAssessment/internal/types"
)

/*
 * Layout files.
 *
 * A layout file describes one fixed-width export spec in YAML: header,
 * mapping set name and ordered fields, each with an optional inline rule.
 *
 *   spec_name: DD2795
 *   spec_version: "2020-06"
 *   mapping_set: default
 *   fields:
 *     - name: DODID
 *       start_pos: 1
 *       length: 10
 *       values: "9999999999"
 *       rule: {source: "COL:DEPLOYER.dod_id", pad: "pad:left:0"}
 *
 * Loading workflow:
 *   1. Strict decode (unknown keys are errors)
 *   2. Defaults: order from position, end_pos or length inferred from the
 *      other, mapping set "default", fields sorted by order
 *   3. Struct validation (validator tags), then the geometry identity
 *      length = end_pos - start_pos + 1 per field
 *   4. Row length: max end_pos unless row_length is given
 *
 * Every failure wraps types.ErrInvalidLayout.
 */

// DefaultMappingSet names the mapping set used when a layout names none.
const DefaultMappingSet = "default"

// File is a decoded layout file.
type File struct {
	SpecName    string  `yaml:"spec_name" validate:"required"`
	SpecVersion string  `yaml:"spec_version" validate:"required"`
	RowLength   int     `yaml:"row_length" validate:"gte=0"`
	MappingSet  string  `yaml:"mapping_set"`
	Fields      []Field `yaml:"fields" validate:"required,min=1,dive"`
}

// Field is one export field of a layout file. EndPos and Length may be
// omitted; one is inferred from the other.
type Field struct {
	Order       int    `yaml:"order" validate:"gte=0"`
	Question    string `yaml:"question"`
	Name        string `yaml:"name" validate:"required"`
	StartPos    int    `yaml:"start_pos" validate:"gte=1"`
	EndPos      int    `yaml:"end_pos" validate:"gte=1"`
	Length      int    `yaml:"length" validate:"gte=1"`
	Description string `yaml:"description"`
	Values      string `yaml:"values"`
	DomainType  string `yaml:"domain_type" validate:"omitempty,oneof=TEXT DATE_YYYYMMDD DODID10 ENUM_YN ENUM SPEC_RAW"`
	Rule        *Rule  `yaml:"rule"`
}

// Rule is the inline mapping rule of a field.
type Rule struct {
	Source    string `yaml:"source" validate:"required"`
	Transform string `yaml:"transform"`
	Pad       string `yaml:"pad"`
	Default   string `yaml:"default"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report yaml key names instead of Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// LoadFile reads and validates a layout file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout file %s: %w", path, err)
	}

	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes, normalizes and validates layout YAML.
func Parse(data []byte) (*File, error) {
	var f File

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrInvalidLayout, err)
	}

	applyDefaults(&f)

	if err := check(&f); err != nil {
		return nil, err
	}
	return &f, nil
}

func applyDefaults(f *File) {
	if f.MappingSet == "" {
		f.MappingSet = DefaultMappingSet
	}

	for i := range f.Fields {
		fd := &f.Fields[i]
		if fd.Order == 0 {
			fd.Order = i + 1
		}
		switch {
		case fd.EndPos == 0 && fd.Length > 0:
			fd.EndPos = fd.StartPos + fd.Length - 1
		case fd.Length == 0 && fd.EndPos > 0:
			fd.Length = fd.EndPos - fd.StartPos + 1
		}
	}

	slices.SortStableFunc(f.Fields, func(a, b Field) int {
		return a.Order - b.Order
	})

	if f.RowLength == 0 {
		for _, fd := range f.Fields {
			f.RowLength = max(f.RowLength, fd.EndPos)
		}
	}
}

func check(f *File) error {
	if err := validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fmt.Errorf("%w: %s", types.ErrInvalidLayout, formatValidationErrors(verrs))
		}
		return fmt.Errorf("%w: %w", types.ErrInvalidLayout, err)
	}

	for _, field := range f.ExportFields() {
		if err := mapping.CheckGeometry(field); err != nil {
			return fmt.Errorf("%w: %w", types.ErrInvalidLayout, err)
		}
	}
	return nil
}

func formatValidationErrors(verrs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		// Drop the root struct name from the namespace.
		_, ns, _ := strings.Cut(e.Namespace(), ".")
		if e.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", ns, e.Tag(), e.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s is %s", ns, e.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

// ExportFields returns the fields as export fields. Field ids are the
// 1-based position after sorting, formatted "F<n>", stable for one
// loaded file.
func (f *File) ExportFields() []types.ExportField {
	out := make([]types.ExportField, 0, len(f.Fields))
	for i, fd := range f.Fields {
		out = append(out, types.ExportField{
			ID:         fieldID(i),
			Name:       fd.Name,
			StartPos:   fd.StartPos,
			EndPos:     fd.EndPos,
			Length:     fd.Length,
			DomainType: fd.Domain().Type,
		})
	}
	return out
}

// RuleDefs returns the inline rules keyed to the ids of ExportFields.
func (f *File) RuleDefs() []types.MappingRuleDef {
	var defs []types.MappingRuleDef
	for i, fd := range f.Fields {
		if fd.Rule == nil {
			continue
		}
		defs = append(defs, types.MappingRuleDef{
			ExportFieldID:     fieldID(i),
			SourceExpression:  fd.Rule.Source,
			TransformPipeline: fd.Rule.Transform,
			PadRule:           fd.Rule.Pad,
			DefaultValue:      fd.Rule.Default,
		})
	}
	return defs
}

// Compile parses the inline rules and compiles the writer plan, reporting
// the first broken rule.
func (f *File) Compile() ([]mapping.WriterFieldPlan, error) {
	return mapping.CompileDefinitions(f.ExportFields(), f.RuleDefs())
}

// Catalog converts the file into a catalog import.
func (f *File) Catalog() types.CatalogImport {
	fields := make([]types.CatalogField, 0, len(f.Fields))
	for _, fd := range f.Fields {
		cf := types.CatalogField{
			Order:         fd.Order,
			QuestionCode:  fd.Question,
			Name:          fd.Name,
			StartPos:      fd.StartPos,
			EndPos:        fd.EndPos,
			Length:        fd.Length,
			Description:   fd.Description,
			ValuesSpecRaw: fd.Values,
			Domain:        fd.Domain(),
		}
		if fd.Rule != nil {
			cf.Rule = &types.CatalogRule{
				SourceExpression:  fd.Rule.Source,
				TransformPipeline: fd.Rule.Transform,
				PadRule:           fd.Rule.Pad,
				DefaultValue:      fd.Rule.Default,
			}
		}
		fields = append(fields, cf)
	}

	return types.CatalogImport{
		SpecName:       f.SpecName,
		SpecVersion:    f.SpecVersion,
		RowLength:      f.RowLength,
		MappingSetName: f.MappingSet,
		Fields:         fields,
	}
}

func fieldID(i int) types.ExportFieldID {
	return types.ExportFieldID(fmt.Sprintf("F%d", i+1))
}
