// internal/mapping/compile.go
package mapping

import (
	"fmt"
	"strings"

	"github.com/HealthAssessmentORG/SPSCC-CS490-SeniorProject-HealthAssessment/internal/types"
)

/*
 * Writer plan compilation.
 *
 * Compiles ordered export fields plus parsed rules into one WriterFieldPlan
 * per field. Each plan carries a resolver closure that maps a RecordContext
 * to the field's final, length-normalized text.
 *
 * Resolution workflow (per record, per field):
 *   1. No rule for the field -> Length spaces
 *   2. Resolve raw text: COL from the named row, RESP from the responses map,
 *      falling back to the rule's default value when absent or null
 *   3. Apply transforms left to right
 *   4. Pad or truncate to exactly Length characters
 *
 * Concurrency: resolvers close over the rule and field metadata only. A
 * compiled plan holds no per-record state and may be shared read-only by any
 * number of concurrent line builds.
 *
 * Geometry: start_pos >= 1 and length = end_pos - start_pos + 1 must hold for
 * every field. Violations are rejected here, never repaired.
 */

// Resolver produces the exact-length text of one field for one record.
type Resolver func(ctx *types.RecordContext) string

// WriterFieldPlan is the compiled, immutable form of one export field.
type WriterFieldPlan struct {
	FieldName  string
	StartPos   int // 1-indexed
	Length     int
	DomainType string
	Resolve    Resolver
}

// Compile builds the writer plan for fields in their given order.
// rules maps export field id to parsed rule; fields without a rule render blank.
func Compile(fields []types.ExportField, rules map[types.ExportFieldID]Rule) ([]WriterFieldPlan, error) {
	plan := make([]WriterFieldPlan, 0, len(fields))

	for _, field := range fields {
		if err := CheckGeometry(field); err != nil {
			return nil, err
		}

		var resolve Resolver
		if rule, ok := rules[field.ID]; ok {
			resolve = compileResolver(rule, field.Length)
		} else {
			resolve = blankResolver(field.Length)
		}

		plan = append(plan, WriterFieldPlan{
			FieldName:  field.Name,
			StartPos:   field.StartPos,
			Length:     field.Length,
			DomainType: field.DomainType,
			Resolve:    resolve,
		})
	}

	return plan, nil
}

// CompileDefinitions parses raw rule definitions and compiles the plan.
// Parse errors abort compilation before any plan is returned.
func CompileDefinitions(fields []types.ExportField, defs []types.MappingRuleDef) ([]WriterFieldPlan, error) {
	rules, err := ParseRules(defs)
	if err != nil {
		return nil, err
	}
	return Compile(fields, rules)
}

// CheckGeometry reports ErrInvalidFieldGeometry unless start_pos >= 1,
// length >= 1 and length = end_pos - start_pos + 1.
func CheckGeometry(field types.ExportField) error {
	if field.StartPos < 1 || field.Length < 1 || field.Length != field.EndPos-field.StartPos+1 {
		return fmt.Errorf("%w: field %q start_pos=%d end_pos=%d length=%d",
			types.ErrInvalidFieldGeometry, field.Name, field.StartPos, field.EndPos, field.Length)
	}
	return nil
}

func blankResolver(length int) Resolver {
	blank := strings.Repeat(" ", length)
	return func(*types.RecordContext) string {
		return blank
	}
}

// compileResolver captures the rule by value; the returned closure never
// mutates it.
func compileResolver(rule Rule, length int) Resolver {
	source := rule.Source
	transforms := append([]TransformOp(nil), rule.Transforms...)
	pad := rule.Pad
	defaultValue := rule.DefaultValue

	return func(ctx *types.RecordContext) string {
		var raw string
		switch source.Kind {
		case SourceColumn:
			raw = columnValue(ctx.Table(source.Table), source.Column, defaultValue)
		case SourceResponse:
			if v, ok := ctx.Response(source.QuestionCode, source.FieldName); ok {
				raw = v
			} else {
				raw = defaultValue
			}
		default:
			raw = defaultValue
		}

		raw = ApplyTransforms(raw, transforms)
		return PadToLength(raw, length, pad)
	}
}
