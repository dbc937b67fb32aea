// internal/mapping/parse.go
package mapping

import (
	"fmt"
	"strings"

	"github.com/HealthAssessmentORG/SPSCC-CS490-SeniorProject-HealthAssessment/internal/types"
)

/*
 * Mapping rule parsing.
 *
 * Turns the three textual mini-languages stored with each mapping rule into
 * typed variants so resolution never re-parses raw text:
 *
 *   source expression:  COL:<TABLE>.<column> | RESP:<QUESTION_CODE>:<FIELD_NAME>
 *   transform pipeline: <op>("|"<op>)*, op in {trim, lower, date:yyyymmdd}
 *   pad rule:           pad:right:space | pad:left:0 | (absent)
 *
 * Failure policy:
 *   - Source expressions and transform tokens fail fast with a sentinel error
 *     wrapping the offending text. Rules are parsed once when loaded, so a
 *     broken rule aborts the export before any record is processed.
 *   - Unrecognized pad rules parse to PadNone. This leniency is observable
 *     behavior of existing layouts and is kept on purpose.
 */

// SourceKind discriminates the SourceExpr variants.
type SourceKind int

const (
	SourceUnspecified SourceKind = iota
	SourceColumn
	SourceResponse
)

// SourceExpr identifies where a raw value comes from.
// Table/Column are set for SourceColumn; QuestionCode/FieldName for SourceResponse.
type SourceExpr struct {
	Kind         SourceKind
	Table        string // one of types.TableAssessment, TableDeployer, TableProviderReview
	Column       string
	QuestionCode string
	FieldName    string
}

// String renders the expression back to its textual form.
func (s SourceExpr) String() string {
	switch s.Kind {
	case SourceColumn:
		return "COL:" + s.Table + "." + s.Column
	case SourceResponse:
		return "RESP:" + s.QuestionCode + ":" + s.FieldName
	default:
		return ""
	}
}

// TransformOp is one step of a transform pipeline.
type TransformOp int

const (
	OpTrim TransformOp = iota + 1
	OpLowercase
	OpDateToYYYYMMDD
)

// String returns the pipeline token for the op.
func (op TransformOp) String() string {
	switch op {
	case OpTrim:
		return "trim"
	case OpLowercase:
		return "lower"
	case OpDateToYYYYMMDD:
		return "date:yyyymmdd"
	default:
		return fmt.Sprintf("TransformOp(%d)", int(op))
	}
}

// PadRule governs how a value is forced to its exact field length.
type PadRule int

const (
	PadNone PadRule = iota
	PadRightSpace
	PadLeftZero
)

// Rule is a parsed mapping rule ready for compilation.
type Rule struct {
	ExportFieldID types.ExportFieldID
	Source        SourceExpr
	Transforms    []TransformOp
	Pad           PadRule
	DefaultValue  string
}

const (
	colPrefix  = "COL:"
	respPrefix = "RESP:"
)

// ParseSourceExpression parses COL:<TABLE>.<column> or RESP:<QUESTION>:<FIELD>.
// Returns ErrMalformedSourceExpression for unknown prefixes, unknown tables,
// a missing separator or the wrong number of RESP parts.
func ParseSourceExpression(text string) (SourceExpr, error) {
	switch {
	case strings.HasPrefix(text, colPrefix):
		rest := text[len(colPrefix):]
		dot := strings.IndexByte(rest, '.')
		if dot < 0 {
			return SourceExpr{}, malformedSource(text)
		}
		table, column := rest[:dot], rest[dot+1:]
		if !knownTable(table) || column == "" {
			return SourceExpr{}, malformedSource(text)
		}
		return SourceExpr{Kind: SourceColumn, Table: table, Column: column}, nil

	case strings.HasPrefix(text, respPrefix):
		parts := strings.Split(text[len(respPrefix):], ":")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return SourceExpr{}, malformedSource(text)
		}
		return SourceExpr{Kind: SourceResponse, QuestionCode: parts[0], FieldName: parts[1]}, nil

	default:
		return SourceExpr{}, malformedSource(text)
	}
}

func malformedSource(text string) error {
	return fmt.Errorf("%w: %q", types.ErrMalformedSourceExpression, text)
}

func knownTable(table string) bool {
	switch table {
	case types.TableAssessment, types.TableDeployer, types.TableProviderReview:
		return true
	default:
		return false
	}
}

// ParseTransformPipeline parses a "|"-separated list of transform tokens.
// Empty text yields an empty pipeline; empty tokens are skipped.
func ParseTransformPipeline(text string) ([]TransformOp, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	var ops []TransformOp
	for _, part := range strings.Split(text, "|") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		switch part {
		case "trim":
			ops = append(ops, OpTrim)
		case "lower":
			ops = append(ops, OpLowercase)
		case "date:yyyymmdd":
			ops = append(ops, OpDateToYYYYMMDD)
		default:
			return nil, fmt.Errorf("%w: %q", types.ErrUnknownTransformOp, part)
		}
	}
	return ops, nil
}

// ParsePadRule parses a pad rule. Never fails: anything unrecognized is PadNone.
func ParsePadRule(text string) PadRule {
	switch strings.TrimSpace(text) {
	case "pad:right:space":
		return PadRightSpace
	case "pad:left:0":
		return PadLeftZero
	default:
		return PadNone
	}
}

// ParseRule parses all mini-languages of one stored rule definition.
// Errors are wrapped with the export field id for diagnostics.
func ParseRule(def types.MappingRuleDef) (Rule, error) {
	source, err := ParseSourceExpression(def.SourceExpression)
	if err != nil {
		return Rule{}, fmt.Errorf("rule for export field %s: %w", def.ExportFieldID, err)
	}
	transforms, err := ParseTransformPipeline(def.TransformPipeline)
	if err != nil {
		return Rule{}, fmt.Errorf("rule for export field %s: %w", def.ExportFieldID, err)
	}
	return Rule{
		ExportFieldID: def.ExportFieldID,
		Source:        source,
		Transforms:    transforms,
		Pad:           ParsePadRule(def.PadRule),
		DefaultValue:  def.DefaultValue,
	}, nil
}

// ParseRules parses every definition, stopping at the first error.
// A later definition for the same export field replaces an earlier one.
func ParseRules(defs []types.MappingRuleDef) (map[types.ExportFieldID]Rule, error) {
	rules := make(map[types.ExportFieldID]Rule, len(defs))
	for _, def := range defs {
		rule, err := ParseRule(def)
		if err != nil {
			return nil, err
		}
		rules[def.ExportFieldID] = rule
	}
	return rules, nil
}
