// Package validate checks rendered field values against declared lengths and
// domain types.
package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/HealthAssessmentORG/SPSCC-CS490-SeniorProject-HealthAssessment/internal/mapping"
	"github.com/HealthAssessmentORG/SPSCC-CS490-SeniorProject-HealthAssessment/internal/types"
)

var (
	tenDigits   = regexp.MustCompile(`^[0-9]{10}$`)
	eightDigits = regexp.MustCompile(`^[0-9]{8}$`)
)

// domainCheck is one domain-type rule applied to a trimmed, non-blank value.
type domainCheck struct {
	code     string
	expected string
	message  string
	valid    func(trimmed string) bool
}

var domainChecks = map[string]domainCheck{
	types.DomainDODID10: {
		code:     types.CodeBadDODID10,
		expected: "10 digits",
		message:  "DoD ID must be 10 digits",
		valid:    tenDigits.MatchString,
	},
	types.DomainDateYYYYMMDD: {
		code:     types.CodeBadDate,
		expected: "YYYYMMDD",
		message:  "Date must be YYYYMMDD",
		valid:    eightDigits.MatchString,
	},
}

// Record returns the findings for one rendered record, in plan order.
// A field whose value is missing from values is checked as "". A length
// mismatch suppresses the domain check for that field. Blank values never
// fail a domain check. Domain types without a rule are not checked.
func Record(ordinal int, plan []mapping.WriterFieldPlan, values map[string]string) []types.ValidationFinding {
	var findings []types.ValidationFinding

	for _, f := range plan {
		v := values[f.FieldName]

		if n := utf8.RuneCountInString(v); n != f.Length {
			findings = append(findings, types.ValidationFinding{
				RecordOrdinal:   ordinal,
				ExportFieldName: f.FieldName,
				ErrorCode:       types.CodeLenMismatch,
				Expected:        strconv.Itoa(f.Length),
				Actual:          strconv.Itoa(n),
				Message:         fmt.Sprintf("Expected padded value length %d, got %d", f.Length, n),
			})
			continue
		}

		check, ok := domainChecks[f.DomainType]
		if !ok {
			continue
		}

		trimmed := strings.TrimSpace(v)
		if trimmed == "" || check.valid(trimmed) {
			continue
		}

		findings = append(findings, types.ValidationFinding{
			RecordOrdinal:   ordinal,
			ExportFieldName: f.FieldName,
			ErrorCode:       check.code,
			Expected:        check.expected,
			Actual:          trimmed,
			Message:         check.message,
		})
	}

	return findings
}
