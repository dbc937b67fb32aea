// internal/mapping/coercion.go
package mapping

import (
	"fmt"
	"regexp"
	"time"

	"github.com/spf13/cast"

	"github.com/HealthAssessmentORG/SPSCC-CS490-SeniorProject-HealthAssessment/internal/types"
)

/*
 * Source value coercion.
 *
 * Column values arrive as whatever the database driver produced: string,
 * []byte, int64, float64, bool, time.Time or nil. Resolution needs one
 * stable textual form before transforms run.
 *
 * Date handling: date-shaped column values are normalized to YYYY-MM-DD so
 * layouts see the same text regardless of driver representation.
 *   - time.Time (DATE columns via go-sqlite3 / lib/pq): UTC calendar date
 *   - strings starting with YYYY-MM-DDT (ISO-8601 timestamps): first 10 chars
 *   - anything else passes through unchanged
 *
 * Null vs missing: both fall back to the rule's default value. An empty
 * string is a present value and is kept.
 */

var isoTimestampPrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T`)

// columnValue looks up column in row and returns its normalized text.
func columnValue(row types.Row, column, defaultValue string) string {
	v, ok := row[column]
	if !ok || v == nil {
		return toDateText(defaultValue)
	}
	return toDateText(v)
}

// toDateText stringifies a driver value, normalizing date-like values to YYYY-MM-DD.
func toDateText(v any) string {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format(time.DateOnly)
	case *time.Time:
		if t == nil {
			return ""
		}
		return t.UTC().Format(time.DateOnly)
	case string:
		return trimTimestamp(t)
	case []byte:
		return trimTimestamp(string(t))
	}

	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return s
}

func trimTimestamp(s string) string {
	if isoTimestampPrefix.MatchString(s) {
		return s[:10]
	}
	return s
}
