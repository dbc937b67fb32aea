// internal/fixedwidth/line.go
package fixedwidth

import (
	"github.com/HealthAssessmentORG/SPSCC-CS490-SeniorProject-HealthAssessment/internal/mapping"
	"github.com/HealthAssessmentORG/SPSCC-CS490-SeniorProject-HealthAssessment/internal/types"
)

/*
 * Fixed-width line assembly.
 *
 * BuildLine starts from width spaces and applies field plans in list order.
 * Each field writes exactly plan.Length characters beginning at StartPos-1;
 * characters beyond the end of the resolved value are written as spaces and
 * positions outside [0, width) are clipped.
 *
 * Overlap: fields are not checked for overlap. A later field overwrites an
 * earlier one on shared positions (last writer wins, by plan order). Output
 * for a given layout must stay byte-for-byte reproducible, so plan order is
 * never changed here.
 *
 * Width is counted in characters (runes), matching PadToLength.
 */

// BuildLine renders one record. It returns the line (always width characters)
// and the resolved value of every field keyed by field name. When two fields
// share a name the later value is kept.
func BuildLine(width int, plan []mapping.WriterFieldPlan, ctx *types.RecordContext) (string, map[string]string) {
	if width < 0 {
		width = 0
	}

	buf := make([]rune, width)
	for i := range buf {
		buf[i] = ' '
	}
	values := make(map[string]string, len(plan))

	for _, f := range plan {
		v := f.Resolve(ctx)
		values[f.FieldName] = v

		src := []rune(v)
		start := f.StartPos - 1
		for i := 0; i < f.Length; i++ {
			pos := start + i
			if pos < 0 || pos >= width {
				continue
			}
			if i < len(src) {
				buf[pos] = src[i]
			} else {
				buf[pos] = ' '
			}
		}
	}

	return string(buf), values
}
