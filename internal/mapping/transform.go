// internal/mapping/transform.go
package mapping

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	eightDigits   = regexp.MustCompile(`^\d{8}$`)
	isoDatePrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
)

// ApplyTransforms runs ops left to right over v.
func ApplyTransforms(v string, ops []TransformOp) string {
	out := v
	for _, op := range ops {
		switch op {
		case OpTrim:
			out = strings.TrimSpace(out)
		case OpLowercase:
			out = strings.ToLower(out)
		case OpDateToYYYYMMDD:
			out = dateToYYYYMMDD(out)
		}
	}
	return out
}

// dateToYYYYMMDD is a best-effort normalizer, not a validator.
// Values that are neither YYYYMMDD nor start with YYYY-MM-DD pass through
// trimmed; the validation engine reports them if the field has a date domain.
func dateToYYYYMMDD(v string) string {
	v = strings.TrimSpace(v)
	if eightDigits.MatchString(v) {
		return v
	}
	if isoDatePrefix.MatchString(v) {
		return strings.ReplaceAll(v[:10], "-", "")
	}
	return v
}

// PadToLength forces v to exactly length characters.
// Longer values are truncated from the right. Shorter values are left-padded
// with '0' for PadLeftZero and right-padded with spaces otherwise.
func PadToLength(v string, length int, pad PadRule) string {
	if length <= 0 {
		return ""
	}

	n := utf8.RuneCountInString(v)
	if n > length {
		return truncateRunes(v, length)
	}
	if n == length {
		return v
	}

	fill := length - n
	if pad == PadLeftZero {
		return strings.Repeat("0", fill) + v
	}
	return v + strings.Repeat(" ", fill)
}

func truncateRunes(v string, n int) string {
	count := 0
	for i := range v {
		if count == n {
			return v[:i]
		}
		count++
	}
	return v
}
