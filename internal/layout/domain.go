package layout

import (
	"strings"

	"github.com/HealthAssessmentORG/SPSCC-CS490-SeniorProject-HealthAssessment/internal/types"
)

// Domain returns the declared domain of the field, or the one guessed from
// its free-text values column when domain_type is not set.
func (fd Field) Domain() types.ValueDomain {
	if fd.DomainType == "" {
		return GuessDomain(fd.Name, fd.Values)
	}

	d := types.ValueDomain{Type: fd.DomainType, RawSpec: strings.TrimSpace(fd.Values)}
	switch fd.DomainType {
	case types.DomainEnumYN:
		d.EnumValues = yesNo()
	case types.DomainEnum:
		d.EnumValues = ParseEnumPairs(d.RawSpec)
	}
	return d
}

// GuessDomain classifies a values column. First match wins:
//
//	blank or "Text Field"            TEXT
//	mentions YYYYMMDD or "date"      DATE_YYYYMMDD
//	field DODID or "9999999999"      DODID10
//	"checked" with Y and N           ENUM_YN
//	code=meaning pairs               ENUM
//	anything else                    SPEC_RAW
func GuessDomain(fieldName, values string) types.ValueDomain {
	raw := strings.TrimSpace(values)
	lower := strings.ToLower(raw)

	switch {
	case raw == "" || lower == "text field":
		if raw == "" {
			raw = "Text Field"
		}
		return types.ValueDomain{Type: types.DomainText, RawSpec: raw}
	case strings.Contains(raw, "YYYYMMDD") || strings.Contains(lower, "date"):
		return types.ValueDomain{Type: types.DomainDateYYYYMMDD, RawSpec: raw}
	case strings.EqualFold(fieldName, "DODID") || strings.Contains(raw, "9999999999"):
		return types.ValueDomain{Type: types.DomainDODID10, RawSpec: raw}
	case strings.Contains(lower, "checked") && strings.Contains(raw, "Y") && strings.Contains(raw, "N"):
		return types.ValueDomain{Type: types.DomainEnumYN, RawSpec: raw, EnumValues: yesNo()}
	}

	if pairs := ParseEnumPairs(raw); len(pairs) > 0 {
		return types.ValueDomain{Type: types.DomainEnum, RawSpec: raw, EnumValues: pairs}
	}
	return types.ValueDomain{Type: types.DomainSpecRaw, RawSpec: raw}
}

// ParseEnumPairs reads comma separated code=meaning pairs such as
// `M=Male, F=Female`. Surrounding double quotes are dropped; parts without
// a code are skipped.
func ParseEnumPairs(raw string) []types.EnumValue {
	if !strings.Contains(raw, "=") {
		return nil
	}

	var pairs []types.EnumValue
	for _, part := range strings.Split(raw, ",") {
		code, meaning, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		code = strings.Trim(strings.TrimSpace(code), `"`)
		meaning = strings.Trim(strings.TrimSpace(meaning), `"`)
		if code == "" {
			continue
		}
		pairs = append(pairs, types.EnumValue{Code: code, Meaning: meaning})
	}
	return pairs
}

func yesNo() []types.EnumValue {
	return []types.EnumValue{{Code: "Y", Meaning: "Yes"}, {Code: "N", Meaning: "No"}}
}
