package mapping

import (
	"errors"
	"testing"
	"time"

	"github.com/HealthAssessmentORG/SPSCC-CS490-SeniorProject-HealthAssessment/internal/types"
)

func field(id, name string, start, length int, domain string) types.ExportField {
	return types.ExportField{
		ID:         types.ExportFieldID(id),
		Name:       name,
		StartPos:   start,
		EndPos:     start + length - 1,
		Length:     length,
		DomainType: domain,
	}
}

func mustCompile(t *testing.T, fields []types.ExportField, defs []types.MappingRuleDef) []WriterFieldPlan {
	t.Helper()
	plan, err := CompileDefinitions(fields, defs)
	if err != nil {
		t.Fatalf("CompileDefinitions() error = %v, want nil", err)
	}
	return plan
}

func TestCompile_ColumnDateFromTime(t *testing.T) {
	fields := []types.ExportField{field("F1", "EVENT_DATE", 1, 8, types.DomainDateYYYYMMDD)}
	defs := []types.MappingRuleDef{{
		ExportFieldID:     "F1",
		SourceExpression:  "COL:ASSESSMENT.event_date",
		TransformPipeline: "date:yyyymmdd",
		PadRule:           "pad:right:space",
	}}

	plan := mustCompile(t, fields, defs)
	ctx := &types.RecordContext{
		Assessment: types.Row{"event_date": time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC)},
	}

	if got := plan[0].Resolve(ctx); got != "20260214" {
		t.Errorf("Resolve() = %q, want %q", got, "20260214")
	}
}

func TestCompile_ColumnDateFromNonUTCTime(t *testing.T) {
	fields := []types.ExportField{field("F1", "EVENT_DATE", 1, 8, "")}
	defs := []types.MappingRuleDef{{
		ExportFieldID:     "F1",
		SourceExpression:  "COL:ASSESSMENT.event_date",
		TransformPipeline: "date:yyyymmdd",
	}}

	plan := mustCompile(t, fields, defs)
	// 2026-02-14 23:30 at UTC-5 is 2026-02-15 in UTC
	ctx := &types.RecordContext{
		Assessment: types.Row{"event_date": time.Date(2026, 2, 14, 23, 30, 0, 0, time.FixedZone("EST", -5*3600))},
	}

	if got := plan[0].Resolve(ctx); got != "20260215" {
		t.Errorf("Resolve() = %q, want %q", got, "20260215")
	}
}

func TestCompile_ColumnTimestampString(t *testing.T) {
	fields := []types.ExportField{field("F1", "CERT_DATE", 1, 10, "")}
	defs := []types.MappingRuleDef{{
		ExportFieldID:    "F1",
		SourceExpression: "COL:PROVIDER_REVIEW.certified_at",
	}}

	plan := mustCompile(t, fields, defs)
	ctx := &types.RecordContext{
		ProviderReview: types.Row{"certified_at": "2026-03-01T08:00:00Z"},
	}

	if got := plan[0].Resolve(ctx); got != "2026-03-01" {
		t.Errorf("Resolve() = %q, want %q", got, "2026-03-01")
	}
}

func TestCompile_ResponseTrimLowerPadded(t *testing.T) {
	fields := []types.ExportField{field("F1", "EMAIL", 1, 20, types.DomainText)}
	defs := []types.MappingRuleDef{{
		ExportFieldID:     "F1",
		SourceExpression:  "RESP:DEM:EMAIL",
		TransformPipeline: "trim|lower",
		PadRule:           "pad:right:space",
	}}

	plan := mustCompile(t, fields, defs)
	ctx := &types.RecordContext{
		Responses: map[string]string{types.ResponseKey("DEM", "EMAIL"): "  John.Doe@Example.MIL "},
	}

	want := "john.doe@example.mil"
	if got := plan[0].Resolve(ctx); got != want {
		t.Errorf("Resolve() = %q, want %q", got, want)
	}
}

func TestCompile_LeftZeroPad(t *testing.T) {
	fields := []types.ExportField{field("F1", "SEQ", 1, 3, "")}
	defs := []types.MappingRuleDef{{
		ExportFieldID:    "F1",
		SourceExpression: "COL:DEPLOYER.seq",
		PadRule:          "pad:left:0",
	}}

	plan := mustCompile(t, fields, defs)
	ctx := &types.RecordContext{Deployer: types.Row{"seq": int64(7)}}

	if got := plan[0].Resolve(ctx); got != "007" {
		t.Errorf("Resolve() = %q, want %q", got, "007")
	}
}

func TestCompile_MissingRuleRendersBlank(t *testing.T) {
	fields := []types.ExportField{field("F1", "FILLER", 1, 5, "")}

	plan, err := Compile(fields, nil)
	if err != nil {
		t.Fatalf("Compile() error = %v, want nil", err)
	}

	if got := plan[0].Resolve(&types.RecordContext{}); got != "     " {
		t.Errorf("Resolve() = %q, want 5 spaces", got)
	}
}

func TestCompile_DefaultValueFallback(t *testing.T) {
	fields := []types.ExportField{
		field("F1", "STATUS", 1, 1, types.DomainEnumYN),
		field("F2", "NOTE", 2, 4, ""),
		field("F3", "KEPT", 6, 3, ""),
	}
	defs := []types.MappingRuleDef{
		{ExportFieldID: "F1", SourceExpression: "RESP:DEM:STATUS", DefaultValue: "N"},
		{ExportFieldID: "F2", SourceExpression: "COL:DEPLOYER.note", DefaultValue: "NA"},
		{ExportFieldID: "F3", SourceExpression: "COL:DEPLOYER.kept", DefaultValue: "DEF"},
	}

	plan := mustCompile(t, fields, defs)
	ctx := &types.RecordContext{
		// note is null, kept is present but empty
		Deployer: types.Row{"note": nil, "kept": ""},
	}

	tests := []struct {
		idx  int
		want string
	}{
		{0, "N"},
		{1, "NA  "},
		{2, "   "},
	}
	for _, tt := range tests {
		if got := plan[tt.idx].Resolve(ctx); got != tt.want {
			t.Errorf("%s Resolve() = %q, want %q", plan[tt.idx].FieldName, got, tt.want)
		}
	}
}

func TestCompile_MissingTableUsesDefault(t *testing.T) {
	fields := []types.ExportField{field("F1", "PR_NAME", 1, 4, "")}
	defs := []types.MappingRuleDef{{
		ExportFieldID:    "F1",
		SourceExpression: "COL:PROVIDER_REVIEW.name",
		DefaultValue:     "NONE",
	}}

	plan := mustCompile(t, fields, defs)

	if got := plan[0].Resolve(&types.RecordContext{}); got != "NONE" {
		t.Errorf("Resolve() = %q, want %q", got, "NONE")
	}
	if got := plan[0].Resolve(nil); got != "NONE" {
		t.Errorf("Resolve(nil) = %q, want %q", got, "NONE")
	}
}

func TestCompile_PreservesFieldOrderAndMetadata(t *testing.T) {
	fields := []types.ExportField{
		field("B", "SECOND", 4, 2, types.DomainText),
		field("A", "FIRST", 1, 3, types.DomainDODID10),
	}

	plan, err := Compile(fields, nil)
	if err != nil {
		t.Fatalf("Compile() error = %v, want nil", err)
	}
	if len(plan) != 2 {
		t.Fatalf("len(plan) = %v, want 2", len(plan))
	}
	if plan[0].FieldName != "SECOND" || plan[1].FieldName != "FIRST" {
		t.Errorf("plan order = [%s %s], want [SECOND FIRST]", plan[0].FieldName, plan[1].FieldName)
	}
	if plan[1].StartPos != 1 || plan[1].Length != 3 || plan[1].DomainType != types.DomainDODID10 {
		t.Errorf("plan[1] = %+v, want start=1 length=3 domain=DODID10", plan[1])
	}
}

func TestCompile_InvalidGeometry(t *testing.T) {
	tests := []struct {
		name  string
		field types.ExportField
	}{
		{"zero start", types.ExportField{Name: "X", StartPos: 0, EndPos: 2, Length: 3}},
		{"zero length", types.ExportField{Name: "X", StartPos: 3, EndPos: 2, Length: 0}},
		{"length disagrees", types.ExportField{Name: "X", StartPos: 1, EndPos: 5, Length: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile([]types.ExportField{tt.field}, nil)
			if !errors.Is(err, types.ErrInvalidFieldGeometry) {
				t.Errorf("Compile() error = %v, want ErrInvalidFieldGeometry", err)
			}
		})
	}
}

func TestCompileDefinitions_RuleErrorAborts(t *testing.T) {
	fields := []types.ExportField{field("F1", "X", 1, 1, "")}
	defs := []types.MappingRuleDef{{ExportFieldID: "F1", SourceExpression: "WAT:???"}}

	plan, err := CompileDefinitions(fields, defs)
	if !errors.Is(err, types.ErrMalformedSourceExpression) {
		t.Fatalf("CompileDefinitions() error = %v, want ErrMalformedSourceExpression", err)
	}
	if plan != nil {
		t.Errorf("plan = %v, want nil", plan)
	}
}

func TestCompile_ResolverDoesNotShareTransforms(t *testing.T) {
	rule := Rule{
		ExportFieldID: "F1",
		Source:        SourceExpr{Kind: SourceResponse, QuestionCode: "Q", FieldName: "F"},
		Transforms:    []TransformOp{OpLowercase},
	}
	plan, err := Compile([]types.ExportField{field("F1", "X", 1, 3, "")}, map[types.ExportFieldID]Rule{"F1": rule})
	if err != nil {
		t.Fatalf("Compile() error = %v, want nil", err)
	}

	rule.Transforms[0] = OpTrim

	ctx := &types.RecordContext{Responses: map[string]string{"Q:F": "ABC"}}
	if got := plan[0].Resolve(ctx); got != "abc" {
		t.Errorf("Resolve() = %q, want %q", got, "abc")
	}
}
