package export

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/HealthAssessmentORG/SPSCC-CS490-SeniorProject-HealthAssessment/internal/mapping"
	"github.com/HealthAssessmentORG/SPSCC-CS490-SeniorProject-HealthAssessment/internal/types"
)

func seqPlan(t *testing.T) []mapping.WriterFieldPlan {
	t.Helper()
	fields := []types.ExportField{
		{ID: "F1", Name: "SEQ", StartPos: 1, EndPos: 4, Length: 4},
		{ID: "F2", Name: "DODID", StartPos: 5, EndPos: 14, Length: 10, DomainType: types.DomainDODID10},
	}
	defs := []types.MappingRuleDef{
		{ExportFieldID: "F1", SourceExpression: "COL:ASSESSMENT.seq", PadRule: "pad:left:0"},
		{ExportFieldID: "F2", SourceExpression: "RESP:DEM:DODID"},
	}
	plan, err := mapping.CompileDefinitions(fields, defs)
	if err != nil {
		t.Fatalf("CompileDefinitions() error = %v, want nil", err)
	}
	return plan
}

func TestRender_PreservesOrderAndOrdinals(t *testing.T) {
	plan := seqPlan(t)

	records := make([]types.RecordContext, 200)
	for i := range records {
		dodid := "1234567890"
		if i%50 == 0 {
			dodid = "bad"
		}
		records[i] = types.RecordContext{
			Assessment: types.Row{"seq": int64(i)},
			Responses:  map[string]string{"DEM:DODID": dodid},
		}
	}

	out, err := Render(context.Background(), 14, plan, records, 8)
	if err != nil {
		t.Fatalf("Render() error = %v, want nil", err)
	}
	if len(out) != len(records) {
		t.Fatalf("len(Render()) = %v, want %v", len(out), len(records))
	}

	for i, r := range out {
		if prefix := fmt.Sprintf("%04d", i); r.Line[:4] != prefix {
			t.Fatalf("line %d starts %q, want %q", i, r.Line[:4], prefix)
		}
		wantFindings := 0
		if i%50 == 0 {
			wantFindings = 1
		}
		if len(r.Findings) != wantFindings {
			t.Errorf("record %d findings = %v, want %d", i, r.Findings, wantFindings)
			continue
		}
		if wantFindings == 1 && r.Findings[0].RecordOrdinal != i+1 {
			t.Errorf("record %d ordinal = %d, want %d", i, r.Findings[0].RecordOrdinal, i+1)
		}
	}
}

func TestRender_SingleWorkerForNonPositiveLimit(t *testing.T) {
	plan := seqPlan(t)
	records := []types.RecordContext{{Assessment: types.Row{"seq": 1}}}

	out, err := Render(context.Background(), 14, plan, records, 0)
	if err != nil {
		t.Fatalf("Render() error = %v, want nil", err)
	}
	if out[0].Line != "0001          " {
		t.Errorf("line = %q, want %q", out[0].Line, "0001          ")
	}
}

func TestRender_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	records := make([]types.RecordContext, 10)
	_, err := Render(ctx, 14, seqPlan(t), records, 2)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Render() error = %v, want context.Canceled", err)
	}
}
