package export

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/HealthAssessmentORG/SPSCC-CS490-SeniorProject-HealthAssessment/internal/fixedwidth"
	"github.com/HealthAssessmentORG/SPSCC-CS490-SeniorProject-HealthAssessment/internal/mapping"
	"github.com/HealthAssessmentORG/SPSCC-CS490-SeniorProject-HealthAssessment/internal/types"
	"github.com/HealthAssessmentORG/SPSCC-CS490-SeniorProject-HealthAssessment/internal/validate"
)

// Rendered is the output of one record: its line and its findings.
type Rendered struct {
	Line     string
	Findings []types.ValidationFinding
}

// Render builds and validates every record on at most workers goroutines.
// Results are indexed by record position; record ordinals are 1-based.
// The plan is shared read-only by all workers.
func Render(ctx context.Context, width int, plan []mapping.WriterFieldPlan, records []types.RecordContext, workers int) ([]Rendered, error) {
	out := make([]Rendered, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))

	for i := range records {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			line, values := fixedwidth.BuildLine(width, plan, &records[i])
			out[i] = Rendered{
				Line:     line,
				Findings: validate.Record(i+1, plan, values),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
