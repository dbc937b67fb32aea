package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cast"

	"github.com/HealthAssessmentORG/SPSCC-CS490-SeniorProject-HealthAssessment/internal/core/db"
	"github.com/HealthAssessmentORG/SPSCC-CS490-SeniorProject-HealthAssessment/internal/types"
)

// ImportRecords writes a batch of assessments as a new run in one
// transaction. Deployers are matched by DoD ID; provider reviews replace
// any existing review of the same assessment.
func (s *Store) ImportRecords(ctx context.Context, in types.RecordImport) (types.RecordImportResult, error) {
	var result types.RecordImportResult

	err := s.q.InTx(ctx, func(q *db.Queries) error {
		tx := New(q)

		runID, err := tx.CreateRun(ctx, in.RunName)
		if err != nil {
			return err
		}
		result = types.RecordImportResult{RunID: runID}

		for i, rec := range in.Records {
			deployerID, err := tx.UpsertDeployer(ctx, rec.Deployer)
			if err != nil {
				return fmt.Errorf("record %d: %w", i+1, err)
			}

			a := rec.Assessment
			a.RunID = runID
			a.DeployerID = deployerID
			assessmentID, err := tx.InsertAssessment(ctx, a)
			if err != nil {
				return fmt.Errorf("record %d: %w", i+1, err)
			}

			if err := tx.InsertResponses(ctx, assessmentID, rec.Responses); err != nil {
				return fmt.Errorf("record %d: %w", i+1, err)
			}

			if rec.ProviderReview != nil {
				pr := *rec.ProviderReview
				pr.AssessmentID = assessmentID
				if err := tx.UpsertProviderReview(ctx, pr); err != nil {
					return fmt.Errorf("record %d: %w", i+1, err)
				}
			}

			result.Assessments++
			result.Responses += len(rec.Responses)
		}
		return nil
	})
	if err != nil {
		return types.RecordImportResult{}, err
	}
	return result, nil
}

// CreateRun inserts a new run and returns its id.
func (s *Store) CreateRun(ctx context.Context, name string) (types.RunID, error) {
	id := types.RunID(types.NewID())
	if _, err := s.q.Exec(ctx, "insert-run", id, name, s.q.Timestamp(time.Now())); err != nil {
		return "", fmt.Errorf("failed to create run %s: %w", name, err)
	}
	return id, nil
}

// RunExists reports whether a run id is known.
func (s *Store) RunExists(ctx context.Context, id types.RunID) error {
	var run struct {
		ID   string `db:"run_id"`
		Name string `db:"run_name"`
	}
	if err := s.q.Get(ctx, "get-run", &run, id); err != nil {
		return notFound(err, "run", id)
	}
	return nil
}

// UpsertDeployer inserts a deployer or updates the one with the same DoD ID,
// and returns its id.
func (s *Store) UpsertDeployer(ctx context.Context, d types.Deployer) (string, error) {
	_, err := s.q.Exec(ctx, "upsert-deployer",
		types.NewID(), d.DodID, nullIfEmpty(d.LastName), nullIfEmpty(d.FirstName),
		nullIfEmpty(d.MiddleInitial), nullIfEmpty(d.BirthDate),
	)
	if err != nil {
		return "", fmt.Errorf("failed to upsert deployer: %w", err)
	}

	var id string
	if err := s.q.Get(ctx, "find-deployer-by-dodid", &id, d.DodID); err != nil {
		return "", notFound(err, "deployer", "with DoD ID")
	}
	return id, nil
}

// InsertAssessment inserts an assessment and returns its id.
func (s *Store) InsertAssessment(ctx context.Context, a types.Assessment) (string, error) {
	id := types.NewID()
	_, err := s.q.Exec(ctx, "insert-assessment",
		id, a.RunID, a.DeployerID, nullIfEmpty(a.FormType), nullIfEmpty(a.FormVersion), nullIfEmpty(a.EventDate),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert assessment: %w", err)
	}
	return id, nil
}

// InsertResponses inserts the responses of one assessment.
func (s *Store) InsertResponses(ctx context.Context, assessmentID string, responses []types.Response) error {
	for _, r := range responses {
		var norm any
		if r.ValueNorm != nil {
			norm = *r.ValueNorm
		}
		_, err := s.q.Exec(ctx, "insert-response",
			types.NewID(), assessmentID, r.QuestionCode, r.FieldName, r.ValueRaw, norm,
		)
		if err != nil {
			return fmt.Errorf("failed to insert response %s: %w", types.ResponseKey(r.QuestionCode, r.FieldName), err)
		}
	}
	return nil
}

// UpsertProviderReview inserts or replaces the review of an assessment.
func (s *Store) UpsertProviderReview(ctx context.Context, pr types.ProviderReview) error {
	_, err := s.q.Exec(ctx, "upsert-provider-review",
		pr.AssessmentID, nullIfEmpty(pr.ProviderName), nullIfEmpty(pr.CertifyDate),
		nullIfEmpty(pr.ProviderTitle), nullIfEmpty(pr.ProviderSignature),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert provider review for %s: %w", pr.AssessmentID, err)
	}
	return nil
}

type responseRow struct {
	AssessmentID string         `db:"assessment_id"`
	QuestionCode string         `db:"question_code"`
	FieldName    string         `db:"field_name"`
	Value        sql.NullString `db:"value"`
}

// LoadRecordContexts returns one RecordContext per assessment of a run,
// ordered by event date then assessment id. Each context carries the
// assessment row, its deployer row, its provider review row (nil when
// absent) and its responses keyed "QUESTION:FIELD" using the normalized
// value, else the raw value. Responses without any value are left out.
func (s *Store) LoadRecordContexts(ctx context.Context, runID types.RunID) ([]types.RecordContext, error) {
	assessments, err := s.queryRows(ctx, "list-run-assessments", runID)
	if err != nil {
		return nil, err
	}
	if len(assessments) == 0 {
		return nil, nil
	}

	deployers, err := s.queryRowsByKey(ctx, "list-run-deployers", "deployer_id", runID)
	if err != nil {
		return nil, err
	}
	reviews, err := s.queryRowsByKey(ctx, "list-run-provider-reviews", "assessment_id", runID)
	if err != nil {
		return nil, err
	}

	var responses []responseRow
	if err := s.q.Select(ctx, "list-run-responses", &responses, runID); err != nil {
		return nil, fmt.Errorf("failed to load responses for run %s: %w", runID, err)
	}
	byAssessment := make(map[string]map[string]string)
	for _, r := range responses {
		if !r.Value.Valid {
			continue
		}
		m, ok := byAssessment[r.AssessmentID]
		if !ok {
			m = make(map[string]string)
			byAssessment[r.AssessmentID] = m
		}
		m[types.ResponseKey(r.QuestionCode, r.FieldName)] = r.Value.String
	}

	records := make([]types.RecordContext, 0, len(assessments))
	for _, a := range assessments {
		assessmentID := cast.ToString(a["assessment_id"])
		records = append(records, types.RecordContext{
			Assessment:     a,
			Deployer:       deployers[cast.ToString(a["deployer_id"])],
			ProviderReview: reviews[assessmentID],
			Responses:      byAssessment[assessmentID],
		})
	}
	return records, nil
}

// queryRows scans every row of a named query into a Row.
func (s *Store) queryRows(ctx context.Context, name string, args ...any) ([]types.Row, error) {
	rows, err := s.q.Query(ctx, name, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to run %s: %w", name, err)
	}
	defer rows.Close()

	var out []types.Row
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", name, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return out, nil
}

// queryRowsByKey indexes the rows of a named query by one of their columns.
func (s *Store) queryRowsByKey(ctx context.Context, name, key string, args ...any) (map[string]types.Row, error) {
	rows, err := s.queryRows(ctx, name, args...)
	if err != nil {
		return nil, err
	}
	out := make(map[string]types.Row, len(rows))
	for _, row := range rows {
		out[cast.ToString(row[key])] = row
	}
	return out, nil
}

// scanRow reads the current row into a Row. Text returned as []byte is
// converted to string so column values compare and stringify uniformly.
func scanRow(rows *sqlx.Rows) (types.Row, error) {
	m := make(map[string]any)
	if err := rows.MapScan(m); err != nil {
		return nil, err
	}
	for k, v := range m {
		if b, ok := v.([]byte); ok {
			m[k] = string(b)
		}
	}
	return types.Row(m), nil
}
