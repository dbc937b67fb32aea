// Package records loads source record fixtures from YAML.
//
// A records file is one run of assessments:
//
//	run_name: fixture-2026-02
//	assessments:
//	  - event_date: "2026-02-14"
//	    form_type: DD2795
//	    deployer: {dod_id: "1234567890", last_name: Smith}
//	    responses:
//	      - {question: DEM, field: LNAME, raw: " smith ", norm: SMITH}
//	    provider_review: {provider_name: Dr. Who, certify_date: "2026-02-15"}
//
// Dates are YYYY-MM-DD. Responses without norm load with the raw value.
package records

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/HealthAssessmentORG/SPSCC-CS490-SeniorProject-HealthAssessment/internal/types"
)

// ErrInvalidRecords is returned for records files that fail to decode or
// validate.
var ErrInvalidRecords = errors.New("invalid records file")

// File is a decoded records file.
type File struct {
	RunName     string       `yaml:"run_name" validate:"required"`
	Assessments []Assessment `yaml:"assessments" validate:"required,min=1,dive"`
}

// Assessment is one assessment entry of a records file.
type Assessment struct {
	EventDate      string          `yaml:"event_date" validate:"required,datetime=2006-01-02"`
	FormType       string          `yaml:"form_type"`
	FormVersion    string          `yaml:"form_version"`
	Deployer       Deployer        `yaml:"deployer"`
	Responses      []Response      `yaml:"responses" validate:"dive"`
	ProviderReview *ProviderReview `yaml:"provider_review"`
}

// Deployer identifies the person assessed.
type Deployer struct {
	DodID         string `yaml:"dod_id" validate:"required"`
	LastName      string `yaml:"last_name"`
	FirstName     string `yaml:"first_name"`
	MiddleInitial string `yaml:"middle_initial" validate:"max=1"`
	BirthDate     string `yaml:"birth_date" validate:"omitempty,datetime=2006-01-02"`
}

// Response is one answered question field. Norm is optional.
type Response struct {
	Question string  `yaml:"question" validate:"required"`
	Field    string  `yaml:"field" validate:"required"`
	Raw      string  `yaml:"raw"`
	Norm     *string `yaml:"norm"`
}

// ProviderReview is the certification of an assessment.
type ProviderReview struct {
	ProviderName      string `yaml:"provider_name"`
	CertifyDate       string `yaml:"certify_date" validate:"omitempty,datetime=2006-01-02"`
	ProviderTitle     string `yaml:"provider_title"`
	ProviderSignature string `yaml:"provider_signature"`
}

var validate = validator.New()

func init() {
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		return name
	})
}

// LoadFile reads and validates a records file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read records file %s: %w", path, err)
	}

	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes and validates records YAML. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	var f File

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecords, err)
	}

	if err := validate.Struct(&f); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRecords, err)
		}
		msgs := make([]string, 0, len(verrs))
		for _, e := range verrs {
			_, ns, _ := strings.Cut(e.Namespace(), ".")
			msgs = append(msgs, fmt.Sprintf("%s failed %s", ns, e.Tag()))
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidRecords, strings.Join(msgs, "; "))
	}

	return &f, nil
}

// Import converts the file into a store import batch.
func (f *File) Import() types.RecordImport {
	in := types.RecordImport{
		RunName: f.RunName,
		Records: make([]types.AssessmentRecord, 0, len(f.Assessments)),
	}

	for _, a := range f.Assessments {
		rec := types.AssessmentRecord{
			Deployer: types.Deployer{
				DodID:         a.Deployer.DodID,
				LastName:      a.Deployer.LastName,
				FirstName:     a.Deployer.FirstName,
				MiddleInitial: a.Deployer.MiddleInitial,
				BirthDate:     a.Deployer.BirthDate,
			},
			Assessment: types.Assessment{
				FormType:    a.FormType,
				FormVersion: a.FormVersion,
				EventDate:   a.EventDate,
			},
		}

		for _, r := range a.Responses {
			rec.Responses = append(rec.Responses, types.Response{
				QuestionCode: r.Question,
				FieldName:    r.Field,
				ValueRaw:     r.Raw,
				ValueNorm:    r.Norm,
			})
		}

		if pr := a.ProviderReview; pr != nil {
			rec.ProviderReview = &types.ProviderReview{
				ProviderName:      pr.ProviderName,
				CertifyDate:       pr.CertifyDate,
				ProviderTitle:     pr.ProviderTitle,
				ProviderSignature: pr.ProviderSignature,
			}
		}

		in.Records = append(in.Records, rec)
	}

	return in
}
