package types

// Deployer is the person an assessment is about. DodID is unique.
type Deployer struct {
	DodID         string
	LastName      string
	FirstName     string
	MiddleInitial string
	BirthDate     string // YYYY-MM-DD or empty
}

// Assessment is one completed form for a deployer within a run.
type Assessment struct {
	RunID       RunID
	DeployerID  string
	FormType    string
	FormVersion string
	EventDate   string // YYYY-MM-DD
}

// Response is one answered question field of an assessment.
// A nil ValueNorm falls back to ValueRaw when records are loaded.
type Response struct {
	QuestionCode string
	FieldName    string
	ValueRaw     string
	ValueNorm    *string
}

// ProviderReview is the provider certification attached to an assessment.
type ProviderReview struct {
	AssessmentID      string
	ProviderName      string
	CertifyDate       string // YYYY-MM-DD or empty
	ProviderTitle     string
	ProviderSignature string
}

// AssessmentRecord is one assessment with the rows attached to it, as
// ingested. Assessment.RunID and Assessment.DeployerID are assigned on
// import.
type AssessmentRecord struct {
	Deployer       Deployer
	Assessment     Assessment
	Responses      []Response
	ProviderReview *ProviderReview
}

// RecordImport is a batch of assessments written as one run.
type RecordImport struct {
	RunName string
	Records []AssessmentRecord
}

// RecordImportResult identifies the run created by an import.
type RecordImportResult struct {
	RunID       RunID
	Assessments int
	Responses   int
}
