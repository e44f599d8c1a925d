package domain

import "time"

type ScanStatus string

const (
	StatusQueued     ScanStatus = "queued"
	StatusProcessing ScanStatus = "processing"
	StatusCompleted  ScanStatus = "completed"
	StatusFailed     ScanStatus = "failed"
)

// IsTerminal reports whether a job may no longer change state.
func (s ScanStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// FeatureTag is the closed set of tampering heuristics.
type FeatureTag string

const (
	FeatureModificationAfterCreation FeatureTag = "modification_after_creation"
	FeatureMultiplePDFVersions       FeatureTag = "multiple_pdf_versions"
	FeatureAbnormalCompression       FeatureTag = "abnormal_compression"
	FeatureHiddenPages               FeatureTag = "hidden_pages_detected"
)

type SuspiciousFeature struct {
	Tag         FeatureTag `json:"tag"`
	Description string     `json:"description,omitempty"`
}

// DocumentMetadata is derived once per analysis and never mutated.
// HeaderCount is the number of %PDF- magic headers found in the raw bytes;
// more than one indicates incremental-update bodies appended after creation.
type DocumentMetadata struct {
	NumPages         int        `json:"num_pages"`
	Producer         string     `json:"producer,omitempty"`
	Creator          string     `json:"creator,omitempty"`
	CreationDate     *time.Time `json:"creation_date,omitempty"`
	ModificationDate *time.Time `json:"modification_date,omitempty"`
	IsLinearized     bool       `json:"is_linearized"`
	HasXFA           bool       `json:"has_xfa"`
	HeaderCount      int        `json:"header_count"`
}

// PageDetail records whether any extraction strategy recovered visible text
// for one declared page. PageNum is 1-based.
type PageDetail struct {
	PageNum    int  `json:"page_num"`
	HasContent bool `json:"has_content"`
	TextLength int  `json:"text_length"`
}

// AnalysisResult is the output of the synchronous extraction+detection
// pipeline for a single document.
type AnalysisResult struct {
	Metadata           DocumentMetadata
	TextContent        string
	HasHiddenPages     bool
	SuspiciousFeatures []SuspiciousFeature
	PageDetails        []PageDetail
	Justification      string
}

// ScanJob tracks one submitted document through the
// queued -> processing -> {completed | failed} lifecycle.
type ScanJob struct {
	ID          string     `json:"id"`
	FileName    string     `json:"filename"`
	MimeType    string     `json:"mime_type"`
	StoragePath string     `json:"storage_path"`
	SizeBytes   int64      `json:"size_bytes"`
	Status      ScanStatus `json:"status"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ScanResult is attached exactly once when a job completes. The job id is a
// permanent handle to this record; it is never updated afterward.
// Field names follow the public polling contract.
type ScanResult struct {
	ID             string              `json:"id"`
	FileName       string              `json:"fileName"`
	ScoreTotal     float64             `json:"scoreTotal"`
	TechnicalScore float64             `json:"technicalScore"`
	IAScore        float64             `json:"iaScore"`
	RiskLevel      RiskLevel           `json:"riskLevel"`
	Recommendation string              `json:"recommendation"`
	Flags          []SuspiciousFeature `json:"flags"`
	Justification  string              `json:"justification"`
	HasHiddenPages bool                `json:"hasHiddenPages"`
	PageDetails    []PageDetail        `json:"pageDetails"`
	CreatedAt      time.Time           `json:"createdAt"`
}
