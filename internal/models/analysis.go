package models

import "time"

// Recommendation labels the analysis step is allowed to produce.
const (
	RecommendationStrong   = "Strong Match"
	RecommendationGood     = "Good Match"
	RecommendationModerate = "Moderate Match"
	RecommendationWeak     = "Weak Match"
	RecommendationPoor     = "Poor Match"
	RecommendationUnknown  = "Unable to determine"
)

// AnalysisResult is one LLM-derived judgement of a resume against a job
// description. Error is set only when the remote call or the parse of its
// reply failed; in that case MatchScore is 0 and the textual fields carry
// placeholder values.
type AnalysisResult struct {
	CandidateName    string    `json:"candidate_name"`
	MatchScore       int       `json:"match_score"`
	Reasoning        string    `json:"reasoning"`
	Strengths        []string  `json:"strengths"`
	ImprovementAreas []string  `json:"improvement_areas"`
	Recommendation   string    `json:"recommendation"`
	Summary          string    `json:"summary"`
	Timestamp        time.Time `json:"timestamp"`
	ProcessingTime   float64   `json:"processing_time"`
	Error            string    `json:"error,omitempty"`
	RawResponse      string    `json:"raw_response,omitempty"`
}

// PDFMetadata holds best-effort document metadata; fields are empty strings
// when the document does not carry them.
type PDFMetadata struct {
	Title            string `json:"title"`
	Author           string `json:"author"`
	Subject          string `json:"subject"`
	Creator          string `json:"creator"`
	Producer         string `json:"producer"`
	CreationDate     string `json:"creation_date"`
	ModificationDate string `json:"modification_date"`
}

// ExtractionResult is the output of extracting text from one PDF. Error is
// set only for whole-document failures; per-page failures are recorded
// inline in Text.
type ExtractionResult struct {
	Text           string      `json:"text"`
	Pages          int         `json:"pages"`
	Metadata       PDFMetadata `json:"metadata"`
	FileSize       int64       `json:"file_size"`
	ExtractionTime float64     `json:"extraction_time"`
	Error          string      `json:"error,omitempty"`
}

// CacheEntry is the durable record derived from a successful analysis.
type CacheEntry struct {
	ID               string    `json:"id"`
	CandidateName    string    `json:"candidate_name"`
	Filename         string    `json:"filename"`
	MatchScore       int       `json:"match_score"`
	Summary          string    `json:"summary"`
	Strengths        []string  `json:"strengths"`
	ImprovementAreas []string  `json:"improvement_areas"`
	Reasoning        string    `json:"reasoning"`
	Recommendation   string    `json:"recommendation"`
	ProcessingTime   float64   `json:"processing_time"`
	Timestamp        time.Time `json:"timestamp"`
}
