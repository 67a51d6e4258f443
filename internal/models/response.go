package models

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// FileResult is the per-file outcome of one upload batch. It only lives for
// the duration of a request; a successful outcome carries the analysis and
// extraction data, a failed one carries a message.
type FileResult struct {
	Status     string            `json:"status"`
	Filename   string            `json:"filename"`
	Analysis   *AnalysisResult   `json:"analysis,omitempty"`
	Extraction *ExtractionResult `json:"extraction_data,omitempty"`
	Message    string            `json:"message,omitempty"`
}

// BatchResponse aggregates all FileResults of one upload request. Results
// holds the successful outcomes sorted by match score descending; Failures
// holds the rest.
type BatchResponse struct {
	Status          string       `json:"status"`
	Message         string       `json:"message"`
	TotalFiles      int          `json:"total_files"`
	SuccessfulFiles int          `json:"successful_files"`
	FailedFiles     int          `json:"failed_files"`
	Results         []FileResult `json:"results"`
	Failures        []FileResult `json:"failures,omitempty"`
}

// CacheStats summarizes the response cache for the cache-status endpoint.
type CacheStats struct {
	TotalCachedResponses     int            `json:"total_cached_responses"`
	AverageMatchScore        float64        `json:"average_match_score"`
	RecommendationsBreakdown map[string]int `json:"recommendations_breakdown"`
	LatestResponses          []CacheEntry   `json:"latest_responses"`
}
