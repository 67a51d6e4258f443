package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"resumescreen/resume-screener/internal/config"
	"resumescreen/resume-screener/internal/models"
	"resumescreen/resume-screener/internal/services"
)

type stubOrchestrator struct {
	response models.BatchResponse
	gotMock  bool
	gotFiles int
}

func (s *stubOrchestrator) ProcessBatch(ctx context.Context, files []*multipart.FileHeader, jobDescription string, mock bool) models.BatchResponse {
	s.gotMock = mock
	s.gotFiles = len(files)
	return s.response
}

type stubAnalyzer struct {
	result models.AnalysisResult
}

func (s *stubAnalyzer) Analyze(ctx context.Context, jobDescription, resumeText string) models.AnalysisResult {
	return s.result
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestApp(orchestrator services.OrchestratorService, analyzer services.AnalyzerService) *fiber.App {
	app := fiber.New()
	handler := NewResumeHandler(orchestrator, analyzer, testLogger())
	app.Post("/api/upload-resume", handler.HandleUploadResume)
	app.Post("/api/analyze-resume", handler.HandleAnalyzeResume)
	return app
}

func multipartRequest(t *testing.T, fields map[string]string, filenames ...string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for key, value := range fields {
		require.NoError(t, w.WriteField(key, value))
	}
	for _, name := range filenames {
		part, err := w.CreateFormFile("file", name)
		require.NoError(t, err)
		_, err = part.Write([]byte("%PDF-1.4 placeholder"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload-resume", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func successBatch(filenames ...string) models.BatchResponse {
	var results []models.FileResult
	for i, name := range filenames {
		results = append(results, models.FileResult{
			Status:   models.StatusSuccess,
			Filename: name,
			Analysis: &models.AnalysisResult{
				CandidateName:    "John Doe",
				MatchScore:       90 - i*10,
				Reasoning:        "fits well",
				Strengths:        []string{"Python"},
				ImprovementAreas: []string{},
				Recommendation:   models.RecommendationGood,
				Summary:          "good candidate",
			},
			Extraction: &models.ExtractionResult{Pages: 1, Text: "--- Page 1 ---\nJohn Doe"},
		})
	}
	return models.BatchResponse{
		Status:          models.StatusSuccess,
		Message:         "processed",
		TotalFiles:      len(filenames),
		SuccessfulFiles: len(filenames),
		Results:         results,
	}
}

func TestUploadResumeNoFile(t *testing.T) {
	app := newTestApp(&stubOrchestrator{}, &stubAnalyzer{})

	resp, err := app.Test(multipartRequest(t, map[string]string{"job_description": "SWE"}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, gjson.GetBytes(body, "message").String(), "No file uploaded")
}

func TestUploadResumeMissingJobDescription(t *testing.T) {
	app := newTestApp(&stubOrchestrator{}, &stubAnalyzer{})

	resp, err := app.Test(multipartRequest(t, nil, "resume.pdf"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUploadResumeSingleSuccessFlattened(t *testing.T) {
	orchestrator := &stubOrchestrator{response: successBatch("resume.pdf")}
	app := newTestApp(orchestrator, &stubAnalyzer{})

	req := multipartRequest(t, map[string]string{"job_description": "SWE", "mock": "true"}, "resume.pdf")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, orchestrator.gotMock)
	assert.Equal(t, 1, orchestrator.gotFiles)

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "success", gjson.GetBytes(body, "status").String())
	assert.Equal(t, "resume.pdf", gjson.GetBytes(body, "filename").String())
	assert.Equal(t, int64(90), gjson.GetBytes(body, "match_score").Int())
	assert.Equal(t, "John Doe", gjson.GetBytes(body, "candidate_name").String())
	assert.Equal(t, "SWE", gjson.GetBytes(body, "job_description").String())
	assert.True(t, gjson.GetBytes(body, "extraction_data").Exists())
}

func TestUploadResumeMultiFileKeepsBatchShape(t *testing.T) {
	orchestrator := &stubOrchestrator{response: successBatch("a.pdf", "b.pdf")}
	app := newTestApp(orchestrator, &stubAnalyzer{})

	req := multipartRequest(t, map[string]string{"job_description": "SWE"}, "a.pdf", "b.pdf")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, int64(2), gjson.GetBytes(body, "total_files").Int())
	assert.Equal(t, int64(2), gjson.GetBytes(body, "successful_files").Int())
	assert.Len(t, gjson.GetBytes(body, "results").Array(), 2)
}

func TestUploadResumeAllFailed(t *testing.T) {
	orchestrator := &stubOrchestrator{response: models.BatchResponse{
		Status:      models.StatusError,
		Message:     "All files failed to process",
		TotalFiles:  1,
		FailedFiles: 1,
		Failures: []models.FileResult{
			{Status: models.StatusError, Filename: "bad.pdf", Message: "Invalid PDF file: File is not a valid PDF (invalid header)"},
		},
	}}
	app := newTestApp(orchestrator, &stubAnalyzer{})

	req := multipartRequest(t, map[string]string{"job_description": "SWE"}, "bad.pdf")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "error", gjson.GetBytes(body, "status").String())
	assert.Len(t, gjson.GetBytes(body, "failures").Array(), 1)
}

func TestAnalyzeResume(t *testing.T) {
	analyzer := &stubAnalyzer{result: models.AnalysisResult{
		CandidateName:  "John Doe",
		MatchScore:     72,
		Recommendation: models.RecommendationModerate,
		Summary:        "decent fit",
	}}
	app := newTestApp(&stubOrchestrator{}, analyzer)

	payload := "job_description=SWE&resume_text=John+Doe%2C+Python%2C+React"
	req := httptest.NewRequest(http.MethodPost, "/api/analyze-resume", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, int64(72), gjson.GetBytes(body, "ai_analysis.match_score").Int())
	assert.Equal(t, "John Doe, Python, React", gjson.GetBytes(body, "resume_text_preview").String())
}

func TestAnalyzeResumeMissingFields(t *testing.T) {
	app := newTestApp(&stubOrchestrator{}, &stubAnalyzer{})

	req := httptest.NewRequest(http.MethodPost, "/api/analyze-resume", bytes.NewBufferString("job_description=SWE"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCacheStatusEndpoint(t *testing.T) {
	cache := services.NewCacheStore(config.CacheConfig{
		FilePath:   filepath.Join(t.TempDir(), "cache.json"),
		MaxEntries: 100,
	}, testLogger())

	require.NoError(t, cache.Save(models.FileResult{
		Status:   models.StatusSuccess,
		Filename: "jane.pdf",
		Analysis: &models.AnalysisResult{
			CandidateName:  "Jane Roe",
			MatchScore:     64,
			Recommendation: models.RecommendationModerate,
		},
	}))

	app := fiber.New()
	app.Get("/api/cache-status", NewCacheHandler(cache).HandleCacheStatus)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/cache-status", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var stats models.CacheStats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, 1, stats.TotalCachedResponses)
	assert.Equal(t, 64.0, stats.AverageMatchScore)
	assert.Equal(t, 1, stats.RecommendationsBreakdown[models.RecommendationModerate])
	require.Len(t, stats.LatestResponses, 1)
	assert.Equal(t, "Jane Roe", stats.LatestResponses[0].CandidateName)
}
