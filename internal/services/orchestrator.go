package services

import (
	"context"
	"fmt"
	"math/rand"
	"mime/multipart"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"resumescreen/resume-screener/internal/models"
)

const pdfContentType = "application/pdf"

type OrchestratorService interface {
	// ProcessBatch runs the full per-file pipeline for every uploaded file
	// across a bounded worker pool and aggregates the outcomes. A failure in
	// one file never aborts its siblings.
	ProcessBatch(ctx context.Context, files []*multipart.FileHeader, jobDescription string, mock bool) models.BatchResponse
}

type orchestratorService struct {
	storage     StorageService
	extractor   PDFExtractorService
	analyzer    AnalyzerService
	cache       CacheStore
	poolSize    int
	maxFileSize int64
	log         *logrus.Logger
}

func NewOrchestratorService(
	storage StorageService,
	extractor PDFExtractorService,
	analyzer AnalyzerService,
	cache CacheStore,
	poolSize int,
	maxFileSize int64,
	log *logrus.Logger,
) OrchestratorService {
	return &orchestratorService{
		storage:     storage,
		extractor:   extractor,
		analyzer:    analyzer,
		cache:       cache,
		poolSize:    poolSize,
		maxFileSize: maxFileSize,
		log:         log,
	}
}

func (o *orchestratorService) ProcessBatch(ctx context.Context, files []*multipart.FileHeader, jobDescription string, mock bool) models.BatchResponse {
	workers := o.poolSize
	if len(files) < workers {
		workers = len(files)
	}

	jobs := make(chan *multipart.FileHeader)
	outcomes := make(chan models.FileResult, len(files))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for file := range jobs {
				o.log.WithFields(logrus.Fields{
					"worker": workerID,
					"file":   file.Filename,
				}).Debug("Processing file")
				outcomes <- o.processFile(ctx, file, jobDescription, mock)
			}
		}(i + 1)
	}

	for _, file := range files {
		jobs <- file
	}
	close(jobs)
	wg.Wait()
	close(outcomes)

	var successes, failures []models.FileResult
	for outcome := range outcomes {
		if outcome.Status == models.StatusSuccess {
			successes = append(successes, outcome)
		} else {
			failures = append(failures, outcome)
		}
	}

	// Stable sort keeps completion order for equal scores.
	sort.SliceStable(successes, func(i, j int) bool {
		return successes[i].Analysis.MatchScore > successes[j].Analysis.MatchScore
	})

	response := models.BatchResponse{
		TotalFiles:      len(files),
		SuccessfulFiles: len(successes),
		FailedFiles:     len(failures),
		Results:         successes,
		Failures:        failures,
	}
	if len(successes) == 0 {
		response.Status = models.StatusError
		response.Message = "All files failed to process"
	} else {
		response.Status = models.StatusSuccess
		response.Message = fmt.Sprintf("%d of %d resumes processed successfully", len(successes), len(files))
	}
	return response
}

func (o *orchestratorService) processFile(ctx context.Context, file *multipart.FileHeader, jobDescription string, mock bool) (result models.FileResult) {
	// A panic in one file's pipeline becomes an error outcome for that file.
	defer func() {
		if r := recover(); r != nil {
			o.log.WithField("file", file.Filename).Errorf("Panic while processing file: %v", r)
			result = errorResult(file.Filename, fmt.Sprintf("Error processing file: %v", r))
		}
	}()

	contentType := file.Header.Get("Content-Type")
	if contentType != pdfContentType {
		return errorResult(file.Filename,
			fmt.Sprintf("File type %s not supported. Please upload PDF files only.", contentType))
	}

	if file.Size > o.maxFileSize {
		return errorResult(file.Filename,
			fmt.Sprintf("File too large. Maximum size is %d bytes.", o.maxFileSize))
	}

	scratchPath, err := o.storage.SaveScratch(file)
	if err != nil {
		return errorResult(file.Filename, fmt.Sprintf("Error processing file: %v", err))
	}
	defer o.storage.RemoveScratch(scratchPath)

	if ok, reason := o.extractor.Validate(scratchPath); !ok {
		return errorResult(file.Filename, fmt.Sprintf("Invalid PDF file: %s", reason))
	}

	extraction := o.extractor.Extract(scratchPath)
	if extraction.Error != "" {
		return errorResult(file.Filename, fmt.Sprintf("Failed to extract text from PDF: %s", extraction.Error))
	}

	var analysis models.AnalysisResult
	if mock {
		analysis = o.mockAnalysis(file.Filename)
	} else {
		analysis = o.analyzer.Analyze(ctx, jobDescription, extraction.Text)
	}

	result = models.FileResult{
		Status:     models.StatusSuccess,
		Filename:   file.Filename,
		Analysis:   &analysis,
		Extraction: extraction,
	}

	// An analyzer failure is still a well-formed outcome, but only genuine
	// analyses go into the response cache.
	if !mock && analysis.Error == "" {
		if err := o.cache.Save(result); err != nil {
			o.log.WithError(err).Warn("Failed to cache analysis result")
		}
	}
	return result
}

// mockAnalysis replays a randomized cached response, falling back to a
// synthetic placeholder when the cache is empty.
func (o *orchestratorService) mockAnalysis(filename string) models.AnalysisResult {
	if entry, ok := o.cache.Sample(filename); ok {
		return models.AnalysisResult{
			CandidateName:    entry.CandidateName,
			MatchScore:       entry.MatchScore,
			Reasoning:        entry.Reasoning,
			Strengths:        entry.Strengths,
			ImprovementAreas: entry.ImprovementAreas,
			Recommendation:   entry.Recommendation,
			Summary:          entry.Summary,
			Timestamp:        entry.Timestamp,
			ProcessingTime:   entry.ProcessingTime,
		}
	}
	return syntheticAnalysis()
}

func syntheticAnalysis() models.AnalysisResult {
	return models.AnalysisResult{
		CandidateName: fmt.Sprintf("Test Candidate %d", rand.Intn(100)+1),
		MatchScore:    75 + rand.Intn(25),
		Reasoning:     "This is a synthetic mock response generated because the response cache is empty.",
		Strengths: []string{
			"Relevant professional experience",
			"Strong technical skill set",
			"Clear and well-structured resume",
		},
		ImprovementAreas: []string{
			"Limited evidence of leadership experience",
			"Certifications could strengthen the profile",
		},
		Recommendation: models.RecommendationGood,
		Summary:        "Synthetic placeholder analysis used in mock mode.",
		Timestamp:      time.Now(),
	}
}

func errorResult(filename, message string) models.FileResult {
	return models.FileResult{
		Status:   models.StatusError,
		Filename: filename,
		Message:  message,
	}
}
