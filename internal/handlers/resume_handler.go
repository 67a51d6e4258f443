package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"resumescreen/resume-screener/internal/models"
	"resumescreen/resume-screener/internal/services"
)

type ResumeHandler struct {
	orchestrator services.OrchestratorService
	analyzer     services.AnalyzerService
	log          *logrus.Logger
}

func NewResumeHandler(
	orchestrator services.OrchestratorService,
	analyzer services.AnalyzerService,
	log *logrus.Logger,
) *ResumeHandler {
	return &ResumeHandler{
		orchestrator: orchestrator,
		analyzer:     analyzer,
		log:          log,
	}
}

// HandleUploadResume handles POST /api/upload-resume. It accepts one or more
// PDF files under the "file" field plus a job_description and an optional
// mock flag, and returns the aggregated batch result. A batch with at least
// one success is a 200; partial failure is an expected outcome, not an error.
func (h *ResumeHandler) HandleUploadResume(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  models.StatusError,
			"message": "failed to parse multipart form",
		})
	}

	files := form.File["file"]
	if len(files) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  models.StatusError,
			"message": "No file uploaded. Attach at least one PDF under the 'file' field.",
		})
	}

	jobDescription := c.FormValue("job_description")
	if jobDescription == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  models.StatusError,
			"message": "job_description is required",
		})
	}

	mock := c.FormValue("mock") == "true"

	batch := h.orchestrator.ProcessBatch(c.UserContext(), files, jobDescription, mock)

	if batch.SuccessfulFiles == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(batch)
	}

	// Single-file uploads keep the flat response shape older clients expect.
	if batch.TotalFiles == 1 && batch.SuccessfulFiles == 1 {
		return c.JSON(flattenSingle(batch, jobDescription))
	}

	return c.JSON(batch)
}

// HandleAnalyzeResume handles POST /api/analyze-resume: analysis of already
// extracted resume text, no file upload involved.
func (h *ResumeHandler) HandleAnalyzeResume(c *fiber.Ctx) error {
	jobDescription := c.FormValue("job_description")
	if jobDescription == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  models.StatusError,
			"message": "job_description is required",
		})
	}

	resumeText := c.FormValue("resume_text")
	if resumeText == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  models.StatusError,
			"message": "resume_text is required",
		})
	}

	analysis := h.analyzer.Analyze(c.UserContext(), jobDescription, resumeText)

	preview := resumeText
	if len(preview) > 200 {
		preview = preview[:200] + "..."
	}

	return c.JSON(fiber.Map{
		"status":              models.StatusSuccess,
		"message":             "Resume analysis completed",
		"job_description":     jobDescription,
		"resume_text_preview": preview,
		"ai_analysis":         analysis,
		"timestamp":           time.Now(),
	})
}

func flattenSingle(batch models.BatchResponse, jobDescription string) fiber.Map {
	result := batch.Results[0]
	analysis := result.Analysis
	return fiber.Map{
		"status":            models.StatusSuccess,
		"message":           "Resume processed successfully",
		"filename":          result.Filename,
		"job_description":   jobDescription,
		"candidate_name":    analysis.CandidateName,
		"match_score":       analysis.MatchScore,
		"summary":           analysis.Summary,
		"strengths":         analysis.Strengths,
		"improvement_areas": analysis.ImprovementAreas,
		"reasoning":         analysis.Reasoning,
		"recommendation":    analysis.Recommendation,
		"extraction_data":   result.Extraction,
		"timestamp":         analysis.Timestamp,
	}
}
