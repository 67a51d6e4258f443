package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"resumescreen/resume-screener/internal/config"
	"resumescreen/resume-screener/internal/models"
)

type AnalyzerService interface {
	// Analyze asks the chat-completion API how well the resume matches the
	// job description. It never returns an error: transport failures and
	// unparseable replies are folded into the result's Error field so every
	// file in a batch gets a well-formed outcome.
	Analyze(ctx context.Context, jobDescription, resumeText string) models.AnalysisResult
}

type analyzerService struct {
	client        *resty.Client
	model         string
	promptBuilder *PromptBuilder
	log           *logrus.Logger
}

func NewAnalyzerService(cfg config.AnalyzerConfig, log *logrus.Logger) AnalyzerService {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json")

	return &analyzerService{
		client:        client,
		model:         cfg.Model,
		promptBuilder: NewPromptBuilder(),
		log:           log,
	}
}

func (a *analyzerService) Analyze(ctx context.Context, jobDescription, resumeText string) models.AnalysisResult {
	start := time.Now()
	prompt := a.promptBuilder.BuildMatchAnalysisPrompt(jobDescription, resumeText)

	resp, err := a.client.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"model": a.model,
			"messages": []map[string]string{
				{"role": "user", "content": prompt},
			},
			"temperature": 0.3,
			"max_tokens":  2000,
			"top_p":       0.9,
		}).
		Post("/chat/completions")
	if err != nil {
		a.log.WithError(err).Error("Analysis request failed")
		return stamp(transportErrorResult(fmt.Sprintf("Analysis failed: %v", err)), start)
	}

	if resp.StatusCode() != http.StatusOK {
		a.log.WithFields(logrus.Fields{
			"status": resp.StatusCode(),
			"body":   resp.String(),
		}).Error("Analysis API returned non-OK status")
		msg := fmt.Sprintf("Analysis failed: API error: %d - %s", resp.StatusCode(), resp.String())
		return stamp(transportErrorResult(msg), start)
	}

	content := gjson.GetBytes(resp.Body(), "choices.0.message.content").String()

	result, err := parseModelReply(content)
	if err != nil {
		a.log.WithError(err).Warn("Failed to parse analysis reply")
		return stamp(unparsedResult(content, err), start)
	}

	a.log.WithFields(logrus.Fields{
		"candidate":   result.CandidateName,
		"match_score": result.MatchScore,
	}).Info("Analysis completed")
	return stamp(result, start)
}

// modelReply is the JSON shape the prompt instructs the model to produce.
// MatchScore is a pointer so a reply that omits it can be told apart from a
// genuine zero score.
type modelReply struct {
	CandidateName    string   `json:"candidate_name"`
	MatchScore       *float64 `json:"match_score"`
	Reasoning        string   `json:"reasoning"`
	Strengths        []string `json:"strengths"`
	ImprovementAreas []string `json:"improvement_areas"`
	Recommendation   string   `json:"recommendation"`
	Summary          string   `json:"summary"`
}

// parseModelReply turns the model's free text into an AnalysisResult or an
// error describing why the reply is unusable. A reply without a numeric
// match_score counts as a parse failure; the remaining fields get placeholder
// defaults when absent.
func parseModelReply(content string) (models.AnalysisResult, error) {
	cleaned := stripCodeFences(content)
	if cleaned == "" {
		return models.AnalysisResult{}, fmt.Errorf("empty reply")
	}

	var reply modelReply
	if err := json.Unmarshal([]byte(cleaned), &reply); err != nil {
		return models.AnalysisResult{}, fmt.Errorf("invalid JSON: %w", err)
	}

	if reply.MatchScore == nil {
		return models.AnalysisResult{}, fmt.Errorf("reply has no match_score")
	}

	score := int(math.Round(*reply.MatchScore))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	result := models.AnalysisResult{
		CandidateName:    reply.CandidateName,
		MatchScore:       score,
		Reasoning:        reply.Reasoning,
		Strengths:        reply.Strengths,
		ImprovementAreas: reply.ImprovementAreas,
		Recommendation:   reply.Recommendation,
		Summary:          reply.Summary,
	}
	if result.CandidateName == "" {
		result.CandidateName = "Unknown"
	}
	if result.Reasoning == "" {
		result.Reasoning = "No reasoning provided"
	}
	if result.Strengths == nil {
		result.Strengths = []string{}
	}
	if result.ImprovementAreas == nil {
		result.ImprovementAreas = []string{}
	}
	if result.Recommendation == "" {
		result.Recommendation = "No recommendation"
	}
	if result.Summary == "" {
		result.Summary = "No summary provided"
	}
	return result, nil
}

// stripCodeFences removes the markdown wrapping models like to put around
// JSON and narrows the text to the outermost object.
func stripCodeFences(content string) string {
	cleaned := strings.TrimSpace(content)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start != -1 && end > start {
		return cleaned[start : end+1]
	}
	return cleaned
}

func transportErrorResult(msg string) models.AnalysisResult {
	return models.AnalysisResult{
		CandidateName:    "Unknown",
		MatchScore:       0,
		Reasoning:        "Unable to analyze due to technical error",
		Strengths:        []string{},
		ImprovementAreas: []string{},
		Recommendation:   models.RecommendationUnknown,
		Summary:          "Analysis failed",
		Error:            msg,
	}
}

func unparsedResult(raw string, err error) models.AnalysisResult {
	return models.AnalysisResult{
		CandidateName:    "Unknown",
		MatchScore:       0,
		Reasoning:        "Unable to parse AI analysis",
		Strengths:        []string{},
		ImprovementAreas: []string{},
		Recommendation:   models.RecommendationUnknown,
		Summary:          "Analysis failed",
		Error:            fmt.Sprintf("Failed to parse AI response: %v", err),
		RawResponse:      raw,
	}
}

func stamp(result models.AnalysisResult, start time.Time) models.AnalysisResult {
	result.Timestamp = time.Now()
	result.ProcessingTime = math.Round(time.Since(start).Seconds()*1000) / 1000
	return result
}
