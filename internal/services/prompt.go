package services

import "fmt"

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildMatchAnalysisPrompt creates the prompt for the resume-job match
// analysis. The model is instructed to answer with strict JSON so the reply
// can be parsed into an AnalysisResult.
func (pb *PromptBuilder) BuildMatchAnalysisPrompt(jobDescription, resumeContent string) string {
	return fmt.Sprintf(`You are an expert HR recruiter and AI analyst. Your task is to analyze how well a candidate's resume matches a specific job description.

JOB DESCRIPTION:
%s

RESUME CONTENT:
%s

Please analyze the match and provide:

1. A match score from 0-100 (where 100 is perfect match)
2. Detailed reasoning for the score
3. Key strengths of the candidate for this role
4. Areas where the candidate might need improvement
5. Overall recommendation (Strong Match, Good Match, Moderate Match, Weak Match, or Poor Match)

Format your response as JSON with the following structure:
{
    "candidate_name": "<candidate name if found>",
    "match_score": <number>,
    "reasoning": "<detailed explanation>",
    "strengths": ["<strength1>", "<strength2>", ...],
    "improvement_areas": ["<area1>", "<area2>", ...],
    "recommendation": "<recommendation>",
    "summary": "<brief summary>"
}

Be objective, thorough, and provide actionable insights. Focus on specific skills, experience, and qualifications mentioned in both the job description and resume.`,
		jobDescription, resumeContent)
}
