package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"hiredesk/internal/config"
	"hiredesk/internal/logging"
)

// ClaudeProvider implements the Provider interface using Anthropic's Claude
type ClaudeProvider struct {
	client anthropic.Client
	config *config.Config
	logger logging.Logger
}

// NewClaudeProvider creates a new Claude provider instance
func NewClaudeProvider(cfg *config.Config) *ClaudeProvider {
	client := anthropic.NewClient(
		option.WithAPIKey(cfg.LLM.APIKey),
	)

	return &ClaudeProvider{
		client: client,
		config: cfg,
		logger: logging.GetGlobalLogger(),
	}
}

// SuggestQuestions generates screening questions for the given job using Claude
func (cp *ClaudeProvider) SuggestQuestions(ctx context.Context, job JobContext, count int) ([]string, error) {
	prompt := cp.buildQuestionPrompt(job, count)

	responseText, err := cp.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var questions []string
	if err := json.Unmarshal([]byte(extractJSON(responseText)), &questions); err != nil {
		return nil, fmt.Errorf("failed to parse Claude question response: %w", err)
	}

	if len(questions) > count {
		questions = questions[:count]
	}

	return questions, nil
}

// ScoreResume evaluates a resume blob against the job criteria using Claude
func (cp *ClaudeProvider) ScoreResume(ctx context.Context, job JobContext, resume string) (*ResumeScore, error) {
	startTime := time.Now()

	// Rough estimation: 3 chars per token
	maxContentLength := cp.config.LLM.MaxTokens * 3
	if len(resume) > maxContentLength {
		resume = resume[:maxContentLength] + "..."
		cp.logger.Debug("Resume truncated to fit token limits")
	}

	prompt := cp.buildScoringPrompt(job, resume)

	responseText, err := cp.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var score ResumeScore
	if err := json.Unmarshal([]byte(extractJSON(responseText)), &score); err != nil {
		return nil, fmt.Errorf("failed to parse Claude scoring response: %w", err)
	}

	if score.Score < 0 {
		score.Score = 0
	}
	if score.Score > 100 {
		score.Score = 100
	}

	cp.logger.WithFields(map[string]interface{}{
		"job_role":        job.Role,
		"match_score":     score.Score,
		"processing_time": time.Since(startTime),
		"provider":        "claude",
	}).Info("Resume scoring completed")

	return &score, nil
}

// IsHealthy checks if the Claude API is reachable
func (cp *ClaudeProvider) IsHealthy(ctx context.Context) error {
	if cp.config.LLM.APIKey == "" {
		return fmt.Errorf("claude API key not configured")
	}
	return nil
}

// GetProviderName returns the name of the provider
func (cp *ClaudeProvider) GetProviderName() string {
	return "claude"
}

func (cp *ClaudeProvider) complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, cp.config.LLM.Timeout)
	defer cancel()

	response, err := cp.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(cp.config.LLM.Model),
		MaxTokens:   int64(cp.config.LLM.MaxTokens),
		Temperature: anthropic.Float(float64(cp.config.LLM.Temperature)),
		Messages: []anthropic.MessageParam{{
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: prompt},
			}},
			Role: anthropic.MessageParamRoleUser,
		}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to call Claude API: %w", err)
	}

	if len(response.Content) == 0 {
		return "", fmt.Errorf("empty response from Claude")
	}

	var responseText string
	for _, content := range response.Content {
		textContent := content.AsText()
		responseText = textContent.Text
		break
	}

	return responseText, nil
}

func (cp *ClaudeProvider) buildQuestionPrompt(job JobContext, count int) string {
	return fmt.Sprintf(`You are a technical recruiter. Generate %d short screening questions for a phone interview.

Job role: %s
Required skills: %s

IMPORTANT RULES:
1. Return ONLY a valid JSON array of strings, no additional text
2. Each question must be answerable in under a minute on a phone call
3. Questions must probe the required skills, not generic behavior`,
		count, job.Role, strings.Join(job.Skills, ", "))
}

func (cp *ClaudeProvider) buildScoringPrompt(job JobContext, resume string) string {
	return fmt.Sprintf(`You are a resume screener. Evaluate the resume below against the job criteria and return a JSON object with exactly these fields:

{
  "name": "string - candidate full name",
  "email": "string - candidate email, empty if absent",
  "phone": "string - candidate phone, empty if absent",
  "skills": ["array of strings - skills found in the resume"],
  "total_experience": number - total years of experience,
  "relevant_experience": number - years relevant to this role,
  "summary": "string - 2-3 sentence evaluation",
  "match_score": number - integer 0-100 fit score
}

IMPORTANT RULES:
1. Return ONLY valid JSON, no additional text or explanation
2. If information is not found, use empty string "" for strings, empty array [] for arrays, and 0 for numbers
3. The match score must weigh the required skills heavily

JOB ROLE: %s
REQUIRED SKILLS: %s

RESUME:
%s`, job.Role, strings.Join(job.Skills, ", "), resume)
}

// extractJSON strips markdown code fences and surrounding prose so the body
// parses even when the model wraps its answer.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)

	if idx := strings.Index(text, "```"); idx != -1 {
		text = text[idx+3:]
		text = strings.TrimPrefix(text, "json")
		if end := strings.Index(text, "```"); end != -1 {
			text = text[:end]
		}
	}

	start := strings.IndexAny(text, "[{")
	if start == -1 {
		return text
	}

	end := strings.LastIndexAny(text, "]}")
	if end == -1 || end < start {
		return text
	}

	return strings.TrimSpace(text[start : end+1])
}
