package llm

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`\+?\d[\d\s\-()]{7,}\d`)
	yearsPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*\+?\s*(?:years?|yrs?)`)
)

// HeuristicProvider is a deterministic, offline Provider. It keeps the whole
// pipeline working without an API key and gives tests stable scores.
type HeuristicProvider struct{}

// NewHeuristicProvider creates a new heuristic provider instance
func NewHeuristicProvider() *HeuristicProvider {
	return &HeuristicProvider{}
}

// SuggestQuestions generates template questions from the job's skill list
func (hp *HeuristicProvider) SuggestQuestions(ctx context.Context, job JobContext, count int) ([]string, error) {
	questions := make([]string, 0, count)

	for _, skill := range job.Skills {
		if len(questions) >= count {
			break
		}
		questions = append(questions, fmt.Sprintf("Can you walk me through a recent project where you used %s?", skill))
	}

	fillers := []string{
		fmt.Sprintf("What attracted you to this %s position?", job.Role),
		"What is your current notice period?",
		"Are you comfortable with the compensation range discussed for this role?",
	}
	for _, filler := range fillers {
		if len(questions) >= count {
			break
		}
		questions = append(questions, filler)
	}

	return questions, nil
}

// ScoreResume computes a keyword-overlap score between the resume text and
// the required skills. Identity fields are pulled out with simple patterns.
func (hp *HeuristicProvider) ScoreResume(ctx context.Context, job JobContext, resume string) (*ResumeScore, error) {
	lower := strings.ToLower(resume)

	var matched []string
	for _, skill := range job.Skills {
		if strings.Contains(lower, strings.ToLower(skill)) {
			matched = append(matched, skill)
		}
	}

	score := 0
	if len(job.Skills) > 0 {
		score = len(matched) * 100 / len(job.Skills)
	}

	// Role title mention is a weak positive signal
	if job.Role != "" && strings.Contains(lower, strings.ToLower(job.Role)) {
		score += 5
		if score > 100 {
			score = 100
		}
	}

	totalExp := 0.0
	if m := yearsPattern.FindStringSubmatch(lower); m != nil {
		fmt.Sscanf(m[1], "%f", &totalExp)
	}

	return &ResumeScore{
		Name:        firstNonEmptyLine(resume),
		Email:       emailPattern.FindString(resume),
		Phone:       strings.TrimSpace(phonePattern.FindString(resume)),
		Skills:      matched,
		TotalExp:    totalExp,
		RelevantExp: totalExp,
		Summary:     fmt.Sprintf("Matched %d of %d required skills.", len(matched), len(job.Skills)),
		Score:       score,
	}, nil
}

// IsHealthy always succeeds for the offline provider
func (hp *HeuristicProvider) IsHealthy(ctx context.Context) error {
	return nil
}

// GetProviderName returns the name of the provider
func (hp *HeuristicProvider) GetProviderName() string {
	return "heuristic"
}

func firstNonEmptyLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
