package llm

import "context"

// JobContext is the criteria a provider scores and questions against.
type JobContext struct {
	Role           string   `json:"role"`
	Skills         []string `json:"skills"`
	Description    string   `json:"description,omitempty"`
	CustomQuestion string   `json:"custom_question,omitempty"`
}

// ResumeScore is the structured result of scoring one resume blob against a
// job. Identity fields are extracted from the resume text itself.
type ResumeScore struct {
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	Skills      []string `json:"skills"`
	TotalExp    float64  `json:"total_experience"`
	RelevantExp float64  `json:"relevant_experience"`
	Summary     string   `json:"summary"`
	Score       int      `json:"match_score"`
}

// Provider defines the interface for question-suggestion and resume-scoring
// backends.
type Provider interface {
	// SuggestQuestions generates screening questions for the given job
	SuggestQuestions(ctx context.Context, job JobContext, count int) ([]string, error)

	// ScoreResume evaluates a resume blob against the job criteria
	ScoreResume(ctx context.Context, job JobContext, resume string) (*ResumeScore, error)

	// IsHealthy checks if the provider is available
	IsHealthy(ctx context.Context) error

	// GetProviderName returns the name of the provider
	GetProviderName() string
}
