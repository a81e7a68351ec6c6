package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResume = `Alice Smith
alice.smith@example.com
+1 (555) 123-4567

Platform engineer with 8 years of experience building Go services on
Kubernetes. Led migrations to managed Postgres.`

func TestHeuristicScoreResume(t *testing.T) {
	provider := NewHeuristicProvider()
	job := JobContext{
		Role:   "Platform Engineer",
		Skills: []string{"Go", "Kubernetes", "Terraform"},
	}

	score, err := provider.ScoreResume(context.Background(), job, sampleResume)
	require.NoError(t, err)

	assert.Equal(t, "Alice Smith", score.Name)
	assert.Equal(t, "alice.smith@example.com", score.Email)
	assert.NotEmpty(t, score.Phone)
	assert.ElementsMatch(t, []string{"Go", "Kubernetes"}, score.Skills)
	assert.InDelta(t, 8.0, score.TotalExp, 0.01)

	// 2 of 3 skills plus the role mention
	assert.Equal(t, 71, score.Score)
}

func TestHeuristicScoreResumeIsDeterministic(t *testing.T) {
	provider := NewHeuristicProvider()
	job := JobContext{Role: "Backend Engineer", Skills: []string{"Go"}}

	first, err := provider.ScoreResume(context.Background(), job, sampleResume)
	require.NoError(t, err)
	second, err := provider.ScoreResume(context.Background(), job, sampleResume)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestHeuristicScoreResumeNoSkills(t *testing.T) {
	provider := NewHeuristicProvider()

	score, err := provider.ScoreResume(context.Background(), JobContext{}, "nothing relevant")
	require.NoError(t, err)
	assert.Equal(t, 0, score.Score)
}

func TestHeuristicSuggestQuestions(t *testing.T) {
	provider := NewHeuristicProvider()
	job := JobContext{Role: "Backend Engineer", Skills: []string{"Go", "Postgres"}}

	questions, err := provider.SuggestQuestions(context.Background(), job, 5)
	require.NoError(t, err)

	assert.Len(t, questions, 5)
	assert.Contains(t, questions[0], "Go")
	assert.Contains(t, questions[1], "Postgres")
}
