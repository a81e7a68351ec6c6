package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "250ms", FormatDuration(250*time.Millisecond))
	assert.Equal(t, "2.50s", FormatDuration(2500*time.Millisecond))
	assert.Equal(t, "1.5m", FormatDuration(90*time.Second))
	assert.Equal(t, "2.0h", FormatDuration(2*time.Hour))
}

func TestContains(t *testing.T) {
	skills := []string{"Go", "Postgres"}
	assert.True(t, Contains(skills, "Go"))
	assert.False(t, Contains(skills, "go"))
	assert.False(t, Contains(nil, "Go"))
}

func TestGetStringOrDefault(t *testing.T) {
	assert.Equal(t, "/tmp", GetStringOrDefault("", "/tmp"))
	assert.Equal(t, "/scratch", GetStringOrDefault("/scratch", "/tmp"))
}

func TestSplitCommaList(t *testing.T) {
	assert.Equal(t, []string{"Go", "Postgres"}, SplitCommaList(" Go , Postgres ,, "))
	assert.Empty(t, SplitCommaList("  ,  "))

	// Repeated entries collapse to one
	assert.Equal(t, []string{"Go", "Postgres"}, SplitCommaList("Go,Go,Postgres,Go"))
}
