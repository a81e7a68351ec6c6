package models

import "time"

// TranscriptTurn is a single speaker turn within a call transcript.
type TranscriptTurn struct {
	Speaker   string    `json:"speaker"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Call is one attempt at contacting a candidate. Owned by the candidate row;
// read-only once created except for the status/summary updates pushed by the
// calling subsystem.
type Call struct {
	ID          string            `json:"id"`
	CandidateID string            `json:"candidate_id"`
	Duration    int               `json:"duration_seconds"`
	Transcript  []TranscriptTurn  `json:"transcript,omitempty"`
	Extracted   map[string]string `json:"extracted_fields,omitempty"`
	Summary     string            `json:"summary,omitempty"`
	Evaluation  string            `json:"evaluation,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}
