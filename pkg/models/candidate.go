package models

import "time"

// CallStatus represents where a candidate sits in the calling workflow.
// The values are stored and compared verbatim, so they must match what the
// calling subsystem pushes back.
type CallStatus string

const (
	CallStatusNotCalled  CallStatus = "not_called"
	CallStatusScheduled  CallStatus = "scheduled"
	CallStatusAnswered   CallStatus = "Called & Answered"
	CallStatusReschedule CallStatus = "Re-schedule"
	CallStatusFailed     CallStatus = "failed"
)

// Candidate is a person record tied to exactly one search.
type Candidate struct {
	ID          string     `json:"id"`
	SearchID    string     `json:"search_id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Skills      []string   `json:"skills"`
	TotalExp    float64    `json:"total_experience"`
	RelevantExp float64    `json:"relevant_experience"`
	Summary     string     `json:"summary"`
	MatchScore  int        `json:"match_score"`
	CallStatus  CallStatus `json:"call_status"`
	Liked       bool       `json:"liked"`
	FinalSelect bool       `json:"final_select"`
	Joined      bool       `json:"joined"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
