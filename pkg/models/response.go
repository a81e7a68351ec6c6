package models

import "time"

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Uptime    time.Duration     `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ShortlistResponse is returned by the shortlist create/update endpoint.
type ShortlistResponse struct {
	Success  bool   `json:"success"`
	SearchID string `json:"search_id,omitempty"`
	IsUpdate bool   `json:"is_update"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// ProcessingStatusResponse is the poll target for the processing monitor.
type ProcessingStatusResponse struct {
	Processed bool   `json:"processed"`
	SearchID  string `json:"search_id,omitempty"`
}

// IntakeProgressResponse describes the resumable intake cursor for a search.
// RightFields is only present once at least one candidate has been submitted.
type IntakeProgressResponse struct {
	Submitted          int           `json:"submitted"`
	Target             int           `json:"target"`
	CurrentIndex       int           `json:"currentIndex"`
	IsLast             bool          `json:"isLast"`
	ShortlistedIndices IndexList     `json:"shortlisted_indices"`
	RightFields        *SharedFields `json:"right_fields,omitempty"`
	PrevFields         *SharedFields `json:"prev_fields,omitempty"`
}

// IntakeSubmitResponse drives the sequencer's next transition: Redirect set
// means the whole pipeline is done, Next set means advance to the reported
// cursor, Errors set means the cursor did not move.
type IntakeSubmitResponse struct {
	Redirect       string        `json:"redirect,omitempty"`
	Next           bool          `json:"next,omitempty"`
	Submitted      int           `json:"submitted,omitempty"`
	CandidateIndex int           `json:"candidateIndex,omitempty"`
	IsLast         bool          `json:"isLast,omitempty"`
	RightFields    *SharedFields `json:"right_fields,omitempty"`
	Errors         []string      `json:"errors,omitempty"`
}

// ResultsResponse is the full candidate set for a search.
type ResultsResponse struct {
	Success          bool        `json:"success"`
	Candidates       []Candidate `json:"candidates"`
	Total            int         `json:"total"`
	CallsScheduled   int         `json:"calls_scheduled"`
	RescheduledCalls int         `json:"rescheduled_calls"`
	CustomQuestion   string      `json:"custom_question,omitempty"`
}

// CandidateResponse wraps single-candidate mutations.
type CandidateResponse struct {
	Success   bool       `json:"success"`
	Candidate *Candidate `json:"candidate,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// QuestionSuggestionsResponse carries AI-generated screening questions.
type QuestionSuggestionsResponse struct {
	Success   bool     `json:"success"`
	Questions []string `json:"questions,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// CustomQuestionResponse returns the single saved question for a search.
type CustomQuestionResponse struct {
	Success        bool   `json:"success"`
	CustomQuestion string `json:"custom_question"`
}

// StatusResponse is the generic boolean-ish acknowledgment most mutating
// endpoints return.
type StatusResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// TaskListResponse returns assignment records with derived urgency tiers.
type TaskListResponse struct {
	Success bool       `json:"success"`
	Tasks   []TaskView `json:"tasks"`
}

// TaskView pairs a task with its computed urgency.
type TaskView struct {
	Task
	Urgency Urgency `json:"urgency"`
}
