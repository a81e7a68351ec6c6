package models

// ShortlistRequest is the criteria payload for creating or updating a search.
// SearchID is set only for update-in-place; importing from a task always
// leaves it empty so a fresh search is created.
type ShortlistRequest struct {
	SearchID       string   `json:"search_id,omitempty" form:"search_id"`
	SearchName     string   `json:"search_name" form:"search_name" validate:"required"`
	JobRole        string   `json:"job_role" form:"job_role" validate:"required"`
	Skills         []string `json:"skills" form:"skills" validate:"required,min=1"`
	CandidateText  string   `json:"candidate_text" form:"candidate_text" validate:"required"`
	Company        string   `json:"company" form:"company"`
	Location       string   `json:"location" form:"location"`
	HRContact      string   `json:"hr_contact" form:"hr_contact"`
	NoticePeriod   string   `json:"notice_period" form:"notice_period"`
	Remote         string   `json:"remote" form:"remote"`
	Contract       string   `json:"contract" form:"contract"`
	CandidateCount int      `json:"candidate_count" form:"candidate_count" validate:"required,min=1,max=50"`
}

// CandidateUpsertRequest creates or edits a candidate row from the results
// page. CandidateID empty means create.
type CandidateUpsertRequest struct {
	CandidateID string   `json:"candidate_id,omitempty"`
	SearchID    string   `json:"search_id" validate:"required"`
	Name        string   `json:"name" validate:"required"`
	Email       string   `json:"email" validate:"required,email"`
	Phone       string   `json:"phone" validate:"required"`
	Skills      []string `json:"skills"`
	TotalExp    float64  `json:"total_experience"`
	RelevantExp float64  `json:"relevant_experience"`
	Summary     string   `json:"summary"`
	MatchScore  int      `json:"match_score" validate:"min=0,max=100"`
}

// LikeRequest toggles the liked flag on a candidate.
type LikeRequest struct {
	CandidateID string `json:"candidate_id" validate:"required"`
	Liked       bool   `json:"liked"`
}

// CallCandidate is the per-candidate payload handed to the calling service.
type CallCandidate struct {
	CandidateID string   `json:"candidate_id"`
	Name        string   `json:"name"`
	Phone       string   `json:"phone"`
	Skills      []string `json:"skills"`
	Company     string   `json:"company"`
}

// CallRequest initiates calls. Single-candidate requests carry exactly one
// entry; bulk requests carry the whole selected set in one batch so partial
// failure is owned by the server.
type CallRequest struct {
	SearchID   string          `json:"search_id" validate:"required"`
	Candidates []CallCandidate `json:"candidates" validate:"required,min=1"`
}

// JoinedUpdate flips the joined flag for one final-select candidate.
type JoinedUpdate struct {
	CandidateID string `json:"candidate_id"`
	Joined      bool   `json:"joined"`
}

// FinalSelectsRequest applies joined updates and removals in a single batch.
type FinalSelectsRequest struct {
	SearchID        string         `json:"search_id" validate:"required"`
	AddToFinal      []string       `json:"add_to_final,omitempty"`
	Joined          []JoinedUpdate `json:"joined,omitempty"`
	RemoveFromFinal []string       `json:"remove_from_final,omitempty"`
}

// CustomQuestionRequest persists the single screening question for a search.
type CustomQuestionRequest struct {
	SearchID string `json:"search_id" validate:"required"`
	Question string `json:"question" validate:"required"`
}

// CallStatusUpdate is pushed by the calling subsystem when a call finishes or
// is rescheduled.
type CallStatusUpdate struct {
	CandidateID string            `json:"candidate_id" validate:"required"`
	Status      CallStatus        `json:"status" validate:"required"`
	Duration    int               `json:"duration_seconds"`
	Transcript  []TranscriptTurn  `json:"transcript,omitempty"`
	Extracted   map[string]string `json:"extracted_fields,omitempty"`
	Summary     string            `json:"summary,omitempty"`
	Evaluation  string            `json:"evaluation,omitempty"`
}

// TaskCreateRequest assigns a job opening to a recruiter.
type TaskCreateRequest struct {
	Title       string   `json:"title" validate:"required"`
	JobRole     string   `json:"job_role" validate:"required"`
	Skills      []string `json:"skills"`
	Description string   `json:"description"`
	AssignedTo  string   `json:"assigned_to" validate:"required"`
	Deadline    string   `json:"deadline" validate:"required"`
}
