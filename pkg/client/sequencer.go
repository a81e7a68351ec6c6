package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"hiredesk/pkg/models"
)

// SequencerState is the intake state machine's position.
type SequencerState int

const (
	// StateUninitialized is the state before the first progress fetch.
	StateUninitialized SequencerState = iota
	// StateAwaiting means the current index is ready for data entry.
	StateAwaiting
	// StateSubmitting means a submission is in flight; a second submission
	// is rejected until it resolves.
	StateSubmitting
	// StateComplete means every shortlisted candidate has been submitted.
	StateComplete
)

// Sequencer errors.
var (
	ErrNotInitialized       = errors.New("sequencer not initialized, call Load first")
	ErrAlreadyInitialized   = errors.New("sequencer already initialized")
	ErrSubmissionInFlight   = errors.New("a submission is already in flight")
	ErrIntakeComplete       = errors.New("intake is complete")
	ErrSharedFieldsLocked   = errors.New("shared fields are locked after the first submission")
	ErrNotLastCandidate     = errors.New("only available on the last candidate")
	ErrSuggestionsExhausted = errors.New("suggestions already generated for this candidate")
)

// SubmitError aggregates the server's per-field messages for a rejected
// intake submission. The cursor is unchanged when it is returned.
type SubmitError struct {
	Errors []string
}

func (e *SubmitError) Error() string {
	return "intake submission rejected: " + strings.Join(e.Errors, "; ")
}

// StepResult is the outcome of one accepted submission.
type StepResult struct {
	// Done is set when the whole pipeline finished; Redirect carries the
	// route the server wants the client to take.
	Done     bool
	Redirect string

	Submitted      int
	CandidateIndex int
	IsLast         bool
}

// Sequencer walks the shortlisted candidates of one search in strict
// ascending order. Shared fields are collected once and locked; per-candidate
// fields reset after every accepted submission. Local cursor state is a cache
// of the server's answers, overwritten by every response and never advanced
// speculatively.
type Sequencer struct {
	client   *Client
	searchID string

	state      SequencerState
	submitted  int
	target     int
	currentIdx int
	isLast     bool
	indices    models.IndexList

	shared       models.SharedFields
	sharedLocked bool

	resumeText     string
	csvUpload      *Upload
	customQuestion string

	suggestions          []string
	suggestionsGenerated bool
}

// NewSequencer creates an intake sequencer for a search.
func (c *Client) NewSequencer(searchID string) *Sequencer {
	return &Sequencer{client: c, searchID: searchID}
}

// Load fetches the current intake progress and applies the one-shot prefill.
// It is the only valid transition out of StateUninitialized; calling it again
// would clobber in-progress edits and is rejected.
func (s *Sequencer) Load(ctx context.Context) error {
	if s.state != StateUninitialized {
		return ErrAlreadyInitialized
	}

	var progress models.IntakeProgressResponse
	if err := s.client.getJSON(ctx, "/api/process/"+url.PathEscape(s.searchID), nil, &progress); err != nil {
		return fmt.Errorf("fetch intake progress: %w", err)
	}

	s.applyProgress(&progress)

	if progress.RightFields != nil && progress.Submitted > 0 {
		s.shared = *progress.RightFields
		s.sharedLocked = true
	} else if progress.PrevFields != nil {
		// Carried over from shortlist creation: prefilled but editable
		s.shared = *progress.PrevFields
	}

	if s.submitted >= s.target {
		s.state = StateComplete
	} else {
		s.state = StateAwaiting
	}
	return nil
}

func (s *Sequencer) applyProgress(progress *models.IntakeProgressResponse) {
	s.submitted = progress.Submitted
	s.target = progress.Target
	s.currentIdx = progress.CurrentIndex
	s.isLast = progress.IsLast
	s.indices = progress.ShortlistedIndices
}

// State returns the machine's position.
func (s *Sequencer) State() SequencerState { return s.state }

// Submitted returns the intake cursor.
func (s *Sequencer) Submitted() int { return s.submitted }

// Target returns the shortlist length.
func (s *Sequencer) Target() int { return s.target }

// CurrentIndex returns the shortlisted ordinal the next submission refers to.
func (s *Sequencer) CurrentIndex() int { return s.currentIdx }

// IsLast reports whether the current candidate is the final one.
func (s *Sequencer) IsLast() bool { return s.isLast }

// SharedFields returns the current shared-field values.
func (s *Sequencer) SharedFields() models.SharedFields { return s.shared }

// SharedLocked reports whether the shared-field group is immutable.
func (s *Sequencer) SharedLocked() bool { return s.sharedLocked }

// SetSharedFields updates the shared group. Rejected once locked.
func (s *Sequencer) SetSharedFields(fields models.SharedFields) error {
	if s.state == StateUninitialized {
		return ErrNotInitialized
	}
	if s.sharedLocked {
		return ErrSharedFieldsLocked
	}
	fields.Remote = models.NormalizeTriState(fields.Remote)
	fields.Contract = models.NormalizeTriState(fields.Contract)
	s.shared = fields
	return nil
}

// SetResumeText sets the current candidate's resume blob.
func (s *Sequencer) SetResumeText(text string) { s.resumeText = text }

// AttachCSV attaches an uploaded file as the resume source.
func (s *Sequencer) AttachCSV(upload *Upload) { s.csvUpload = upload }

// SetCustomQuestion records the screening question. Only reachable on the
// last candidate.
func (s *Sequencer) SetCustomQuestion(question string) error {
	if s.state == StateUninitialized {
		return ErrNotInitialized
	}
	if !s.isLast {
		return ErrNotLastCandidate
	}
	s.customQuestion = question
	return nil
}

// Suggestions returns the generated screening questions for the current
// candidate visit, if any.
func (s *Sequencer) Suggestions() []string { return s.suggestions }

// GenerateSuggestions asks the suggestion service for screening questions.
// It is gated to the last candidate and to one generation per candidate
// visit; the gate resets when the cursor advances.
func (s *Sequencer) GenerateSuggestions(ctx context.Context) ([]string, error) {
	if s.state == StateUninitialized {
		return nil, ErrNotInitialized
	}
	if !s.isLast {
		return nil, ErrNotLastCandidate
	}
	if s.suggestionsGenerated {
		return nil, ErrSuggestionsExhausted
	}

	query := url.Values{"search_id": {s.searchID}}
	var resp models.QuestionSuggestionsResponse
	if err := s.client.getJSON(ctx, "/api/get-questions", query, &resp); err != nil {
		return nil, err
	}
	if err := successError(resp.Success, resp.Error); err != nil {
		return nil, err
	}

	s.suggestions = resp.Questions
	s.suggestionsGenerated = true
	return resp.Questions, nil
}

// Submit sends the current candidate's data. On acceptance the cursor
// advances to whatever the server reports and the per-candidate fields are
// cleared, leaving shared fields intact. On rejection the cursor and every
// field stay put so the same index can be retried.
func (s *Sequencer) Submit(ctx context.Context) (*StepResult, error) {
	switch s.state {
	case StateUninitialized:
		return nil, ErrNotInitialized
	case StateSubmitting:
		return nil, ErrSubmissionInFlight
	case StateComplete:
		return nil, ErrIntakeComplete
	}

	s.state = StateSubmitting

	fields := map[string]string{
		"resume_text":   s.resumeText,
		"company":       s.shared.Company,
		"location":      s.shared.Location,
		"hr_contact":    s.shared.HRContact,
		"notice_period": s.shared.NoticePeriod,
		"remote":        s.shared.Remote,
		"contract":      s.shared.Contract,
	}
	if s.isLast && s.customQuestion != "" {
		fields["custom_question"] = s.customQuestion
	}

	files := map[string]*Upload{}
	if s.csvUpload != nil {
		files["csv_file"] = s.csvUpload
	}

	var resp models.IntakeSubmitResponse
	err := s.client.postMultipart(ctx, "/api/process/"+url.PathEscape(s.searchID), fields, files, &resp)
	if err != nil {
		s.state = StateAwaiting
		var apiErr *APIError
		if errors.As(err, &apiErr) && len(apiErr.Errors) > 0 {
			return nil, &SubmitError{Errors: apiErr.Errors}
		}
		return nil, err
	}

	if len(resp.Errors) > 0 {
		s.state = StateAwaiting
		return nil, &SubmitError{Errors: resp.Errors}
	}

	if resp.Redirect != "" {
		s.submitted = s.target
		s.state = StateComplete
		s.clearCandidateFields()
		return &StepResult{Done: true, Redirect: resp.Redirect, Submitted: s.submitted}, nil
	}

	// Cursor comes from the server, never advanced locally
	s.submitted = resp.Submitted
	s.currentIdx = resp.CandidateIndex
	s.isLast = resp.IsLast
	if resp.RightFields != nil {
		s.shared = *resp.RightFields
		s.sharedLocked = true
	}
	s.clearCandidateFields()
	s.state = StateAwaiting

	return &StepResult{
		Submitted:      s.submitted,
		CandidateIndex: s.currentIdx,
		IsLast:         s.isLast,
	}, nil
}

// clearCandidateFields resets the per-candidate group while leaving the
// shared group untouched.
func (s *Sequencer) clearCandidateFields() {
	s.resumeText = ""
	s.csvUpload = nil
	s.customQuestion = ""
	s.suggestions = nil
	s.suggestionsGenerated = false
}
