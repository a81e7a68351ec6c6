package client

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"hiredesk/pkg/models"
)

// FilterCategory is the single active category filter over the results view.
type FilterCategory string

const (
	FilterAll        FilterCategory = "all"
	FilterLiked      FilterCategory = "liked"
	FilterHighMatch  FilterCategory = "high_match"
	FilterCallStatus FilterCategory = "call_status"
)

// highMatchThreshold is the score floor for the high-match filter.
const highMatchThreshold = 90

// SortKey is the single active sort over the results view.
type SortKey string

const (
	SortByScore      SortKey = "score"
	SortByName       SortKey = "name"
	SortByCallStatus SortKey = "call_status"
)

// Results view errors.
var (
	ErrNoSelection         = errors.New("no candidates selected in the current view")
	ErrDeletePending       = errors.New("another delete confirmation is pending")
	ErrNoDeletePending     = errors.New("no delete confirmation is pending")
	ErrCandidateNotVisible = errors.New("candidate is not in the current filtered view")
	ErrCandidateNotFound   = errors.New("candidate not found")
)

// DeleteConfirmation is the pending destructive action; the delete request
// cannot fire without passing through it.
type DeleteConfirmation struct {
	CandidateID string
	Name        string
}

// CandidateForm is the add/edit sub-flow's payload. An empty CandidateID
// means create.
type CandidateForm struct {
	CandidateID string
	Name        string
	Email       string
	Phone       string
	Skills      []string
	TotalExp    float64
	RelevantExp float64
	Summary     string
	MatchScore  int
}

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9][0-9\s\-()]{6,}$`)
)

// Validate collects every invalid field in one pass.
func (f *CandidateForm) Validate() []string {
	var errs []string
	if strings.TrimSpace(f.Name) == "" {
		errs = append(errs, "name is required")
	}
	if !emailPattern.MatchString(f.Email) {
		errs = append(errs, "email must be a valid address")
	}
	if !phonePattern.MatchString(f.Phone) {
		errs = append(errs, "phone must be a valid number")
	}
	if f.MatchScore < 0 || f.MatchScore > 100 {
		errs = append(errs, "match score must be between 0 and 100")
	}
	return errs
}

// ResultsView owns the loaded candidate set for one search and the review
// state over it: filter, sort, search term, selection and the pending delete
// confirmation. Bulk actions always operate on the selection intersected
// with the currently filtered view.
type ResultsView struct {
	client   *Client
	searchID string

	candidates     []models.Candidate
	customQuestion string
	callsScheduled int
	rescheduled    int

	category   FilterCategory
	callStatus models.CallStatus
	searchTerm string
	sortKey    SortKey

	selection map[string]bool

	pendingDelete *DeleteConfirmation
}

// NewResultsView creates a review layer for a search. Call Load before use.
func (c *Client) NewResultsView(searchID string) *ResultsView {
	return &ResultsView{
		client:    c,
		searchID:  searchID,
		category:  FilterAll,
		sortKey:   SortByScore,
		selection: make(map[string]bool),
	}
}

// Load fetches the candidate set and the saved custom question.
func (v *ResultsView) Load(ctx context.Context) error {
	query := url.Values{"searchID": {v.searchID}}
	var resp models.ResultsResponse
	if err := v.client.getJSON(ctx, "/api/results", query, &resp); err != nil {
		return fmt.Errorf("load results: %w", err)
	}
	if err := successError(resp.Success, ""); err != nil {
		return err
	}

	v.candidates = resp.Candidates
	v.customQuestion = resp.CustomQuestion
	v.callsScheduled = resp.CallsScheduled
	v.rescheduled = resp.RescheduledCalls
	return nil
}

// Candidates returns the unfiltered set.
func (v *ResultsView) Candidates() []models.Candidate { return v.candidates }

// CallsScheduled returns the scheduled-call counter from the last load.
func (v *ResultsView) CallsScheduled() int { return v.callsScheduled }

// RescheduledCalls returns the reschedule counter from the last load.
func (v *ResultsView) RescheduledCalls() int { return v.rescheduled }

// SetFilter activates one category filter and clears the selection, so a
// selection made under another filter can never silently act on hidden rows.
func (v *ResultsView) SetFilter(category FilterCategory) {
	v.category = category
	v.clearSelection()
}

// SetCallStatusFilter filters to one call status and clears the selection.
func (v *ResultsView) SetCallStatusFilter(status models.CallStatus) {
	v.category = FilterCallStatus
	v.callStatus = status
	v.clearSelection()
}

// SetSearchTerm updates the free-text filter and clears the selection.
func (v *ResultsView) SetSearchTerm(term string) {
	v.searchTerm = term
	v.clearSelection()
}

// SetSort activates a sort key. Sorting does not affect the selection.
func (v *ResultsView) SetSort(key SortKey) { v.sortKey = key }

// Filtered returns the current view: category AND search term, then sorted.
func (v *ResultsView) Filtered() []models.Candidate {
	filtered := make([]models.Candidate, 0, len(v.candidates))
	for _, candidate := range v.candidates {
		if v.matchesCategory(&candidate) && v.matchesSearch(&candidate) {
			filtered = append(filtered, candidate)
		}
	}

	switch v.sortKey {
	case SortByName:
		sort.Slice(filtered, func(a, b int) bool { return filtered[a].Name < filtered[b].Name })
	case SortByCallStatus:
		sort.Slice(filtered, func(a, b int) bool { return filtered[a].CallStatus < filtered[b].CallStatus })
	default:
		sort.Slice(filtered, func(a, b int) bool { return filtered[a].MatchScore > filtered[b].MatchScore })
	}

	return filtered
}

func (v *ResultsView) matchesCategory(candidate *models.Candidate) bool {
	switch v.category {
	case FilterLiked:
		return candidate.Liked
	case FilterHighMatch:
		return candidate.MatchScore >= highMatchThreshold
	case FilterCallStatus:
		return candidate.CallStatus == v.callStatus
	default:
		return true
	}
}

func (v *ResultsView) matchesSearch(candidate *models.Candidate) bool {
	term := strings.TrimSpace(v.searchTerm)
	if term == "" {
		return true
	}
	if lowerContains(candidate.Name, term) || lowerContains(candidate.Email, term) {
		return true
	}
	for _, skill := range candidate.Skills {
		if lowerContains(skill, term) {
			return true
		}
	}
	return false
}

// Select adds a visible candidate to the selection.
func (v *ResultsView) Select(candidateID string) error {
	for _, candidate := range v.Filtered() {
		if candidate.ID == candidateID {
			v.selection[candidateID] = true
			return nil
		}
	}
	return ErrCandidateNotVisible
}

// Deselect removes a candidate from the selection.
func (v *ResultsView) Deselect(candidateID string) { delete(v.selection, candidateID) }

// SelectAllFiltered selects exactly the current filtered view.
func (v *ResultsView) SelectAllFiltered() {
	v.clearSelection()
	for _, candidate := range v.Filtered() {
		v.selection[candidate.ID] = true
	}
}

// ClearSelection empties the selection set.
func (v *ResultsView) ClearSelection() { v.clearSelection() }

func (v *ResultsView) clearSelection() { v.selection = make(map[string]bool) }

// Selected returns the selection intersected with the filtered view, the
// only set bulk actions may touch.
func (v *ResultsView) Selected() []models.Candidate {
	selected := make([]models.Candidate, 0, len(v.selection))
	for _, candidate := range v.Filtered() {
		if v.selection[candidate.ID] {
			selected = append(selected, candidate)
		}
	}
	return selected
}

// CallCandidate dials a single candidate.
func (v *ResultsView) CallCandidate(ctx context.Context, candidateID string) error {
	candidate := v.byID(candidateID)
	if candidate == nil {
		return ErrCandidateNotFound
	}
	return v.postCalls(ctx, "/api/call-single", []models.Candidate{*candidate})
}

// CallSelected dials the selected∩filtered set as one batch.
func (v *ResultsView) CallSelected(ctx context.Context) error {
	selected := v.Selected()
	if len(selected) == 0 {
		return ErrNoSelection
	}
	return v.postCalls(ctx, "/api/call", selected)
}

// CallAllFiltered dials the whole filtered view as one batch.
func (v *ResultsView) CallAllFiltered(ctx context.Context) error {
	filtered := v.Filtered()
	if len(filtered) == 0 {
		return ErrNoSelection
	}
	return v.postCalls(ctx, "/api/call", filtered)
}

// postCalls issues one batched request; partial failure is owned by the
// server. Local call statuses are not touched: outcome updates arrive
// asynchronously from the calling subsystem.
func (v *ResultsView) postCalls(ctx context.Context, path string, candidates []models.Candidate) error {
	req := models.CallRequest{SearchID: v.searchID}
	for _, candidate := range candidates {
		req.Candidates = append(req.Candidates, models.CallCandidate{
			CandidateID: candidate.ID,
			Name:        candidate.Name,
			Phone:       candidate.Phone,
			Skills:      candidate.Skills,
		})
	}

	var resp models.StatusResponse
	if err := v.client.postJSON(ctx, path, &req, &resp); err != nil {
		return err
	}
	return successError(resp.Success, resp.Error)
}

// ToggleLike flips the liked flag optimistically and reverts the flip if the
// server rejects it, returning the error either way.
func (v *ResultsView) ToggleLike(ctx context.Context, candidateID string) error {
	candidate := v.byID(candidateID)
	if candidate == nil {
		return ErrCandidateNotFound
	}

	previous := candidate.Liked
	candidate.Liked = !previous

	req := models.LikeRequest{CandidateID: candidateID, Liked: candidate.Liked}
	var resp models.StatusResponse
	err := v.client.postJSON(ctx, "/api/like-candidate", &req, &resp)
	if err == nil {
		err = successError(resp.Success, resp.Error)
	}
	if err != nil {
		candidate.Liked = previous
		return err
	}
	return nil
}

// AddSelectedToFinal escalates the selected∩filtered set and clears the
// selection on success.
func (v *ResultsView) AddSelectedToFinal(ctx context.Context) error {
	selected := v.Selected()
	if len(selected) == 0 {
		return ErrNoSelection
	}

	req := models.FinalSelectsRequest{SearchID: v.searchID}
	for _, candidate := range selected {
		req.AddToFinal = append(req.AddToFinal, candidate.ID)
	}

	var resp models.StatusResponse
	if err := v.client.postJSON(ctx, "/api/final-selects", &req, &resp); err != nil {
		return err
	}
	if err := successError(resp.Success, resp.Error); err != nil {
		return err
	}

	for _, selectedCandidate := range selected {
		if candidate := v.byID(selectedCandidate.ID); candidate != nil {
			candidate.FinalSelect = true
		}
	}
	v.clearSelection()
	return nil
}

// UpsertCandidate validates the form, creates or updates the candidate and
// merges the result into the local set: update-in-place when the id exists,
// prepend when new.
func (v *ResultsView) UpsertCandidate(ctx context.Context, form *CandidateForm) (*models.Candidate, error) {
	if errs := form.Validate(); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	req := models.CandidateUpsertRequest{
		CandidateID: form.CandidateID,
		SearchID:    v.searchID,
		Name:        form.Name,
		Email:       form.Email,
		Phone:       form.Phone,
		Skills:      form.Skills,
		TotalExp:    form.TotalExp,
		RelevantExp: form.RelevantExp,
		Summary:     form.Summary,
		MatchScore:  form.MatchScore,
	}

	var resp models.CandidateResponse
	var err error
	if form.CandidateID == "" {
		err = v.client.postJSON(ctx, "/api/candidate", &req, &resp)
	} else {
		err = v.client.putJSON(ctx, "/api/candidate", &req, &resp)
	}
	if err != nil {
		return nil, err
	}
	if err := successError(resp.Success, resp.Error); err != nil {
		return nil, err
	}
	if resp.Candidate == nil {
		return nil, errors.New("server returned no candidate")
	}

	merged := false
	for i := range v.candidates {
		if v.candidates[i].ID == resp.Candidate.ID {
			v.candidates[i] = *resp.Candidate
			merged = true
			break
		}
	}
	if !merged {
		v.candidates = append([]models.Candidate{*resp.Candidate}, v.candidates...)
	}

	return resp.Candidate, nil
}

// RequestDelete opens the confirmation step for one candidate. Only a single
// confirmation may be pending at a time.
func (v *ResultsView) RequestDelete(candidateID string) (*DeleteConfirmation, error) {
	if v.pendingDelete != nil {
		return nil, ErrDeletePending
	}
	candidate := v.byID(candidateID)
	if candidate == nil {
		return nil, ErrCandidateNotFound
	}
	v.pendingDelete = &DeleteConfirmation{CandidateID: candidate.ID, Name: candidate.Name}
	return v.pendingDelete, nil
}

// PendingDelete returns the open confirmation, if any.
func (v *ResultsView) PendingDelete() *DeleteConfirmation { return v.pendingDelete }

// CancelDelete closes the confirmation without deleting.
func (v *ResultsView) CancelDelete() { v.pendingDelete = nil }

// ConfirmDelete fires the destructive call for the pending confirmation and
// removes the row locally. It is the only path that issues the delete.
func (v *ResultsView) ConfirmDelete(ctx context.Context) error {
	if v.pendingDelete == nil {
		return ErrNoDeletePending
	}
	candidateID := v.pendingDelete.CandidateID

	query := url.Values{"candidate_id": {candidateID}}
	var resp models.StatusResponse
	if err := v.client.deleteJSON(ctx, "/api/candidate", query, &resp); err != nil {
		return err
	}
	if err := successError(resp.Success, resp.Error); err != nil {
		return err
	}

	v.removeLocal(candidateID)
	v.pendingDelete = nil
	return nil
}

// SavedQuestion returns the custom question as last confirmed by the server.
func (v *ResultsView) SavedQuestion() string { return v.customQuestion }

// SuggestQuestions fetches AI-generated phrasings. Repeatable: it is an
// idempotent read.
func (v *ResultsView) SuggestQuestions(ctx context.Context) ([]string, error) {
	query := url.Values{"search_id": {v.searchID}}
	var resp models.QuestionSuggestionsResponse
	if err := v.client.getJSON(ctx, "/api/get-questions", query, &resp); err != nil {
		return nil, err
	}
	if err := successError(resp.Success, resp.Error); err != nil {
		return nil, err
	}
	return resp.Questions, nil
}

// SaveQuestion persists exactly one question string for the search,
// overwriting any prior value.
func (v *ResultsView) SaveQuestion(ctx context.Context, question string) error {
	req := models.CustomQuestionRequest{SearchID: v.searchID, Question: question}
	var resp models.CustomQuestionResponse
	if err := v.client.postJSON(ctx, "/api/custom-question", &req, &resp); err != nil {
		return err
	}
	if err := successError(resp.Success, ""); err != nil {
		return err
	}
	v.customQuestion = resp.CustomQuestion
	return nil
}

// ExportCSV serializes the currently filtered view. encoding/csv handles the
// comma and quote escaping so a re-parse yields the original strings.
func (v *ResultsView) ExportCSV(w io.Writer) error {
	return writeCandidatesCSV(w, v.Filtered())
}

func (v *ResultsView) byID(candidateID string) *models.Candidate {
	for i := range v.candidates {
		if v.candidates[i].ID == candidateID {
			return &v.candidates[i]
		}
	}
	return nil
}

func (v *ResultsView) removeLocal(candidateID string) {
	for i := range v.candidates {
		if v.candidates[i].ID == candidateID {
			v.candidates = append(v.candidates[:i], v.candidates[i+1:]...)
			return
		}
	}
}

var csvHeader = []string{
	"name", "email", "phone", "skills", "total_experience",
	"relevant_experience", "match_score", "call_status", "liked", "joined",
}

func writeCandidatesCSV(w io.Writer, candidates []models.Candidate) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, candidate := range candidates {
		record := []string{
			candidate.Name,
			candidate.Email,
			candidate.Phone,
			strings.Join(candidate.Skills, ", "),
			strconv.FormatFloat(candidate.TotalExp, 'f', -1, 64),
			strconv.FormatFloat(candidate.RelevantExp, 'f', -1, 64),
			strconv.Itoa(candidate.MatchScore),
			string(candidate.CallStatus),
			strconv.FormatBool(candidate.Liked),
			strconv.FormatBool(candidate.Joined),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
