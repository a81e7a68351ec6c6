package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"hiredesk/pkg/models"
)

// Final-selects errors.
var (
	ErrRemovalPending     = errors.New("a removal confirmation is already pending")
	ErrNoRemovalPending   = errors.New("no removal confirmation is pending")
	ErrConfirmationPhrase = errors.New("typed confirmation does not match")
)

// RemovalConfirmation is the pending bulk removal. The caller must type the
// exact phrase, which names the count, before the removal fires.
type RemovalConfirmation struct {
	CandidateIDs []string
	Count        int
	Phrase       string
}

// FinalSelectsView is the action layer over the escalated subset: joined
// toggles, bulk removal behind a typed confirmation, CSV export. It keeps
// the same selection-intersects-filter discipline as the results view.
type FinalSelectsView struct {
	client   *Client
	searchID string

	candidates []models.Candidate
	searchTerm string
	selection  map[string]bool

	pendingRemoval *RemovalConfirmation
}

// NewFinalSelectsView creates a curator for a search's final selects.
func (c *Client) NewFinalSelectsView(searchID string) *FinalSelectsView {
	return &FinalSelectsView{
		client:    c,
		searchID:  searchID,
		selection: make(map[string]bool),
	}
}

// Load fetches the escalated subset.
func (v *FinalSelectsView) Load(ctx context.Context) error {
	query := url.Values{"search_id": {v.searchID}}
	var resp models.ResultsResponse
	if err := v.client.getJSON(ctx, "/api/final-selects", query, &resp); err != nil {
		return fmt.Errorf("load final selects: %w", err)
	}
	if err := successError(resp.Success, ""); err != nil {
		return err
	}
	v.candidates = resp.Candidates
	return nil
}

// Candidates returns the unfiltered final-select set.
func (v *FinalSelectsView) Candidates() []models.Candidate { return v.candidates }

// SetSearchTerm updates the free-text filter and clears the selection.
func (v *FinalSelectsView) SetSearchTerm(term string) {
	v.searchTerm = term
	v.selection = make(map[string]bool)
}

// Filtered returns the candidates matching the search term.
func (v *FinalSelectsView) Filtered() []models.Candidate {
	term := strings.TrimSpace(v.searchTerm)
	filtered := make([]models.Candidate, 0, len(v.candidates))
	for _, candidate := range v.candidates {
		if term == "" || lowerContains(candidate.Name, term) || lowerContains(candidate.Email, term) {
			filtered = append(filtered, candidate)
			continue
		}
		for _, skill := range candidate.Skills {
			if lowerContains(skill, term) {
				filtered = append(filtered, candidate)
				break
			}
		}
	}
	return filtered
}

// Select adds a visible candidate to the selection.
func (v *FinalSelectsView) Select(candidateID string) error {
	for _, candidate := range v.Filtered() {
		if candidate.ID == candidateID {
			v.selection[candidateID] = true
			return nil
		}
	}
	return ErrCandidateNotVisible
}

// Deselect removes a candidate from the selection.
func (v *FinalSelectsView) Deselect(candidateID string) { delete(v.selection, candidateID) }

// SelectAllFiltered selects exactly the current filtered view.
func (v *FinalSelectsView) SelectAllFiltered() {
	v.selection = make(map[string]bool)
	for _, candidate := range v.Filtered() {
		v.selection[candidate.ID] = true
	}
}

// ClearSelection empties the selection set.
func (v *FinalSelectsView) ClearSelection() { v.selection = make(map[string]bool) }

// Selected returns the selection intersected with the filtered view.
func (v *FinalSelectsView) Selected() []models.Candidate {
	selected := make([]models.Candidate, 0, len(v.selection))
	for _, candidate := range v.Filtered() {
		if v.selection[candidate.ID] {
			selected = append(selected, candidate)
		}
	}
	return selected
}

// ToggleJoined flips one candidate's joined flag optimistically and reverts
// on server rejection.
func (v *FinalSelectsView) ToggleJoined(ctx context.Context, candidateID string) error {
	candidate := v.byID(candidateID)
	if candidate == nil {
		return ErrCandidateNotFound
	}

	previous := candidate.Joined
	candidate.Joined = !previous

	err := v.postBatch(ctx, models.FinalSelectsRequest{
		SearchID: v.searchID,
		Joined:   []models.JoinedUpdate{{CandidateID: candidateID, Joined: candidate.Joined}},
	})
	if err != nil {
		candidate.Joined = previous
		return err
	}
	return nil
}

// SetJoinedSelected applies one joined value to the selected∩filtered set as
// a single batch, then reconciles local state on success.
func (v *FinalSelectsView) SetJoinedSelected(ctx context.Context, joined bool) error {
	selected := v.Selected()
	if len(selected) == 0 {
		return ErrNoSelection
	}

	req := models.FinalSelectsRequest{SearchID: v.searchID}
	for _, candidate := range selected {
		req.Joined = append(req.Joined, models.JoinedUpdate{CandidateID: candidate.ID, Joined: joined})
	}

	if err := v.postBatch(ctx, req); err != nil {
		return err
	}

	for _, selectedCandidate := range selected {
		if candidate := v.byID(selectedCandidate.ID); candidate != nil {
			candidate.Joined = joined
		}
	}
	return nil
}

// RequestRemoveSelected opens the typed confirmation for removing the
// selected∩filtered set from the final list.
func (v *FinalSelectsView) RequestRemoveSelected() (*RemovalConfirmation, error) {
	if v.pendingRemoval != nil {
		return nil, ErrRemovalPending
	}
	selected := v.Selected()
	if len(selected) == 0 {
		return nil, ErrNoSelection
	}

	ids := make([]string, 0, len(selected))
	for _, candidate := range selected {
		ids = append(ids, candidate.ID)
	}

	v.pendingRemoval = &RemovalConfirmation{
		CandidateIDs: ids,
		Count:        len(ids),
		Phrase:       fmt.Sprintf("REMOVE %d", len(ids)),
	}
	return v.pendingRemoval, nil
}

// PendingRemoval returns the open confirmation, if any.
func (v *FinalSelectsView) PendingRemoval() *RemovalConfirmation { return v.pendingRemoval }

// CancelRemoval closes the confirmation without removing.
func (v *FinalSelectsView) CancelRemoval() { v.pendingRemoval = nil }

// ConfirmRemoval fires the removal once the typed phrase matches. It is the
// only path that issues the bulk removal.
func (v *FinalSelectsView) ConfirmRemoval(ctx context.Context, typed string) error {
	if v.pendingRemoval == nil {
		return ErrNoRemovalPending
	}
	if strings.TrimSpace(typed) != v.pendingRemoval.Phrase {
		return ErrConfirmationPhrase
	}

	err := v.postBatch(ctx, models.FinalSelectsRequest{
		SearchID:        v.searchID,
		RemoveFromFinal: v.pendingRemoval.CandidateIDs,
	})
	if err != nil {
		return err
	}

	for _, candidateID := range v.pendingRemoval.CandidateIDs {
		v.removeLocal(candidateID)
		delete(v.selection, candidateID)
	}
	v.pendingRemoval = nil
	return nil
}

// ExportCSV serializes the currently filtered view.
func (v *FinalSelectsView) ExportCSV(w io.Writer) error {
	return writeCandidatesCSV(w, v.Filtered())
}

func (v *FinalSelectsView) postBatch(ctx context.Context, req models.FinalSelectsRequest) error {
	var resp models.StatusResponse
	if err := v.client.postJSON(ctx, "/api/final-selects", &req, &resp); err != nil {
		return err
	}
	return successError(resp.Success, resp.Error)
}

func (v *FinalSelectsView) byID(candidateID string) *models.Candidate {
	for i := range v.candidates {
		if v.candidates[i].ID == candidateID {
			return &v.candidates[i]
		}
	}
	return nil
}

func (v *FinalSelectsView) removeLocal(candidateID string) {
	for i := range v.candidates {
		if v.candidates[i].ID == candidateID {
			v.candidates = append(v.candidates[:i], v.candidates[i+1:]...)
			return
		}
	}
}
