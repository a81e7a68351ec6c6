package client

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"hiredesk/pkg/models"
)

// ErrNoMatch is the business rejection for a corpus that produced no
// candidates. It carries no navigation side effect: the form stays put.
var ErrNoMatch = errors.New("no candidates matched")

// ValidationError aggregates every invalid shortlist field. It is raised
// before any network call.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

// ShortlistForm is the criteria payload for creating or updating a search.
// A non-empty SearchID switches submission to update-in-place.
type ShortlistForm struct {
	SearchID       string
	SearchName     string
	JobRole        string
	Skills         []string
	CandidateText  string
	Company        string
	Location       string
	HRContact      string
	NoticePeriod   string
	Remote         string
	Contract       string
	CandidateCount int
	JDFile         *Upload
}

// PrefillFromSearch copies an existing search's criteria into the form and
// enables update semantics. Tri-state flags are normalized to Yes/No/blank.
func (f *ShortlistForm) PrefillFromSearch(search *models.Search) {
	f.SearchID = search.ID
	f.SearchName = search.Name
	f.JobRole = search.JobRole
	f.Skills = append([]string(nil), search.Skills...)
	f.CandidateText = search.CandidateCorpus
	f.Company = search.Shared.Company
	f.Location = search.Shared.Location
	f.HRContact = search.Shared.HRContact
	f.NoticePeriod = search.Shared.NoticePeriod
	f.Remote = models.NormalizeTriState(search.Shared.Remote)
	f.Contract = models.NormalizeTriState(search.Shared.Contract)
	f.CandidateCount = search.CandidateCount
}

// PrefillFromTask seeds the form from an assignment record. A task import
// always starts a fresh search, never an update.
func (f *ShortlistForm) PrefillFromTask(task *models.Task) {
	f.SearchID = ""
	f.SearchName = task.Title
	f.JobRole = task.JobRole
	f.Skills = append([]string(nil), task.Skills...)
}

// Validate collects every missing or invalid field in one pass.
func (f *ShortlistForm) Validate() []string {
	var errs []string
	if strings.TrimSpace(f.SearchName) == "" {
		errs = append(errs, "search name is required")
	}
	if strings.TrimSpace(f.JobRole) == "" {
		errs = append(errs, "job role is required")
	}
	if len(f.Skills) == 0 {
		errs = append(errs, "at least one skill is required")
	}
	if strings.TrimSpace(f.CandidateText) == "" {
		errs = append(errs, "candidate text is required")
	}
	if f.CandidateCount < 1 || f.CandidateCount > 50 {
		errs = append(errs, "candidate count must be between 1 and 50")
	}
	return errs
}

// ShortlistResult is the successful outcome of a submission.
type ShortlistResult struct {
	SearchID string
	IsUpdate bool
	Message  string
}

// SubmitShortlist validates the form locally, then posts it as a multipart
// request. On success the returned search id drives navigation to the
// processing stage.
func (c *Client) SubmitShortlist(ctx context.Context, form *ShortlistForm) (*ShortlistResult, error) {
	if errs := form.Validate(); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	fields := map[string]string{
		"search_name":     form.SearchName,
		"job_role":        form.JobRole,
		"skills":          strings.Join(form.Skills, ","),
		"candidate_text":  form.CandidateText,
		"company":         form.Company,
		"location":        form.Location,
		"hr_contact":      form.HRContact,
		"notice_period":   form.NoticePeriod,
		"remote":          form.Remote,
		"contract":        form.Contract,
		"candidate_count": strconv.Itoa(form.CandidateCount),
	}
	if form.SearchID != "" {
		fields["search_id"] = form.SearchID
	}

	files := map[string]*Upload{}
	if form.JDFile != nil {
		files["jd_file"] = form.JDFile
	}

	var resp models.ShortlistResponse
	err := c.postMultipart(ctx, "/api/shortlist", fields, files, &resp)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == 422 {
			return nil, fmt.Errorf("%w: %s", ErrNoMatch, apiErr.Message)
		}
		return nil, err
	}
	if !resp.Success {
		if resp.Error != "" && strings.Contains(strings.ToLower(resp.Error), "no candidates") {
			return nil, fmt.Errorf("%w: %s", ErrNoMatch, resp.Error)
		}
		return nil, successError(resp.Success, resp.Error)
	}

	return &ShortlistResult{
		SearchID: resp.SearchID,
		IsUpdate: resp.IsUpdate,
		Message:  resp.Message,
	}, nil
}
