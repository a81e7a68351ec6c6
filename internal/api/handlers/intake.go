package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"hiredesk/internal/llm"
	"hiredesk/internal/logging"
	"hiredesk/internal/storage"
	"hiredesk/pkg/models"
	"hiredesk/pkg/utils"
)

// IntakeProgressHandler reports the resumable intake cursor for a search:
// how many candidates are done, which shortlisted ordinal comes next and
// whether the shared fields are already locked.
func IntakeProgressHandler(deps *Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		search, err := deps.Searches.GetByID(ctx, c.Param("searchID"))
		if err == storage.ErrNotFound {
			return notFound("search")
		}
		if err != nil {
			return utils.NewInternalServerError("Failed to load search")
		}
		if !search.Processed {
			return utils.NewConflictError("Search has not finished processing")
		}

		indices := search.ShortlistedIndices
		target := len(indices)

		response := models.IntakeProgressResponse{
			Submitted:          search.Submitted,
			Target:             target,
			ShortlistedIndices: indices,
		}

		switch {
		case target == 0:
			// Empty shortlist, nothing to walk through
		case search.Submitted < target:
			response.CurrentIndex = indices[search.Submitted]
			response.IsLast = search.Submitted == target-1
		default:
			response.CurrentIndex = indices[target-1]
			response.IsLast = true
		}

		if search.Submitted > 0 {
			shared := search.Shared
			response.RightFields = &shared
		} else if !search.Shared.IsZero() {
			// Criteria carried over from shortlist creation, offered as a
			// prefill but not yet locked
			shared := search.Shared
			response.PrevFields = &shared
		}

		return c.JSON(http.StatusOK, response)
	}
}

// IntakeSubmitHandler accepts one candidate's supplemental data and advances
// the cursor. Shared fields are persisted on the first submission only; the
// custom question is accepted on the last index only. Validation failures
// are aggregated and leave the cursor untouched.
func IntakeSubmitHandler(deps *Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		logger := logging.GetGlobalLogger()

		search, err := deps.Searches.GetByID(ctx, c.Param("searchID"))
		if err == storage.ErrNotFound {
			return notFound("search")
		}
		if err != nil {
			return utils.NewInternalServerError("Failed to load search")
		}
		if search.Archived {
			return utils.NewConflictError("Search is archived and read-only")
		}
		if !search.Processed {
			return utils.NewConflictError("Search has not finished processing")
		}

		indices := search.ShortlistedIndices
		target := len(indices)
		if search.Submitted >= target {
			return utils.NewConflictError("All candidates have already been submitted")
		}

		isLast := search.Submitted == target-1

		resumeText := strings.TrimSpace(c.FormValue("resume_text"))
		if resumeText == "" {
			if file, err := c.FormFile("csv_file"); err == nil && file != nil {
				text, err := deps.Extractor.ExtractUpload(file)
				if err != nil {
					return c.JSON(http.StatusBadRequest, models.IntakeSubmitResponse{
						Errors: []string{"Uploaded file could not be read"},
					})
				}
				resumeText = strings.TrimSpace(text)
			}
		}

		var errs []string
		if resumeText == "" {
			errs = append(errs, "Resume text or a CSV upload is required")
		}

		customQuestion := strings.TrimSpace(c.FormValue("custom_question"))
		if customQuestion != "" && !isLast {
			errs = append(errs, "The custom question can only be set with the final candidate")
		}

		if len(errs) > 0 {
			return c.JSON(http.StatusBadRequest, models.IntakeSubmitResponse{Errors: errs})
		}

		// The shared-field group is written exactly once, with the first
		// candidate. Later submissions may resend the values but they are
		// ignored: the stored group is locked.
		if search.Submitted == 0 {
			shared := models.SharedFields{
				Company:      c.FormValue("company"),
				Location:     c.FormValue("location"),
				HRContact:    c.FormValue("hr_contact"),
				NoticePeriod: c.FormValue("notice_period"),
				Remote:       models.NormalizeTriState(c.FormValue("remote")),
				Contract:     models.NormalizeTriState(c.FormValue("contract")),
			}
			if !shared.IsZero() {
				if err := deps.Searches.SetSharedFields(ctx, search.ID, shared); err != nil {
					return utils.NewInternalServerError("Failed to save shared fields")
				}
				search.Shared = shared
			}
		}

		job := llm.JobContext{
			Role:        search.JobRole,
			Skills:      search.Skills,
			Description: search.JDText,
		}

		score, err := deps.Provider.ScoreResume(ctx, job, resumeText)
		if err != nil {
			logger.Error("Resume scoring failed during intake", map[string]interface{}{
				"request_id": requestID(c),
				"search_id":  search.ID,
				"index":      indices[search.Submitted],
				"error":      err.Error(),
			})
			return utils.NewLLMError("resume could not be scored, try again")
		}

		candidate := &models.Candidate{
			SearchID:    search.ID,
			Name:        score.Name,
			Email:       score.Email,
			Phone:       score.Phone,
			Skills:      score.Skills,
			TotalExp:    score.TotalExp,
			RelevantExp: score.RelevantExp,
			Summary:     score.Summary,
			MatchScore:  score.Score,
		}
		if candidate.Name == "" {
			candidate.Name = fmt.Sprintf("Candidate %d", indices[search.Submitted]+1)
		}

		if err := deps.Candidates.Create(ctx, candidate); err != nil {
			return utils.NewInternalServerError("Failed to save candidate")
		}

		if isLast && customQuestion != "" {
			if err := deps.Searches.SetCustomQuestion(ctx, search.ID, customQuestion); err != nil {
				return utils.NewInternalServerError("Failed to save custom question")
			}
		}

		submitted := search.Submitted + 1
		if err := deps.Searches.SetSubmitted(ctx, search.ID, submitted); err != nil {
			return utils.NewInternalServerError("Failed to advance intake cursor")
		}

		logger.Info("Candidate intake submission accepted", map[string]interface{}{
			"request_id":   requestID(c),
			"search_id":    search.ID,
			"submitted":    submitted,
			"target":       target,
			"candidate_id": candidate.ID,
		})

		if submitted == target {
			// Final submission triggers the finishing pass; the client is
			// routed back through the processing screen.
			who := owner(c)
			if err := deps.Tracker.Begin(ctx, who, search.ID); err == nil {
				_ = deps.Tracker.MarkProcessed(ctx, who)
			}
			return c.JSON(http.StatusOK, models.IntakeSubmitResponse{Redirect: "/loading"})
		}

		shared := search.Shared
		return c.JSON(http.StatusOK, models.IntakeSubmitResponse{
			Next:           true,
			Submitted:      submitted,
			CandidateIndex: indices[submitted],
			IsLast:         submitted == target-1,
			RightFields:    &shared,
		})
	}
}
