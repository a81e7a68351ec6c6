package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"hiredesk/internal/logging"
	"hiredesk/internal/matching"
	"hiredesk/internal/storage"
	"hiredesk/pkg/models"
	"hiredesk/pkg/utils"
)

// ShortlistHandler creates a search from the submitted criteria, or updates
// one in place when a search_id is supplied. The candidate corpus must yield
// at least one block or the request is rejected as a business error, before
// any row is written.
func ShortlistHandler(deps *Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		startTime := time.Now()
		logger := logging.GetGlobalLogger()

		req := models.ShortlistRequest{
			SearchID:      c.FormValue("search_id"),
			SearchName:    c.FormValue("search_name"),
			JobRole:       c.FormValue("job_role"),
			Skills:        utils.SplitCommaList(c.FormValue("skills")),
			CandidateText: c.FormValue("candidate_text"),
			Company:       c.FormValue("company"),
			Location:      c.FormValue("location"),
			HRContact:     c.FormValue("hr_contact"),
			NoticePeriod:  c.FormValue("notice_period"),
			Remote:        models.NormalizeTriState(c.FormValue("remote")),
			Contract:      models.NormalizeTriState(c.FormValue("contract")),
		}
		if count := c.FormValue("candidate_count"); count != "" {
			req.CandidateCount, _ = strconv.Atoi(count)
		}

		// Every invalid field is reported in one pass, not fail-fast
		if errs := collectValidationErrors(&req); len(errs) > 0 {
			logger.Warn("Shortlist validation failed", map[string]interface{}{
				"request_id": requestID(c),
				"errors":     errs,
			})
			return c.JSON(http.StatusBadRequest, models.IntakeSubmitResponse{Errors: errs})
		}

		jdText := ""
		if file, err := c.FormFile("jd_file"); err == nil && file != nil {
			text, err := deps.Extractor.ExtractUpload(file)
			if err != nil {
				logger.Warn("JD document extraction failed", map[string]interface{}{
					"request_id": requestID(c),
					"filename":   file.Filename,
					"error":      err.Error(),
				})
				return utils.NewBadRequestError("Could not read the job description document")
			}
			jdText = text
		}

		if len(matching.SplitCorpus(req.CandidateText)) == 0 {
			return utils.NewNoMatchError("the candidate corpus produced no blocks")
		}

		ctx := c.Request().Context()
		isUpdate := req.SearchID != ""

		var search *models.Search
		if isUpdate {
			existing, err := deps.Searches.GetByID(ctx, req.SearchID)
			if err == storage.ErrNotFound {
				return notFound("search")
			}
			if err != nil {
				return utils.NewInternalServerError("Failed to load search")
			}

			search = existing
			applyShortlistRequest(search, &req)
			if jdText != "" {
				search.JDText = jdText
			}
			if err := deps.Searches.Update(ctx, search); err != nil {
				return utils.NewInternalServerError("Failed to update search")
			}

			// The re-run supersedes the previous intake entirely; its
			// candidate rows go with the reset cursor, otherwise the results
			// page would mix the old run's candidates with the new one's.
			if err := deps.Candidates.DeleteBySearch(ctx, search.ID); err != nil {
				return utils.NewInternalServerError("Failed to clear previous candidates")
			}
		} else {
			search = &models.Search{JDText: jdText}
			applyShortlistRequest(search, &req)
			if err := deps.Searches.Create(ctx, search); err != nil {
				return utils.NewInternalServerError("Failed to create search")
			}
		}

		// Record this search as the caller's pending run so the processing
		// endpoints can find it without a search id
		if err := deps.Tracker.Begin(ctx, owner(c), search.ID); err != nil {
			return utils.NewInternalServerError("Failed to queue search for processing")
		}

		message := "Shortlist created"
		if isUpdate {
			message = "Shortlist updated, re-running matching"
		}

		logger.Info("Shortlist request completed", map[string]interface{}{
			"request_id":      requestID(c),
			"search_id":       search.ID,
			"is_update":       isUpdate,
			"candidate_count": search.CandidateCount,
			"processing_time": utils.FormatDuration(time.Since(startTime)),
		})

		return c.JSON(http.StatusOK, models.ShortlistResponse{
			Success:  true,
			SearchID: search.ID,
			IsUpdate: isUpdate,
			Message:  message,
		})
	}
}

func applyShortlistRequest(search *models.Search, req *models.ShortlistRequest) {
	search.Name = req.SearchName
	search.JobRole = req.JobRole
	search.Skills = req.Skills
	search.CandidateCorpus = req.CandidateText
	search.CandidateCount = req.CandidateCount
	search.Shared = models.SharedFields{
		Company:      req.Company,
		Location:     req.Location,
		HRContact:    req.HRContact,
		NoticePeriod: req.NoticePeriod,
		Remote:       req.Remote,
		Contract:     req.Contract,
	}
}

// collectValidationErrors runs struct validation and flattens every failure
// into a field-level message.
func collectValidationErrors(req interface{}) []string {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		switch fe.Tag() {
		case "required", "min":
			messages = append(messages, fe.Field()+" is required")
		case "max":
			messages = append(messages, fe.Field()+" exceeds the allowed maximum")
		case "email":
			messages = append(messages, fe.Field()+" must be a valid email address")
		default:
			messages = append(messages, fe.Field()+" is invalid")
		}
	}
	return messages
}
