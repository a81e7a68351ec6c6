package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"hiredesk/internal/logging"
	"hiredesk/internal/storage"
	"hiredesk/pkg/models"
	"hiredesk/pkg/utils"
)

// GetCandidateHandler fetches one candidate by id.
func GetCandidateHandler(deps *Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		candidateID := c.QueryParam("candidate_id")
		if candidateID == "" {
			return utils.NewBadRequestError("candidate_id query parameter is required")
		}

		candidate, err := deps.Candidates.GetByID(c.Request().Context(), candidateID)
		if err == storage.ErrNotFound {
			return notFound("candidate")
		}
		if err != nil {
			return utils.NewInternalServerError("Failed to load candidate")
		}

		return c.JSON(http.StatusOK, models.CandidateResponse{Success: true, Candidate: candidate})
	}
}

// CreateCandidateHandler adds a candidate directly from the results page,
// bypassing intake.
func CreateCandidateHandler(deps *Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		var req models.CandidateUpsertRequest
		if err := c.Bind(&req); err != nil {
			return utils.NewBadRequestError("Invalid request format")
		}
		if errs := collectValidationErrors(&req); len(errs) > 0 {
			return c.JSON(http.StatusBadRequest, models.IntakeSubmitResponse{Errors: errs})
		}

		if _, err := deps.Searches.GetByID(ctx, req.SearchID); err == storage.ErrNotFound {
			return notFound("search")
		} else if err != nil {
			return utils.NewInternalServerError("Failed to load search")
		}

		candidate := &models.Candidate{
			SearchID:    req.SearchID,
			Name:        req.Name,
			Email:       req.Email,
			Phone:       req.Phone,
			Skills:      req.Skills,
			TotalExp:    req.TotalExp,
			RelevantExp: req.RelevantExp,
			Summary:     req.Summary,
			MatchScore:  req.MatchScore,
		}
		if err := deps.Candidates.Create(ctx, candidate); err != nil {
			return utils.NewInternalServerError("Failed to create candidate")
		}

		logging.GetGlobalLogger().Info("Candidate created manually", map[string]interface{}{
			"request_id":   requestID(c),
			"search_id":    req.SearchID,
			"candidate_id": candidate.ID,
		})

		return c.JSON(http.StatusOK, models.CandidateResponse{Success: true, Candidate: candidate})
	}
}

// UpdateCandidateHandler edits the identity and scoring fields of an
// existing candidate.
func UpdateCandidateHandler(deps *Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		var req models.CandidateUpsertRequest
		if err := c.Bind(&req); err != nil {
			return utils.NewBadRequestError("Invalid request format")
		}
		if req.CandidateID == "" {
			return utils.NewBadRequestError("candidate_id is required for updates")
		}
		if errs := collectValidationErrors(&req); len(errs) > 0 {
			return c.JSON(http.StatusBadRequest, models.IntakeSubmitResponse{Errors: errs})
		}

		candidate, err := deps.Candidates.GetByID(ctx, req.CandidateID)
		if err == storage.ErrNotFound {
			return notFound("candidate")
		}
		if err != nil {
			return utils.NewInternalServerError("Failed to load candidate")
		}

		candidate.Name = req.Name
		candidate.Email = req.Email
		candidate.Phone = req.Phone
		candidate.Skills = req.Skills
		candidate.TotalExp = req.TotalExp
		candidate.RelevantExp = req.RelevantExp
		candidate.Summary = req.Summary
		candidate.MatchScore = req.MatchScore

		if err := deps.Candidates.Update(ctx, candidate); err != nil {
			return utils.NewInternalServerError("Failed to update candidate")
		}

		return c.JSON(http.StatusOK, models.CandidateResponse{Success: true, Candidate: candidate})
	}
}

// DeleteCandidateHandler removes a candidate and, via the cascade, its call
// history.
func DeleteCandidateHandler(deps *Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		candidateID := c.QueryParam("candidate_id")
		if candidateID == "" {
			return utils.NewBadRequestError("candidate_id query parameter is required")
		}

		err := deps.Candidates.Delete(c.Request().Context(), candidateID)
		if err == storage.ErrNotFound {
			return notFound("candidate")
		}
		if err != nil {
			return utils.NewInternalServerError("Failed to delete candidate")
		}

		logging.GetGlobalLogger().Info("Candidate deleted", map[string]interface{}{
			"request_id":   requestID(c),
			"candidate_id": candidateID,
		})

		return c.JSON(http.StatusOK, models.StatusResponse{Success: true, Status: "deleted"})
	}
}

// LikeCandidateHandler flips the liked flag.
func LikeCandidateHandler(deps *Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req models.LikeRequest
		if err := c.Bind(&req); err != nil {
			return utils.NewBadRequestError("Invalid request format")
		}
		if err := validate.Struct(&req); err != nil {
			return utils.NewValidationError(err.Error())
		}

		err := deps.Candidates.SetLiked(c.Request().Context(), req.CandidateID, req.Liked)
		if err == storage.ErrNotFound {
			return notFound("candidate")
		}
		if err != nil {
			return utils.NewInternalServerError("Failed to update liked flag")
		}

		return c.JSON(http.StatusOK, models.StatusResponse{Success: true})
	}
}
