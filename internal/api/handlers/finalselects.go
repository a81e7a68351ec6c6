package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"hiredesk/internal/logging"
	"hiredesk/pkg/models"
	"hiredesk/pkg/utils"
)

// FinalSelectsListHandler returns the escalated subset for a search.
func FinalSelectsListHandler(deps *Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		searchID := c.QueryParam("search_id")
		if searchID == "" {
			return utils.NewBadRequestError("search_id query parameter is required")
		}

		candidates, err := deps.Candidates.ListFinalSelects(c.Request().Context(), searchID)
		if err != nil {
			return utils.NewInternalServerError("Failed to load final selects")
		}

		return c.JSON(http.StatusOK, models.ResultsResponse{
			Success:    true,
			Candidates: candidates,
			Total:      len(candidates),
		})
	}
}

// FinalSelectsHandler applies one batch of final-select mutations:
// escalations, joined toggles and removals. Removal also clears the joined
// flag so a re-escalated candidate starts clean.
func FinalSelectsHandler(deps *Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		var req models.FinalSelectsRequest
		if err := c.Bind(&req); err != nil {
			return utils.NewBadRequestError("Invalid request format")
		}
		if err := validate.Struct(&req); err != nil {
			return utils.NewValidationError(err.Error())
		}
		if len(req.AddToFinal) == 0 && len(req.Joined) == 0 && len(req.RemoveFromFinal) == 0 {
			return utils.NewBadRequestError("Nothing to apply")
		}

		if err := deps.Candidates.SetFinalSelect(ctx, req.AddToFinal, true); err != nil {
			return utils.NewInternalServerError("Failed to add candidates to final selects")
		}
		if err := deps.Candidates.SetJoined(ctx, req.Joined); err != nil {
			return utils.NewInternalServerError("Failed to update joined flags")
		}
		if err := deps.Candidates.SetFinalSelect(ctx, req.RemoveFromFinal, false); err != nil {
			return utils.NewInternalServerError("Failed to remove candidates from final selects")
		}

		logging.GetGlobalLogger().Info("Final selects batch applied", map[string]interface{}{
			"request_id": requestID(c),
			"search_id":  req.SearchID,
			"added":      len(req.AddToFinal),
			"joined":     len(req.Joined),
			"removed":    len(req.RemoveFromFinal),
		})

		return c.JSON(http.StatusOK, models.StatusResponse{Success: true, Status: "ok"})
	}
}
