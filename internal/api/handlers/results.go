package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"hiredesk/internal/storage"
	"hiredesk/pkg/models"
	"hiredesk/pkg/utils"
)

// ResultsHandler returns the full candidate set for a search together with
// call counters and the saved custom question.
func ResultsHandler(deps *Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		searchID := c.QueryParam("searchID")
		if searchID == "" {
			return utils.NewBadRequestError("searchID query parameter is required")
		}

		search, err := deps.Searches.GetByID(ctx, searchID)
		if err == storage.ErrNotFound {
			return notFound("search")
		}
		if err != nil {
			return utils.NewInternalServerError("Failed to load search")
		}

		candidates, err := deps.Candidates.ListBySearch(ctx, search.ID)
		if err != nil {
			return utils.NewInternalServerError("Failed to load candidates")
		}

		scheduled, err := deps.Candidates.CountByCallStatus(ctx, search.ID, models.CallStatusScheduled)
		if err != nil {
			return utils.NewInternalServerError("Failed to count scheduled calls")
		}
		rescheduled, err := deps.Candidates.CountByCallStatus(ctx, search.ID, models.CallStatusReschedule)
		if err != nil {
			return utils.NewInternalServerError("Failed to count rescheduled calls")
		}

		return c.JSON(http.StatusOK, models.ResultsResponse{
			Success:          true,
			Candidates:       candidates,
			Total:            len(candidates),
			CallsScheduled:   scheduled,
			RescheduledCalls: rescheduled,
			CustomQuestion:   search.CustomQuestion,
		})
	}
}
