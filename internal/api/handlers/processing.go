package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"hiredesk/internal/logging"
	"hiredesk/internal/matching"
	"hiredesk/internal/storage"
	"hiredesk/pkg/models"
	"hiredesk/pkg/utils"
)

// LoadingHandler kicks off the matching run for the caller's pending search.
// Reaching this endpoint after intake has finished (the redirect case) just
// finalizes the run instead of re-scoring the corpus.
func LoadingHandler(deps *Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		logger := logging.GetGlobalLogger()
		who := owner(c)

		status, err := deps.Tracker.Status(ctx, who)
		if err == matching.ErrNoActiveRun {
			return utils.NewNotFoundError("No search is queued for processing")
		}
		if err != nil {
			return utils.NewInternalServerError("Failed to read run status")
		}

		search, err := deps.Searches.GetByID(ctx, status.SearchID)
		if err == storage.ErrNotFound {
			return notFound("search")
		}
		if err != nil {
			return utils.NewInternalServerError("Failed to load search")
		}

		// Intake completion routes back here; the shortlist already exists
		// so the run completes immediately.
		if search.Processed && search.Submitted > 0 {
			if err := deps.Tracker.Begin(ctx, who, search.ID); err != nil {
				return utils.NewInternalServerError("Failed to record run")
			}
			if err := deps.Tracker.MarkProcessed(ctx, who); err != nil {
				return utils.NewInternalServerError("Failed to record run")
			}
			return c.JSON(http.StatusOK, models.StatusResponse{Success: true, Status: "processing"})
		}

		if err := deps.Engine.StartRun(ctx, who, search); err != nil {
			logger.Error("Failed to start matching run", map[string]interface{}{
				"request_id": requestID(c),
				"search_id":  search.ID,
				"error":      err.Error(),
			})
			return utils.NewInternalServerError("Failed to start processing")
		}

		return c.JSON(http.StatusOK, models.StatusResponse{Success: true, Status: "processing"})
	}
}

// CheckProcessingHandler is the poll target: whether the caller's latest run
// has finished and, once it has, which search to navigate to.
func CheckProcessingHandler(deps *Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		status, err := deps.Tracker.Status(ctx, owner(c))
		if err == matching.ErrNoActiveRun {
			return utils.NewNotFoundError("No search is queued for processing")
		}
		if err != nil {
			return utils.NewInternalServerError("Failed to read run status")
		}

		response := models.ProcessingStatusResponse{Processed: status.Processed}
		if status.Processed {
			response.SearchID = status.SearchID
		}

		return c.JSON(http.StatusOK, response)
	}
}
