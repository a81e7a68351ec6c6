package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"hiredesk/internal/logging"
	"hiredesk/internal/storage"
	"hiredesk/pkg/models"
	"hiredesk/pkg/utils"
)

// CallHandler forwards a call batch (one candidate or the whole selected
// set) to the calling service and marks every candidate as scheduled. The
// batch is one request to the service, so partial failure is owned there;
// actual outcomes arrive later through the webhook.
func CallHandler(deps *Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		logger := logging.GetGlobalLogger()

		var req models.CallRequest
		if err := c.Bind(&req); err != nil {
			return utils.NewBadRequestError("Invalid request format")
		}
		if err := validate.Struct(&req); err != nil {
			return utils.NewValidationError(err.Error())
		}

		if deps.Caller == nil {
			return utils.NewUnavailableError("Calling service is not configured")
		}

		search, err := deps.Searches.GetByID(ctx, req.SearchID)
		if err == storage.ErrNotFound {
			return notFound("search")
		}
		if err != nil {
			return utils.NewInternalServerError("Failed to load search")
		}

		// The company is server truth from the search's shared fields; the
		// client does not carry it in the batch.
		for i := range req.Candidates {
			if req.Candidates[i].Company == "" {
				req.Candidates[i].Company = search.Shared.Company
			}
		}

		if err := deps.Caller.Dial(ctx, &req); err != nil {
			logger.Error("Calling service request failed", map[string]interface{}{
				"request_id": requestID(c),
				"search_id":  req.SearchID,
				"candidates": len(req.Candidates),
				"error":      err.Error(),
			})
			return utils.NewCallServiceError(err.Error())
		}

		for _, candidate := range req.Candidates {
			if err := deps.Candidates.SetCallStatus(ctx, candidate.CandidateID, models.CallStatusScheduled); err != nil {
				logger.Warn("Failed to mark candidate as scheduled", map[string]interface{}{
					"request_id":   requestID(c),
					"candidate_id": candidate.CandidateID,
					"error":        err.Error(),
				})
			}
		}

		logger.Info("Call batch dispatched", map[string]interface{}{
			"request_id": requestID(c),
			"search_id":  req.SearchID,
			"candidates": len(req.Candidates),
		})

		return c.JSON(http.StatusOK, models.StatusResponse{Success: true, Status: "scheduled"})
	}
}

// CallStatusHandler is the webhook the calling subsystem pushes outcomes to:
// a call record plus the candidate's new status, applied atomically.
func CallStatusHandler(deps *Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		var update models.CallStatusUpdate
		if err := c.Bind(&update); err != nil {
			return utils.NewBadRequestError("Invalid request format")
		}
		if err := validate.Struct(&update); err != nil {
			return utils.NewValidationError(err.Error())
		}

		switch update.Status {
		case models.CallStatusAnswered, models.CallStatusReschedule, models.CallStatusFailed, models.CallStatusScheduled:
		default:
			return utils.NewBadRequestError("Unknown call status: " + string(update.Status))
		}

		err := deps.Calls.ApplyUpdate(c.Request().Context(), &update)
		if err == storage.ErrNotFound {
			return notFound("candidate")
		}
		if err != nil {
			return utils.NewInternalServerError("Failed to record call outcome")
		}

		logging.GetGlobalLogger().Info("Call outcome recorded", map[string]interface{}{
			"request_id":   requestID(c),
			"candidate_id": update.CandidateID,
			"status":       string(update.Status),
			"duration":     update.Duration,
		})

		return c.JSON(http.StatusOK, models.StatusResponse{Success: true})
	}
}

// CallHistoryHandler lists the recorded calls for one candidate.
func CallHistoryHandler(deps *Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		candidateID := c.QueryParam("candidate_id")
		if candidateID == "" {
			return utils.NewBadRequestError("candidate_id query parameter is required")
		}

		calls, err := deps.Calls.ListByCandidate(c.Request().Context(), candidateID)
		if err != nil {
			return utils.NewInternalServerError("Failed to load call history")
		}

		return c.JSON(http.StatusOK, map[string]interface{}{
			"success": true,
			"calls":   calls,
			"total":   len(calls),
		})
	}
}
