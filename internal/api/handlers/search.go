package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"hiredesk/internal/storage"
	"hiredesk/pkg/utils"
)

// GetSearchHandler fetches one search so the shortlist form can prefill from
// it (history import, update-in-place).
func GetSearchHandler(deps *Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		searchID := c.QueryParam("search_id")
		if searchID == "" {
			return utils.NewBadRequestError("search_id query parameter is required")
		}

		search, err := deps.Searches.GetByID(c.Request().Context(), searchID)
		if err == storage.ErrNotFound {
			return notFound("search")
		}
		if err != nil {
			return utils.NewInternalServerError("Failed to load search")
		}

		return c.JSON(http.StatusOK, search)
	}
}

// ArchiveSearchHandler freezes a finished search into history.
func ArchiveSearchHandler(deps *Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		searchID := c.QueryParam("search_id")
		if searchID == "" {
			return utils.NewBadRequestError("search_id query parameter is required")
		}

		err := deps.Searches.Archive(c.Request().Context(), searchID)
		if err == storage.ErrNotFound {
			return notFound("search")
		}
		if err != nil {
			return utils.NewInternalServerError("Failed to archive search")
		}

		return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "status": "archived"})
	}
}
