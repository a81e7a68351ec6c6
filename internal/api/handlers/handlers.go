package handlers

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"hiredesk/internal/config"
	"hiredesk/internal/docext"
	"hiredesk/internal/llm"
	"hiredesk/internal/matching"
	"hiredesk/internal/storage"
	"hiredesk/pkg/models"
	"hiredesk/pkg/utils"
)

var validate = validator.New()

// CallDialer places call batches with the external calling service.
type CallDialer interface {
	Dial(ctx context.Context, request *models.CallRequest) error
}

// Deps carries everything the handlers need. Stores and the dialer are
// interfaces so tests can swap in fakes.
type Deps struct {
	Config     *config.Config
	Searches   storage.SearchStore
	Candidates storage.CandidateStore
	Calls      storage.CallStore
	Tasks      storage.TaskStore
	Engine     *matching.Engine
	Tracker    matching.RunTracker
	Provider   llm.Provider
	Caller     CallDialer
	Extractor  *docext.Extractor
}

// requestID returns the id the validation middleware attached to the request.
func requestID(c echo.Context) string {
	if id, ok := c.Get("request_id").(string); ok {
		return id
	}
	return ""
}

// owner returns the caller identity the auth middleware attached.
func owner(c echo.Context) string {
	if id, ok := c.Get("owner").(string); ok {
		return id
	}
	return "local"
}

func notFound(what string) *utils.CustomError {
	return utils.NewNotFoundError(what + " not found")
}
