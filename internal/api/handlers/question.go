package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"hiredesk/internal/llm"
	"hiredesk/internal/logging"
	"hiredesk/internal/storage"
	"hiredesk/pkg/models"
	"hiredesk/pkg/utils"
)

const suggestionCount = 5

// GetQuestionsHandler asks the provider for screening-question suggestions
// for the search's job criteria. The call is idempotent and repeatable; the
// client decides how often to offer it.
func GetQuestionsHandler(deps *Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		searchID := c.QueryParam("search_id")
		if searchID == "" {
			return utils.NewBadRequestError("search_id query parameter is required")
		}

		search, err := deps.Searches.GetByID(ctx, searchID)
		if err == storage.ErrNotFound {
			return notFound("search")
		}
		if err != nil {
			return utils.NewInternalServerError("Failed to load search")
		}

		job := llm.JobContext{
			Role:           search.JobRole,
			Skills:         search.Skills,
			Description:    search.JDText,
			CustomQuestion: search.CustomQuestion,
		}

		questions, err := deps.Provider.SuggestQuestions(ctx, job, suggestionCount)
		if err != nil {
			logging.GetGlobalLogger().Error("Question suggestion failed", map[string]interface{}{
				"request_id": requestID(c),
				"search_id":  searchID,
				"error":      err.Error(),
			})
			return c.JSON(http.StatusBadGateway, models.QuestionSuggestionsResponse{
				Success: false,
				Error:   "Question generation failed, try again",
			})
		}

		return c.JSON(http.StatusOK, models.QuestionSuggestionsResponse{
			Success:   true,
			Questions: questions,
		})
	}
}

// GetCustomQuestionHandler returns the single saved question for a search.
func GetCustomQuestionHandler(deps *Deps) echo.HandlerFunc {
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

		return c.JSON(http.StatusOK, models.CustomQuestionResponse{
			Success:        true,
			CustomQuestion: search.CustomQuestion,
		})
	}
}

// SaveCustomQuestionHandler overwrites the search's single question string.
func SaveCustomQuestionHandler(deps *Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req models.CustomQuestionRequest
		if err := c.Bind(&req); err != nil {
			return utils.NewBadRequestError("Invalid request format")
		}
		if err := validate.Struct(&req); err != nil {
			return utils.NewValidationError(err.Error())
		}

		err := deps.Searches.SetCustomQuestion(c.Request().Context(), req.SearchID, req.Question)
		if err == storage.ErrNotFound {
			return notFound("search")
		}
		if err != nil {
			return utils.NewInternalServerError("Failed to save custom question")
		}

		return c.JSON(http.StatusOK, models.CustomQuestionResponse{
			Success:        true,
			CustomQuestion: req.Question,
		})
	}
}
