package routes

import (
	"net/http"
	"time"

	"hiredesk/internal/api/handlers"
	"hiredesk/internal/api/middleware"
	"hiredesk/internal/config"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

// SetupRoutes configures all API routes
func SetupRoutes(e *echo.Echo, cfg *config.Config, deps *handlers.Deps) {
	// Typed application errors become the error envelope
	e.HTTPErrorHandler = handlers.ErrorHandler()

	// Global middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(middleware.CORSConfig())
	e.Use(middleware.RequestValidation())
	// Selective timeout: default for most endpoints, 2 minutes for the
	// endpoints that call the LLM provider inline
	e.Use(middleware.SelectiveTimeoutConfig(cfg.Server.ReadTimeout, 2*time.Minute))

	// Health check routes
	health := e.Group("/health")
	{
		health.GET("", handlers.HealthHandler)
		health.GET("/ready", handlers.ReadinessHandler(deps))
		health.GET("/live", handlers.LivenessHandler)
	}

	// Pipeline API, bearer-token protected
	api := e.Group("/api", middleware.BearerAuth(cfg))
	{
		api.POST("/shortlist", handlers.ShortlistHandler(deps))
		api.GET("/search", handlers.GetSearchHandler(deps))
		api.POST("/archive-search", handlers.ArchiveSearchHandler(deps))

		api.GET("/loading", handlers.LoadingHandler(deps))
		api.GET("/check-processing", handlers.CheckProcessingHandler(deps))

		api.GET("/process/:searchID", handlers.IntakeProgressHandler(deps))
		api.POST("/process/:searchID", handlers.IntakeSubmitHandler(deps))

		api.GET("/results", handlers.ResultsHandler(deps))

		api.GET("/candidate", handlers.GetCandidateHandler(deps))
		api.POST("/candidate", handlers.CreateCandidateHandler(deps))
		api.PUT("/candidate", handlers.UpdateCandidateHandler(deps))
		api.DELETE("/candidate", handlers.DeleteCandidateHandler(deps))
		api.POST("/like-candidate", handlers.LikeCandidateHandler(deps))

		api.POST("/call-single", handlers.CallHandler(deps))
		api.POST("/call", handlers.CallHandler(deps))
		api.POST("/call-status", handlers.CallStatusHandler(deps))
		api.GET("/call-history", handlers.CallHistoryHandler(deps))

		api.GET("/get-questions", handlers.GetQuestionsHandler(deps))
		api.GET("/custom-question", handlers.GetCustomQuestionHandler(deps))
		api.POST("/custom-question", handlers.SaveCustomQuestionHandler(deps))

		api.GET("/final-selects", handlers.FinalSelectsListHandler(deps))
		api.POST("/final-selects", handlers.FinalSelectsHandler(deps))

		api.GET("/tasks", handlers.ListTasksHandler(deps))
		api.POST("/tasks", handlers.CreateTaskHandler(deps))
		api.GET("/tasks/:id", handlers.GetTaskHandler(deps))
		api.PUT("/tasks/:id/status", handlers.TaskStatusHandler(deps))
	}

	// Root route
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"service": "HireDesk Pipeline",
			"version": "1.0.0",
			"status":  "running",
		})
	})
}
