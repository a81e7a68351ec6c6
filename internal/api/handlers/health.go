package handlers

import (
	"net/http"
	"time"

	"hiredesk/internal/logging"
	"hiredesk/pkg/models"

	"github.com/labstack/echo/v4"
)

var startTime = time.Now()

// HealthHandler handles health check requests
func HealthHandler(c echo.Context) error {
	logger := logging.GetGlobalLogger()
	logger.Debug("Health check requested", map[string]interface{}{"request_id": requestID(c)})

	response := models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   "1.0.0",
		Uptime:    time.Since(startTime),
		Checks: map[string]string{
			"api": "ok",
		},
	}

	return c.JSON(http.StatusOK, response)
}

// ReadinessHandler verifies the external dependencies the pipeline needs.
func ReadinessHandler(deps *Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		logger := logging.GetGlobalLogger()
		logger.Debug("Readiness check requested", map[string]interface{}{"request_id": requestID(c)})

		checks := map[string]string{"api": "ok"}
		status := "ready"
		httpStatus := http.StatusOK

		if deps.Provider != nil {
			if err := deps.Provider.IsHealthy(c.Request().Context()); err != nil {
				checks["llm"] = err.Error()
				status = "degraded"
			} else {
				checks["llm"] = "ok"
			}
		}

		response := models.HealthResponse{
			Status:    status,
			Timestamp: time.Now(),
			Version:   "1.0.0",
			Uptime:    time.Since(startTime),
			Checks:    checks,
		}

		return c.JSON(httpStatus, response)
	}
}

// LivenessHandler handles liveness probe requests
func LivenessHandler(c echo.Context) error {
	logger := logging.GetGlobalLogger()
	logger.Debug("Liveness check requested", map[string]interface{}{"request_id": requestID(c)})

	response := models.HealthResponse{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   "1.0.0",
		Uptime:    time.Since(startTime),
	}

	return c.JSON(http.StatusOK, response)
}
