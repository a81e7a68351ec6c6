package middleware

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// TimeoutConfig returns timeout middleware configuration
func TimeoutConfig(timeout time.Duration) echo.MiddlewareFunc {
	return middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: timeout,
	})
}

// aiPaths are the endpoints that call the LLM provider inline and need the
// extended deadline.
var aiPaths = []string{
	"/api/process/",
	"/api/get-questions",
}

// SelectiveTimeoutConfig applies the default timeout to most endpoints and a
// longer one to AI-intensive endpoints.
func SelectiveTimeoutConfig(defaultTimeout, aiTimeout time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			timeout := defaultTimeout
			for _, path := range aiPaths {
				if strings.HasPrefix(c.Request().URL.Path, path) {
					timeout = aiTimeout
					break
				}
			}

			handler := middleware.TimeoutWithConfig(middleware.TimeoutConfig{
				Timeout: timeout,
			})(next)

			return handler(c)
		}
	}
}
