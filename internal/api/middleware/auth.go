package middleware

import (
	"net/http"
	"strings"
	"time"

	"hiredesk/internal/config"
	"hiredesk/pkg/models"

	"github.com/labstack/echo/v4"
)

// OwnerKey is the echo context key carrying the authenticated caller
// identity. The matching run tracker is keyed on it.
const OwnerKey = "owner"

// BearerAuth checks the Authorization header against the configured API
// token and records the caller identity in the request context. When no
// token is configured the check is skipped and callers share a single
// local identity.
func BearerAuth(cfg *config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Server.APIToken == "" {
				c.Set(OwnerKey, "local")
				return next(c)
			}

			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token := strings.TrimPrefix(header, "Bearer ")
			if header == "" || token == header || token != cfg.Server.APIToken {
				requestID, _ := c.Get("request_id").(string)
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
					Error:     "unauthorized",
					Message:   "Missing or invalid bearer token",
					RequestID: requestID,
					Timestamp: time.Now(),
				})
			}

			c.Set(OwnerKey, token)
			return next(c)
		}
	}
}
