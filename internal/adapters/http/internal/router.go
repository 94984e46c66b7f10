package internalhttp

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Register attaches operational endpoints outside the API base path.
func Register(e *echo.Echo, appName string) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "service": appName})
	})
}
