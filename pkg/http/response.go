package http

import "github.com/labstack/echo/v4"

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   Error  `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

type Response struct {
	Data interface{} `json:"data,omitempty"`
}

func JSON(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, Response{Data: data})
}

func MessageJSON(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{"message": message})
}

func ErrorJSON(c echo.Context, status int, code, message, traceID string) error {
	return c.JSON(status, ErrorResponse{Error: Error{Code: code, Message: message}, TraceID: traceID})
}

// RequestID returns the request ID the middleware stamped on the response,
// falling back to the caller-supplied header.
func RequestID(c echo.Context) string {
	if reqID := c.Response().Header().Get(echo.HeaderXRequestID); reqID != "" {
		return reqID
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}
