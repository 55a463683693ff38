// Package echo exposes the OAuth login flow and the local account API over
// HTTP. All domain errors are mapped to JSON error responses here; nothing
// below this layer writes HTTP status codes.
package echo

import "github.com/labstack/echo/v4"

// ErrorResponse is the uniform error body: {"error": "..."}.
type ErrorResponse struct {
	Error string `json:"error"`
}

func errorJSON(c echo.Context, status int, msg string) error {
	return c.JSON(status, ErrorResponse{Error: msg})
}
