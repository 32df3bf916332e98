package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// APIError is the standard error response shape. Every rejected request gets
// a structured status and message; scoring results are never dropped with an
// empty body.
type APIError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Path    string `json:"path"`
	Status  int    `json:"status"`
}

func path(c echo.Context) string {
	if c == nil || c.Request() == nil {
		return ""
	}
	return c.Request().URL.Path
}

// OK sends a 200 response with the payload as the body.
func OK(c echo.Context, payload any) error {
	return c.JSON(http.StatusOK, payload)
}

// Error sends a JSON error response using APIError.
func Error(c echo.Context, status int, message, errDetail string) error {
	return c.JSON(status, APIError{
		Message: message,
		Error:   errDetail,
		Path:    path(c),
		Status:  status,
	})
}

// BadRequest sends 400 for malformed request bodies.
func BadRequest(c echo.Context, message, errDetail string) error {
	return Error(c, http.StatusBadRequest, message, errDetail)
}

// UnprocessableEntity sends 422 for well-formed bodies that fail validation.
func UnprocessableEntity(c echo.Context, message, errDetail string) error {
	return Error(c, http.StatusUnprocessableEntity, message, errDetail)
}

// InternalError sends 500.
func InternalError(c echo.Context, message, errDetail string) error {
	return Error(c, http.StatusInternalServerError, message, errDetail)
}
