package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "neighbornet/pkg/errors"
)

// Response is the JSON envelope used by every HTTP endpoint.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Code    string      `json:"code,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func SuccessResponse(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func ErrorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, Response{
		Success: false,
		Message: message,
	})
}

// AppErrorResponse maps a domain error to an HTTP status and the envelope.
// Errors without a code are treated as infrastructure failures and surface
// as a generic 500 without leaking internals.
func AppErrorResponse(c *gin.Context, err error) {
	appErr, ok := appErrors.AsAppError(err)
	if !ok {
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Message: "internal server error",
			Code:    appErrors.CodeInternal,
		})
		return
	}

	c.JSON(statusForCode(appErr.Code), Response{
		Success: false,
		Message: appErr.Message,
		Code:    appErr.Code,
	})
}

func statusForCode(code string) int {
	switch code {
	case appErrors.CodeNotFound:
		return http.StatusNotFound
	case appErrors.CodeInvalidInput, appErrors.CodeValidation:
		return http.StatusBadRequest
	case appErrors.CodeConflict, appErrors.CodeInvalidState:
		return http.StatusConflict
	case appErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
