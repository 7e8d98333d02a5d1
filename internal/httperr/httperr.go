package httperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type ErrorBody struct {
	Code   string `json:"code"`
	Detail string `json:"detail,omitempty"`
}

type HTTPError struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Errors  ErrorBody `json:"errors"`
}

func Write(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, HTTPError{
		Success: false,
		Message: message,
		Errors:  ErrorBody{Code: code},
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

func ForbiddenResponse(c *gin.Context, code, message string) {
	Write(c, http.StatusForbidden, code, message)
}

func TooManyRequests(c *gin.Context) {
	Write(c, http.StatusTooManyRequests, "too_many_requests", "Too many requests, slow down.")
}

func StatusOf(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Respond maps err onto the error envelope. Unclassified errors are logged
// and hidden behind a generic message unless dev is set.
func Respond(c *gin.Context, err error, dev bool) {
	if e, ok := As(err); ok {
		msg := e.Message
		if msg == "" {
			msg = e.Code
		}
		Write(c, StatusOf(e.Kind), e.Code, msg)
		return
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		NotFound(c, "not_found", "Resource not found")
		return
	}

	log.Error().Err(err).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Msg("unexpected error")

	body := HTTPError{
		Success: false,
		Message: "Unexpected error occurred. Please try again later.",
		Errors:  ErrorBody{Code: "internal_error"},
	}
	if dev {
		body.Errors.Detail = err.Error()
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, body)
}
