// Package apierr provides the HTTP surface's uniform error shape and the
// error-wrapping helpers used to attach context as errors propagate up
// from the core.
package apierr

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// detailBody is the uniform error response shape: {"detail": "..."}.
type detailBody struct {
	Detail string `json:"detail"`
}

// RespondDetail writes a JSON error body {"detail": message} with the
// given status code and aborts the gin context.
func RespondDetail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, detailBody{Detail: message})
}

// RespondBadRequest writes a 400 {"detail": message}.
func RespondBadRequest(c *gin.Context, message string) {
	RespondDetail(c, http.StatusBadRequest, message)
}

// RespondInternal writes a 500 {"detail": message}, hiding any internal
// error detail behind the caller-supplied message.
func RespondInternal(c *gin.Context, message string) {
	RespondDetail(c, http.StatusInternalServerError, message)
}

// WrapWithContext wraps err with a context string, or returns nil if err
// is nil.
func WrapWithContext(err error, context string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}

// WrapWithContextf wraps err with a formatted context string.
func WrapWithContextf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
