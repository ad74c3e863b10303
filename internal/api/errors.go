package api

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"geoverify/internal/errors"
)

// statusFor maps an application error code onto an HTTP status
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.CodeSessionNotFound, errors.CodeIterationNotFound:
		return http.StatusNotFound
	case errors.CodeInvalidInput:
		return http.StatusBadRequest
	case errors.CodeConfiguration, errors.CodeShapeMismatch, errors.CodeUnknownMethod:
		return http.StatusUnprocessableEntity
	case errors.CodeConflict:
		return http.StatusConflict
	case errors.CodeExternalService:
		return http.StatusBadGateway
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// respondError writes err as {"error", "code"} with the mapped status.
// Internal failures are logged and reported without their cause chain.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	code := errors.GetCode(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("%s %s: %v", c.Request.Method, c.FullPath(), err)
		message = "internal error"
		if code == "UNKNOWN" {
			code = errors.CodeInternalError
		}
	}
	c.AbortWithStatusJSON(status, gin.H{"error": message, "code": code})
}

func badRequest(err error) error {
	return errors.InvalidInput("invalid request body: " + err.Error())
}
