package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"statbench/internal/errors"
)

// statusFor maps an error code to its HTTP status. Precondition failures are
// 422: the request was well formed but the data cannot support the analysis.
func statusFor(code string) int {
	switch code {
	case errors.CodeInsufficientData, errors.CodeInvalidConfiguration, errors.CodeNumericDegeneracy:
		return http.StatusUnprocessableEntity
	case errors.CodeInvalidInput, errors.CodeValidationError:
		return http.StatusBadRequest
	case errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeExternalService:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		c.Error(err)
	}
	c.JSON(status, gin.H{
		"error":  errors.UserMessage(err),
		"code":   code,
		"detail": err.Error(),
	})
}
