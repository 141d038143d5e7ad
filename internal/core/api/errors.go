package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lcgate/rulekeeper/internal/types"
)

// respondError maps domain errors to HTTP status codes.
// Auth errors are mapped in the auth package middleware.
// Not-found sentinels map to 404, lifecycle conflicts to 409,
// validation failures to 400, everything else to 503.
func respondError(c *gin.Context, err error) {
	var status int
	switch {
	case errors.Is(err, types.ErrRulesetNotFound),
		errors.Is(err, types.ErrRuleNotFound):
		status = http.StatusNotFound
	case errors.Is(err, types.ErrDuplicateDraft),
		errors.Is(err, types.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.Is(err, types.ErrUnknownStatus),
		errors.Is(err, types.ErrUnknownSeverity),
		errors.Is(err, types.ErrUnknownDomain),
		errors.Is(err, types.ErrRulebookMismatch),
		errors.Is(err, types.ErrUploadTooLarge),
		errors.Is(err, types.ErrTooManyRules):
		status = http.StatusBadRequest
	default:
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{"success": false, "message": err.Error()})
}

// respondOK wraps payload in the standard success envelope.
func respondOK(c *gin.Context, message string, data any) {
	body := gin.H{"success": true, "message": message}
	if data != nil {
		body["data"] = data
	}
	c.JSON(http.StatusOK, body)
}
