package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aqilnadzmi/library-duty-api/internal/http/middlewares"
)

// RespondError writes the failure envelope: an error flag, a human-readable
// message, the request id, and optional details (validation fields, or raw
// error text in dev mode only).
func RespondError(ctx *gin.Context, status int, message string, details interface{}) {
	body := gin.H{
		"error":     true,
		"message":   message,
		"requestId": middlewares.RequestIDFromContext(ctx),
	}

	if details != nil {
		body["details"] = details
	}

	ctx.JSON(status, body)
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, message, details)
}

func RespondUnauthorized(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusUnauthorized, message, nil)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, message, nil)
}

func RespondConflict(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusConflict, message, nil)
}

func RespondInternal(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusInternalServerError, message, details)
}
