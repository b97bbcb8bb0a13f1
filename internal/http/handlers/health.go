package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const apiVersion = "1.0.0"

type HealthHandler struct {
	env  string
	ping func() error
}

func NewHealthHandler(env string, ping func() error) *HealthHandler {
	return &HealthHandler{env: env, ping: ping}
}

func (h *HealthHandler) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status":      "OK",
		"message":     "Library Duty System API is running",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"environment": h.env,
		"version":     apiVersion,
	})
}

// Ready reports whether the database is reachable.
func (h *HealthHandler) Ready(ctx *gin.Context) {
	if h.ping != nil {
		if err := h.ping(); err != nil {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ready"})
}
