package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/example/blog-publisher/internal/models"
)

const (
	defaultActivityLimit = 20
	maxActivityLimit     = 200
)

type ActivityReader interface {
	Recent(ctx context.Context, slug string, limit int) ([]models.ActivityLog, error)
}

type ActivityHandler struct {
	activity ActivityReader
}

func NewActivityHandler(a ActivityReader) *ActivityHandler {
	return &ActivityHandler{activity: a}
}

// Recent handles GET /api/activity?slug=&limit=.
func (h *ActivityHandler) Recent(c *gin.Context) {
	limit := defaultActivityLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxActivityLimit)
	}

	rows, err := h.activity.Recent(c.Request.Context(), c.Query("slug"), limit)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"activity": rows, "count": len(rows)})
}
