package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ridevalue/models"
	"ridevalue/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type EstimatesHandler struct {
	db    *gorm.DB
	cache *services.CacheService
}

func NewEstimatesHandler(db *gorm.DB, cache *services.CacheService) *EstimatesHandler {
	return &EstimatesHandler{db: db, cache: cache}
}

// Latest returns the most recent lifetime value estimate.
func (h *EstimatesHandler) Latest(c *gin.Context) {
	var cached models.Estimate
	if err := h.cache.Get(c.Request.Context(), "estimates:latest", &cached); err == nil {
		c.JSON(http.StatusOK, cached)
		return
	}

	var est models.Estimate
	if err := h.db.Order("run_at DESC").First(&est).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no estimates yet"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
		return
	}

	go h.cache.Set(context.Background(), "estimates:latest", est, 30*time.Second)

	c.JSON(http.StatusOK, est)
}

// History returns past estimates newest first, cursor-paginated with
// ?before=<run_at RFC3339Nano>.
func (h *EstimatesHandler) History(c *gin.Context) {
	p := ParsePagination(c)

	beforeStr := ""
	if p.BeforeRunAt != nil {
		beforeStr = p.BeforeRunAt.Format(time.RFC3339Nano)
	}
	cacheKey := fmt.Sprintf("estimates:history:%d:%s", p.Limit, beforeStr)

	var cached CursorResponse
	if err := h.cache.Get(c.Request.Context(), cacheKey, &cached); err == nil {
		c.JSON(http.StatusOK, cached)
		return
	}

	query := h.db.Model(&models.Estimate{}).Order("run_at DESC").Limit(p.Limit + 1)
	if p.BeforeRunAt != nil {
		query = query.Where("run_at < ?", *p.BeforeRunAt)
	}

	var rows []models.Estimate
	if err := query.Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
		return
	}

	hasMore := len(rows) > p.Limit
	if hasMore {
		rows = rows[:p.Limit]
	}

	var nextCursor string
	if hasMore && len(rows) > 0 {
		nextCursor = rows[len(rows)-1].RunAt.Format(time.RFC3339Nano)
	}

	resp := CursorResponse{Data: rows, NextCursor: nextCursor, HasMore: hasMore}
	go h.cache.Set(context.Background(), cacheKey, resp, 30*time.Second)

	c.JSON(http.StatusOK, resp)
}
