package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"ridevalue/models"
	"ridevalue/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type DriversHandler struct {
	db    *gorm.DB
	cache *services.CacheService
}

func NewDriversHandler(db *gorm.DB, cache *services.CacheService) *DriversHandler {
	return &DriversHandler{db: db, cache: cache}
}

// List returns driver summaries ordered by driver id, cursor-paginated with
// ?after=<driver_id>, optionally filtered with ?active=true|false.
func (h *DriversHandler) List(c *gin.Context) {
	p := ParsePagination(c)

	activeStr := c.Query("active")
	var activeFilter *bool
	if activeStr != "" {
		b, err := strconv.ParseBool(activeStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "active must be true or false"})
			return
		}
		activeFilter = &b
	}

	cacheKey := fmt.Sprintf("drivers:%s:%d:%s", activeStr, p.Limit, p.AfterDriverID)
	var cached CursorResponse
	if err := h.cache.Get(c.Request.Context(), cacheKey, &cached); err == nil {
		c.JSON(http.StatusOK, cached)
		return
	}

	query := h.db.Model(&models.DriverSummary{}).Order("driver_id ASC").Limit(p.Limit + 1)
	if p.AfterDriverID != "" {
		query = query.Where("driver_id > ?", p.AfterDriverID)
	}
	if activeFilter != nil {
		query = query.Where("still_active = ?", *activeFilter)
	}

	var rows []models.DriverSummary
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
		nextCursor = rows[len(rows)-1].DriverID
	}

	resp := CursorResponse{Data: rows, NextCursor: nextCursor, HasMore: hasMore}
	go h.cache.Set(context.Background(), cacheKey, resp, 30*time.Second)

	c.JSON(http.StatusOK, resp)
}
