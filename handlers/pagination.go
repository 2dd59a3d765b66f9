package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// PaginationParams carries both cursor styles the API uses. The driver
// listing pages forward by driver id (?after=), the estimate history pages
// backward through run time (?before=, RFC3339Nano). Unparseable cursors
// are ignored rather than rejected, like a missing cursor.
type PaginationParams struct {
	Limit         int
	AfterDriverID string
	BeforeRunAt   *time.Time
}

type CursorResponse struct {
	Data       interface{} `json:"data"`
	NextCursor string      `json:"next_cursor,omitempty"`
	HasMore    bool        `json:"has_more"`
}

func ParsePagination(c *gin.Context) PaginationParams {
	p := PaginationParams{Limit: DefaultLimit}

	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			p.Limit = l
		}
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}

	p.AfterDriverID = c.Query("after")

	if beforeStr := c.Query("before"); beforeStr != "" {
		if t, err := time.Parse(time.RFC3339Nano, beforeStr); err == nil {
			p.BeforeRunAt = &t
		}
	}

	return p
}
