// Usage ledger HTTP handlers.
//
// This file exposes read-only access to the append-only usage ledger:
//   - GET /api/v1/usage   (list, paginated, ETag support)
//
// The ledger records one row per attempted provider call (chat or speech) and
// exists for operational review; it is not consulted by quota enforcement.
package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dramalab/go-drama-agent/internal/domain"
	"github.com/dramalab/go-drama-agent/internal/utils"
)

//
// DTOs
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListUsageResponse wraps a page of usage rows and pagination information.
type ListUsageResponse struct {
	Usage      []domain.UsageLog `json:"usage"`
	Pagination Pagination        `json:"pagination"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

//
// Handlers
//

// ListUsage godoc
// @ID          listUsage
// @Summary     List usage ledger rows (paginated)
// @Description Returns a page of recorded provider calls, newest first. Optionally scoped to one identity via user_id. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Usage
// @Produce     json
//
// @Param       user_id        query   string  false "Scope to one identity"       example(web-demo)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"abc123\")
// @Param       page           query   int     false "Page number"                  minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"               minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListUsageResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /api/v1/usage [get]
func (h *Handlers) ListUsage(c *gin.Context) {
	ctx := c.Request.Context()
	identity := strings.TrimSpace(c.Query("user_id"))
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	if count, maxTS, err := h.usageSvc.Stats(ctx, identity); err == nil {
		var ts int64
		if maxTS != nil {
			ts = maxTS.Unix()
		}
		etag := fmt.Sprintf(`W/"usage:%s:%d:%d"`, identity, count, ts)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	// Fetch page.
	items, total, err := h.usageSvc.ListPage(ctx, identity, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	resp := ListUsageResponse{
		Usage: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	}
	ok(c, http.StatusOK, resp)
}
