package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gigbook/service-booking/internal/domain"
	"github.com/gigbook/service-booking/internal/platform/response"
)

// parseID reads a positive integer path parameter, writing a 400 when it is not one.
func parseID(c *gin.Context, param, entity string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "invalid "+entity+" ID")
		return 0, false
	}
	return id, true
}

// parseOptionalID reads an optional positive integer query parameter.
func parseOptionalID(c *gin.Context, key, entity string) (*int64, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "invalid "+entity+" ID")
		return nil, false
	}
	return &id, true
}

// parsePagination reads page and limit. Values that are not integers are
// passed on as 0 so they fail page validation like any other bad value.
func parsePagination(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(domain.DefaultPage)))
	if err != nil {
		page = 0
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(domain.DefaultPageSize)))
	if err != nil {
		limit = 0
	}
	return page, limit
}

// chain appends handler to a copy of mw.
func chain(mw []gin.HandlerFunc, handler gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(mw)+1)
	return append(append(out, mw...), handler)
}
