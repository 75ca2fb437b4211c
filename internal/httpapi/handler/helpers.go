package handler

import (
	"strconv"

	"github.com/Rengoky/Base-for-films/internal/httpapi/middleware"

	"github.com/gin-gonic/gin"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// parseLimitOffset reads limit/offset query parameters with defaults and caps.
func parseLimitOffset(c *gin.Context) (limit, offset int) {
	limit = defaultLimit
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= maxLimit {
			limit = parsed
		}
	}
	if o := c.Query("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return limit, offset
}

// identity returns the authenticated caller set by the auth middleware.
func identity(c *gin.Context) (userID, role string, ok bool) {
	idVal, exists := c.Get(middleware.CtxUserID)
	if !exists {
		return "", "", false
	}
	userID, ok = idVal.(string)
	if roleVal, exists := c.Get(middleware.CtxRole); exists {
		role, _ = roleVal.(string)
	}
	return userID, role, ok
}

func listResponse(data any, limit, offset int, total int64) gin.H {
	return gin.H{
		"data": data,
		"pagination": gin.H{
			"limit":  limit,
			"offset": offset,
			"total":  total,
		},
	}
}
