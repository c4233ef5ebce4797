package httpx

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"videofield/internal/pkg/response"
)

// MustUserID returns the authenticated user id or writes 401 and returns 0.
func MustUserID(c *gin.Context) int64 {
	id := c.GetInt64("user_id")
	if id <= 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return 0
	}
	return id
}

// ParseIDParam parses a positive int64 path parameter or writes 400.
func ParseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "invalid "+name)
		return 0, false
	}
	return id, true
}
