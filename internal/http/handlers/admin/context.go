package admin

import (
	"strconv"
	"strings"
	"time"

	"github.com/levpat/marketplace-blog/internal/constants"

	"github.com/gin-gonic/gin"
)

func currentUserID(c *gin.Context) uint {
	value, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0
	}
	switch userID := value.(type) {
	case uint:
		return userID
	case int:
		if userID > 0 {
			return uint(userID)
		}
	case float64:
		if userID > 0 {
			return uint(userID)
		}
	}
	return 0
}

func currentUsername(c *gin.Context) string {
	value, exists := c.Get(constants.ContextKeyUsername)
	if !exists {
		return ""
	}
	if username, ok := value.(string); ok {
		return strings.TrimSpace(username)
	}
	return ""
}

func parseTimeNullable(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func parseUintQuery(c *gin.Context, key string) (uint, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(value), nil
}

func parseIDParam(c *gin.Context, key string) (uint, bool) {
	value, err := strconv.ParseUint(strings.TrimSpace(c.Param(key)), 10, 64)
	if err != nil || value == 0 {
		return 0, false
	}
	return uint(value), true
}
