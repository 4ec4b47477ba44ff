package shared

import (
	"strconv"
	"strings"

	"github.com/levpat/marketplace-blog/internal/constants"

	"github.com/gin-gonic/gin"
)

// MsgInvalidPagination 分页参数错误提示
const MsgInvalidPagination = "page must be >= 1 and page_size must be between 1 and 100"

// ParsePagination 读取 page / page_size 查询参数，缺省时使用默认值，非数字返回 false。
// 取值范围由业务层校验。
func ParsePagination(c *gin.Context) (int, int, bool) {
	page, ok := queryInt(c, "page", constants.DefaultPage)
	if !ok {
		return 0, 0, false
	}
	pageSize, ok := queryInt(c, "page_size", constants.DefaultPageSize)
	if !ok {
		return 0, 0, false
	}
	return page, pageSize, true
}

func queryInt(c *gin.Context, key string, fallback int) (int, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return value, true
}
