package shared

import (
	"github.com/levpat/marketplace-blog/internal/constants"
	"github.com/levpat/marketplace-blog/internal/http/response"

	"github.com/gin-gonic/gin"
)

// MsgNeedAuthorization 未登录提示
const MsgNeedAuthorization = "Need authorization"

// GetUserID 从上下文读取当前用户 ID，缺失时直接返回 401。
func GetUserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		RespondError(c, response.CodeUnauthorized, MsgNeedAuthorization, nil)
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		if v == 0 {
			return 0, respondInvalidUser(c)
		}
		return v, true
	case int:
		if v <= 0 {
			return 0, respondInvalidUser(c)
		}
		return uint(v), true
	case float64:
		if v <= 0 {
			return 0, respondInvalidUser(c)
		}
		return uint(v), true
	default:
		RespondError(c, response.CodeInternal, MsgInternal, nil)
		return 0, false
	}
}

func respondInvalidUser(c *gin.Context) bool {
	RespondError(c, response.CodeUnauthorized, MsgNeedAuthorization, nil)
	return false
}
