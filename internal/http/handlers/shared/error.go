package shared

import (
	"github.com/levpat/marketplace-blog/internal/http/response"
	"github.com/levpat/marketplace-blog/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MsgInternal 兜底错误提示
const MsgInternal = "Internal server error"

// RequestID 读取中间件写入的请求 ID
func RequestID(c *gin.Context) string {
	if c == nil {
		return ""
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return ""
}

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if id := RequestID(c); id != "" {
		return logger.SW("request_id", id)
	}
	return logger.S()
}

// RespondError 返回错误响应，并在有原始错误时记录日志。
func RespondError(c *gin.Context, code int, msg string, err error) {
	appErr := response.WrapError(code, msg, err)
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"message", appErr.Message,
			"error", err,
		)
	}
	response.Error(c, appErr.Code, appErr.Message)
}
