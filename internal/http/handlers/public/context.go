package public

import (
	handlershared "github.com/levpat/marketplace-blog/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func getUserID(c *gin.Context) (uint, bool) {
	return handlershared.GetUserID(c)
}

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}
