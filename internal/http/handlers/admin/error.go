package admin

import (
	"errors"

	"github.com/levpat/marketplace-blog/internal/authz"
	handlershared "github.com/levpat/marketplace-blog/internal/http/handlers/shared"
	"github.com/levpat/marketplace-blog/internal/http/response"
	"github.com/levpat/marketplace-blog/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

// 管理端提示
const (
	msgInvalidQuery  = "Invalid query parameters"
	msgInvalidUserID = "Invalid user id"
	msgUserNotFound  = "User not found"
	msgInvalidRole   = "Role does not exist"
	msgSelfChange    = "You cannot change your own account"
)

// respondListError 列表查询错误：分页非法返回 400
func respondListError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrInvalidPagination) {
		respondError(c, response.CodeBadRequest, handlershared.MsgInvalidPagination, nil)
		return
	}
	respondError(c, response.CodeInternal, handlershared.MsgInternal, err)
}

// respondUserError 用户管理错误
func respondUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		respondError(c, response.CodeNotFound, msgUserNotFound, nil)
	case errors.Is(err, service.ErrSelfAccountChange):
		respondError(c, response.CodeBadRequest, msgSelfChange, nil)
	case errors.Is(err, service.ErrInvalidRole):
		respondError(c, response.CodeBadRequest, msgInvalidRole, nil)
	default:
		respondError(c, response.CodeInternal, handlershared.MsgInternal, err)
	}
}

// respondAuthzError 授权管理错误：参数类错误返回 400，其余 500
func respondAuthzError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, authz.ErrRoleRequired),
		errors.Is(err, authz.ErrActionRequired),
		errors.Is(err, authz.ErrReservedRole),
		errors.Is(err, authz.ErrBuiltinRole):
		respondError(c, response.CodeBadRequest, err.Error(), nil)
	case errors.Is(err, authz.ErrUnavailable):
		respondError(c, response.CodeUnavailable, handlershared.MsgInternal, err)
	default:
		respondError(c, response.CodeInternal, handlershared.MsgInternal, err)
	}
}
