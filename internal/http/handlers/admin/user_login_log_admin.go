package admin

import (
	"strings"

	handlershared "github.com/levpat/marketplace-blog/internal/http/handlers/shared"
	"github.com/levpat/marketplace-blog/internal/http/response"
	"github.com/levpat/marketplace-blog/internal/models"
	"github.com/levpat/marketplace-blog/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetUserLoginLogs 获取用户登录日志
func (h *Handler) GetUserLoginLogs(c *gin.Context) {
	page, pageSize, ok := handlershared.ParsePagination(c)
	if !ok {
		respondError(c, response.CodeBadRequest, handlershared.MsgInvalidPagination, nil)
		return
	}

	userID, err := parseUintQuery(c, "user_id")
	if err != nil {
		respondError(c, response.CodeBadRequest, msgInvalidQuery, nil)
		return
	}
	createdFrom, err := parseTimeNullable(strings.TrimSpace(c.Query("created_from")))
	if err != nil {
		respondError(c, response.CodeBadRequest, msgInvalidQuery, nil)
		return
	}
	createdTo, err := parseTimeNullable(strings.TrimSpace(c.Query("created_to")))
	if err != nil {
		respondError(c, response.CodeBadRequest, msgInvalidQuery, nil)
		return
	}

	logs, total, err := h.LoginLogService.ListForAdmin(repository.UserLoginLogListFilter{
		Page:        page,
		PageSize:    pageSize,
		UserID:      userID,
		Username:    strings.TrimSpace(c.Query("username")),
		Keyword:     strings.TrimSpace(c.Query("keyword")),
		Status:      strings.ToLower(strings.TrimSpace(c.Query("status"))),
		FailReason:  strings.ToLower(strings.TrimSpace(c.Query("fail_reason"))),
		ClientIP:    strings.TrimSpace(c.Query("client_ip")),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		respondListError(c, err)
		return
	}
	if logs == nil {
		logs = []models.UserLoginLog{}
	}
	response.SuccessWithPage(c, logs, response.BuildPagination(page, pageSize, total))
}
