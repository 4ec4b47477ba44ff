package admin

import (
	"strings"

	"github.com/levpat/marketplace-blog/internal/authz"
	handlershared "github.com/levpat/marketplace-blog/internal/http/handlers/shared"
	"github.com/levpat/marketplace-blog/internal/http/response"
	"github.com/levpat/marketplace-blog/internal/repository"
	"github.com/levpat/marketplace-blog/internal/service"

	"github.com/gin-gonic/gin"
)

// ListAuthzAuditLogs 获取权限审计日志列表
func (h *Handler) ListAuthzAuditLogs(c *gin.Context) {
	page, pageSize, ok := handlershared.ParsePagination(c)
	if !ok {
		respondError(c, response.CodeBadRequest, handlershared.MsgInvalidPagination, nil)
		return
	}

	operatorUserID, err := parseUintQuery(c, "operator_user_id")
	if err != nil {
		respondError(c, response.CodeBadRequest, msgInvalidQuery, nil)
		return
	}
	targetUserID, err := parseUintQuery(c, "target_user_id")
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

	// 审计记录中的角色均为 role:xxx 形式，查询时允许省略前缀
	role := ""
	if raw := strings.TrimSpace(c.Query("role")); raw != "" {
		role = authz.SubjectForRole(raw)
	}

	items, total, err := h.AuditService.ListForAdmin(repository.AuthzAuditLogListFilter{
		Page:             page,
		PageSize:         pageSize,
		OperatorUserID:   operatorUserID,
		OperatorUsername: strings.TrimSpace(c.Query("operator_username")),
		TargetUserID:     targetUserID,
		Action:           strings.TrimSpace(c.Query("action")),
		Role:             role,
		Object:           strings.TrimSpace(c.Query("object")),
		Method:           strings.ToUpper(strings.TrimSpace(c.Query("method"))),
		CreatedFrom:      createdFrom,
		CreatedTo:        createdTo,
	})
	if err != nil {
		respondListError(c, err)
		return
	}
	response.SuccessWithPage(c, items, response.BuildPagination(page, pageSize, total))
}

// recordAuthzAudit 记录权限变更，失败只记日志
func (h *Handler) recordAuthzAudit(c *gin.Context, input service.AuthzAuditRecordInput) {
	input.OperatorUserID = currentUserID(c)
	input.OperatorUsername = currentUsername(c)
	input.RequestID = handlershared.RequestID(c)
	if err := h.AuditService.Record(input); err != nil {
		requestLog(c).Warnw("admin_authz_audit_record_failed",
			"action", input.Action,
			"role", input.Role,
			"error", err,
		)
	}
}
