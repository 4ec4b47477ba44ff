package admin

import (
	"strconv"
	"strings"

	"github.com/levpat/marketplace-blog/internal/authz"
	"github.com/levpat/marketplace-blog/internal/constants"
	handlershared "github.com/levpat/marketplace-blog/internal/http/handlers/shared"
	"github.com/levpat/marketplace-blog/internal/http/response"
	"github.com/levpat/marketplace-blog/internal/models"
	"github.com/levpat/marketplace-blog/internal/repository"
	"github.com/levpat/marketplace-blog/internal/service"

	"github.com/gin-gonic/gin"
)

// UpdateUserStatusRequest 启用/停用用户请求
type UpdateUserStatusRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// UpdateUserRoleRequest 修改用户角色请求
type UpdateUserRoleRequest struct {
	Role string `json:"role" binding:"required,notblank"`
}

// GetAdminUsers 获取用户列表
func (h *Handler) GetAdminUsers(c *gin.Context) {
	page, pageSize, ok := handlershared.ParsePagination(c)
	if !ok {
		respondError(c, response.CodeBadRequest, handlershared.MsgInvalidPagination, nil)
		return
	}

	filter := repository.UserListFilter{
		Page:     page,
		PageSize: pageSize,
		Keyword:  strings.TrimSpace(c.Query("keyword")),
		Role:     strings.TrimSpace(c.Query("role")),
	}
	if raw := strings.TrimSpace(c.Query("is_active")); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, msgInvalidQuery, nil)
			return
		}
		filter.IsActive = &active
	}

	users, total, err := h.UserService.ListForAdmin(filter)
	if err != nil {
		respondListError(c, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	response.SuccessWithPage(c, users, response.BuildPagination(page, pageSize, total))
}

// UpdateUserStatus 启用或停用用户
func (h *Handler) UpdateUserStatus(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, msgInvalidUserID, nil)
		return
	}
	var req UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, handlershared.BindingErrorMessage(err), nil)
		return
	}

	user, err := h.UserService.SetActive(c.Request.Context(), currentUserID(c), userID, *req.IsActive)
	if err != nil {
		respondUserError(c, err)
		return
	}
	requestLog(c).Infow("admin_user_status_updated",
		"operator_user_id", currentUserID(c),
		"target_user_id", user.ID,
		"is_active", user.IsActive,
	)
	response.Detail(c, response.CodeOK, "User updated", user)
}

// UpdateUserRole 修改用户角色
func (h *Handler) UpdateUserRole(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, msgInvalidUserID, nil)
		return
	}
	var req UpdateUserRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, handlershared.BindingErrorMessage(err), nil)
		return
	}

	exists, err := h.AuthzService.HasRole(req.Role)
	if err != nil {
		respondAuthzError(c, err)
		return
	}
	if !exists {
		respondError(c, response.CodeBadRequest, msgInvalidRole, nil)
		return
	}
	subject := authz.SubjectForRole(req.Role)

	user, err := h.UserService.SetRole(c.Request.Context(), currentUserID(c), userID, authz.RoleName(subject))
	if err != nil {
		respondUserError(c, err)
		return
	}
	h.recordAuthzAudit(c, service.AuthzAuditRecordInput{
		TargetUserID: &user.ID,
		Action:       constants.AuthzAuditActionUserRole,
		Role:         subject,
	})
	response.Detail(c, response.CodeOK, "User updated", user)
}
