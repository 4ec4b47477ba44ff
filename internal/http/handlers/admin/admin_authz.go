package admin

import (
	"net/url"
	"strings"

	"github.com/levpat/marketplace-blog/internal/authz"
	"github.com/levpat/marketplace-blog/internal/constants"
	"github.com/levpat/marketplace-blog/internal/http/response"
	"github.com/levpat/marketplace-blog/internal/service"

	"github.com/gin-gonic/gin"
)

type authzRolePayload struct {
	Role string `json:"role" binding:"required,notblank"`
}

type authzPolicyPayload struct {
	Role   string `json:"role" binding:"required,notblank"`
	Object string `json:"object" binding:"required,notblank"`
	Action string `json:"action" binding:"required,notblank"`
}

// ListAuthzRoles 获取角色列表
func (h *Handler) ListAuthzRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondAuthzError(c, err)
		return
	}
	response.Data(c, response.CodeOK, roles)
}

// CreateAuthzRole 创建角色
func (h *Handler) CreateAuthzRole(c *gin.Context) {
	var req authzRolePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, authz.ErrRoleRequired.Error(), nil)
		return
	}

	role, err := h.AuthzService.EnsureRole(req.Role)
	if err != nil {
		respondAuthzError(c, err)
		return
	}
	requestLog(c).Infow("admin_authz_role_created",
		"operator_user_id", currentUserID(c),
		"operator_username", currentUsername(c),
		"role", role,
	)
	h.recordAuthzAudit(c, service.AuthzAuditRecordInput{Action: constants.AuthzAuditActionRoleCreate, Role: role})
	response.Detail(c, response.CodeCreated, "Role created", gin.H{"role": role})
}

// DeleteAuthzRole 删除角色
func (h *Handler) DeleteAuthzRole(c *gin.Context) {
	role := decodeRoleParam(c.Param("role"))
	if err := h.AuthzService.DeleteRole(role); err != nil {
		respondAuthzError(c, err)
		return
	}
	requestLog(c).Infow("admin_authz_role_deleted",
		"operator_user_id", currentUserID(c),
		"role", role,
	)
	h.recordAuthzAudit(c, service.AuthzAuditRecordInput{Action: constants.AuthzAuditActionRoleDelete, Role: authz.SubjectForRole(role)})
	response.Detail(c, response.CodeOK, "Role deleted", nil)
}

// GetAuthzRolePolicies 获取角色策略
func (h *Handler) GetAuthzRolePolicies(c *gin.Context) {
	policies, err := h.AuthzService.GetRolePolicies(decodeRoleParam(c.Param("role")))
	if err != nil {
		respondAuthzError(c, err)
		return
	}
	response.Data(c, response.CodeOK, policies)
}

// GrantAuthzPolicy 授予角色策略
func (h *Handler) GrantAuthzPolicy(c *gin.Context) {
	var req authzPolicyPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "role, object and action are required", nil)
		return
	}
	if err := h.AuthzService.GrantRolePolicy(req.Role, req.Object, req.Action); err != nil {
		respondAuthzError(c, err)
		return
	}
	requestLog(c).Infow("admin_authz_policy_granted",
		"operator_user_id", currentUserID(c),
		"role", req.Role,
		"object", req.Object,
		"action", req.Action,
	)
	h.recordAuthzAudit(c, service.AuthzAuditRecordInput{
		Action: constants.AuthzAuditActionPolicyGrant,
		Role:   authz.SubjectForRole(req.Role),
		Object: authz.NormalizeObject(req.Object),
		Method: authz.NormalizeAction(req.Action),
	})
	response.Detail(c, response.CodeOK, "Policy granted", nil)
}

// RevokeAuthzPolicy 撤销角色策略
func (h *Handler) RevokeAuthzPolicy(c *gin.Context) {
	var req authzPolicyPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "role, object and action are required", nil)
		return
	}
	if err := h.AuthzService.RevokeRolePolicy(req.Role, req.Object, req.Action); err != nil {
		respondAuthzError(c, err)
		return
	}
	requestLog(c).Infow("admin_authz_policy_revoked",
		"operator_user_id", currentUserID(c),
		"role", req.Role,
		"object", req.Object,
		"action", req.Action,
	)
	h.recordAuthzAudit(c, service.AuthzAuditRecordInput{
		Action: constants.AuthzAuditActionPolicyRevoke,
		Role:   authz.SubjectForRole(req.Role),
		Object: authz.NormalizeObject(req.Object),
		Method: authz.NormalizeAction(req.Action),
	})
	response.Detail(c, response.CodeOK, "Policy revoked", nil)
}

func decodeRoleParam(value string) string {
	decoded, err := url.QueryUnescape(value)
	if err != nil {
		return strings.TrimSpace(value)
	}
	return strings.TrimSpace(decoded)
}
