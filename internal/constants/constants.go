package constants

import "math"

// 用户角色常量
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// 鉴权相关常量
const (
	AccessTokenCookie = "access_token"
	BearerPrefix      = "Bearer"
)

// 上下文键
const (
	ContextKeyUserID   = "user_id"
	ContextKeyUsername = "username"
	ContextKeyRole     = "role"
	ContextKeyEmail    = "user_email"
)

// 队列与任务常量
const (
	QueueDefault          = "default"
	QueueCritical         = "critical"
	TaskUserWelcomeEmail  = "user:welcome_email"
	DefaultTaskMaxRetry   = 5
	DefaultTaskTimeoutSec = 30
)

// 文章检索常量
const (
	DefaultPage       = 1
	DefaultPageSize   = 10
	MaxPageSize       = 100
	CategorySeparator = ","
	// MaxPage 保证 (page-1)*page_size 不溢出 int32
	MaxPage = math.MaxInt32 / MaxPageSize
)

// 上传场景
const (
	UploadScenePost = "posts"
)

// 登录日志常量
const (
	LoginLogStatusSuccess = "success"
	LoginLogStatusFailed  = "failed"

	LoginLogFailReasonInvalidCredentials = "invalid_credentials"
	LoginLogFailReasonUserDisabled       = "user_disabled"
	LoginLogFailReasonInternalError      = "internal_error"
)

// 权限审计动作
const (
	AuthzAuditActionRoleCreate   = "role_create"
	AuthzAuditActionRoleDelete   = "role_delete"
	AuthzAuditActionPolicyGrant  = "policy_grant"
	AuthzAuditActionPolicyRevoke = "policy_revoke"
	AuthzAuditActionUserRole     = "user_role_set"
)
