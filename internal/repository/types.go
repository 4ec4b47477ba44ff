package repository

import "time"

// PostListFilter 查询文章列表的过滤条件
type PostListFilter struct {
	Page        int
	PageSize    int
	CategoryIDs []uint
	Search      string
}

// ArchivedPostListFilter 查询归档文章列表的过滤条件
type ArchivedPostListFilter struct {
	Page     int
	PageSize int
}

// UserListFilter 管理端用户列表过滤条件
type UserListFilter struct {
	Page     int
	PageSize int
	Keyword  string
	Role     string
	IsActive *bool
}

// UserLoginLogListFilter 登录日志过滤条件
type UserLoginLogListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	Username    string
	Keyword     string
	Status      string
	FailReason  string
	ClientIP    string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// AuthzAuditLogListFilter 权限审计日志过滤条件
type AuthzAuditLogListFilter struct {
	Page             int
	PageSize         int
	OperatorUserID   uint
	OperatorUsername string
	TargetUserID     uint
	Action           string
	Role             string
	Object           string
	Method           string
	CreatedFrom      *time.Time
	CreatedTo        *time.Time
}
