package models

import "time"

// AuthzAuditLog 权限策略审计日志
// 说明：记录后台权限相关的变更操作，支持按操作人与时间范围检索。
type AuthzAuditLog struct {
	ID               uint      `gorm:"primarykey" json:"id"`
	OperatorUserID   uint      `gorm:"index;not null" json:"operator_user_id"`
	OperatorUsername string    `gorm:"type:varchar(100);index;not null;default:''" json:"operator_username"`
	TargetUserID     *uint     `gorm:"index" json:"target_user_id,omitempty"`
	Action           string    `gorm:"type:varchar(100);index;not null" json:"action"`
	Role             string    `gorm:"type:varchar(120);index;not null;default:''" json:"role"`
	Object           string    `gorm:"type:varchar(255);index;not null;default:''" json:"object"`
	Method           string    `gorm:"type:varchar(20);index;not null;default:''" json:"method"`
	RequestID        string    `gorm:"type:varchar(64);index;not null;default:''" json:"request_id"`
	CreatedAt        time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (AuthzAuditLog) TableName() string {
	return "authz_audit_logs"
}
