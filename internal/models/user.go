package models

import (
	"time"
)

// User 用户表
type User struct {
	ID           uint       `gorm:"primarykey" json:"id"`                                       // 主键
	FirstName    string     `gorm:"type:varchar(100);not null;default:''" json:"first_name"`    // 名
	LastName     string     `gorm:"type:varchar(100);not null;default:''" json:"last_name"`     // 姓
	Username     string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`     // 用户名
	Email        string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`        // 邮箱
	PasswordHash string     `gorm:"not null" json:"-"`                                          // 密码哈希（不返回给前端）
	Role         string     `gorm:"type:varchar(32);not null;default:'user';index" json:"role"` // 角色（user/admin）
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`                     // 是否启用
	TokenVersion uint64     `gorm:"not null;default:0" json:"-"`                                // Token 版本（用于全量失效）
	LastLoginAt  *time.Time `json:"last_login_at"`                                              // 最后登录时间
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`                                    // 创建时间
	UpdatedAt    time.Time  `json:"updated_at"`                                                 // 更新时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// FullName 返回展示用姓名
func (u *User) FullName() string {
	if u == nil {
		return ""
	}
	if u.LastName == "" {
		return u.FirstName
	}
	if u.FirstName == "" {
		return u.LastName
	}
	return u.FirstName + " " + u.LastName
}
