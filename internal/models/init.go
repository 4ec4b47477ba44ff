package models

import (
	"errors"
	"strings"

	"github.com/levpat/marketplace-blog/internal/constants"
	"github.com/levpat/marketplace-blog/internal/logger"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	defaultAdminUsername = "admin"
	defaultAdminPassword = "admin123"
	defaultAdminEmail    = "admin@localhost"
)

// InitDefaultAdmin 初始化默认管理员账号
func InitDefaultAdmin(username, password string) error {
	return EnsureDefaultAdmin(DB, username, password)
}

// EnsureDefaultAdmin 确保存在管理员账号，已有管理员时仅修正默认账号角色
func EnsureDefaultAdmin(db *gorm.DB, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		username = defaultAdminUsername
	}

	var count int64
	if err := db.Model(&User{}).Where("role = ?", constants.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	var existing User
	err := db.Where("username = ?", username).First(&existing).Error
	if err == nil {
		// 同名普通用户提升为管理员
		if err := db.Model(&existing).Update("role", constants.RoleAdmin).Error; err != nil {
			logger.Warnw("ensure_default_admin_role_failed", "username", username, "error", err)
			return err
		}
		logger.Warnw("default_admin_promoted", "username", username)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if password == "" {
		password = defaultAdminPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := User{
		FirstName:    "Admin",
		Username:     username,
		Email:        defaultAdminEmail,
		PasswordHash: string(hash),
		Role:         constants.RoleAdmin,
		IsActive:     true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	if password == defaultAdminPassword {
		logger.Warnw("default_admin_created_with_default_password", "username", username, "password", password)
		logger.Warnw("default_admin_password_change_required", "username", username)
	} else {
		logger.Warnw("default_admin_created", "username", username, "password_hidden", true)
	}
	return nil
}
