package repository

import (
	"errors"
	"strings"

	"github.com/levpat/marketplace-blog/internal/models"

	"gorm.io/gorm"
)

// UserRepository 用户数据访问接口
type UserRepository interface {
	GetByEmail(email string) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	GetByID(id uint) (*models.User, error)
	Create(user *models.User) error
	Update(user *models.User) error
	BumpTokenVersion(id uint) error
	ListAdmin(filter UserListFilter) ([]models.User, int64, error)
}

// GormUserRepository GORM 实现
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓库
func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// GetByEmail 根据邮箱获取用户
func (r *GormUserRepository) GetByEmail(email string) (*models.User, error) {
	return r.first("email = ?", email)
}

// GetByUsername 根据用户名获取用户
func (r *GormUserRepository) GetByUsername(username string) (*models.User, error) {
	return r.first("username = ?", username)
}

// GetByID 根据 ID 获取用户
func (r *GormUserRepository) GetByID(id uint) (*models.User, error) {
	return r.first("id = ?", id)
}

func (r *GormUserRepository) first(condition string, value interface{}) (*models.User, error) {
	var user models.User
	if err := r.db.Where(condition, value).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Create 创建用户
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// Update 更新用户
func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// BumpTokenVersion Token 版本加一，使已签发的 Token 全部失效
func (r *GormUserRepository) BumpTokenVersion(id uint) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).
		Update("token_version", gorm.Expr("token_version + 1")).Error
}

// ListAdmin 管理端用户列表
func (r *GormUserRepository) ListAdmin(filter UserListFilter) ([]models.User, int64, error) {
	query := r.db.Model(&models.User{})
	if keyword := strings.ToLower(strings.TrimSpace(filter.Keyword)); keyword != "" {
		like := "%" + keyword + "%"
		query = query.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?",
			like, like, like, like)
	}
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	if err := applyPagination(query, filter.Page, filter.PageSize).Order("id asc").Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}
