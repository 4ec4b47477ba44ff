package repository

import (
	"strings"

	"github.com/levpat/marketplace-blog/internal/models"

	"gorm.io/gorm"
)

// UserLoginLogRepository 登录记录数据访问接口
type UserLoginLogRepository interface {
	Create(log *models.UserLoginLog) error
	ListAdmin(filter UserLoginLogListFilter) ([]models.UserLoginLog, int64, error)
	ListByUser(userID uint, page, pageSize int) ([]models.UserLoginLog, int64, error)
}

// GormUserLoginLogRepository GORM 实现
type GormUserLoginLogRepository struct {
	db *gorm.DB
}

// NewUserLoginLogRepository 创建登录记录仓库
func NewUserLoginLogRepository(db *gorm.DB) *GormUserLoginLogRepository {
	return &GormUserLoginLogRepository{db: db}
}

// Create 写入一次登录尝试
func (r *GormUserLoginLogRepository) Create(log *models.UserLoginLog) error {
	if log == nil {
		return nil
	}
	return r.db.Create(log).Error
}

// ListAdmin 管理端检索登录记录
// username 忽略大小写精确匹配；keyword 模糊匹配用户名、IP 与 User-Agent；client_ip 按前缀匹配（可查网段）。
func (r *GormUserLoginLogRepository) ListAdmin(filter UserLoginLogListFilter) ([]models.UserLoginLog, int64, error) {
	query := r.db.Model(&models.UserLoginLog{}).Scopes(createdBetween(filter.CreatedFrom, filter.CreatedTo))
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if username := strings.ToLower(strings.TrimSpace(filter.Username)); username != "" {
		query = query.Where("LOWER(username) = ?", username)
	}
	if keyword := strings.ToLower(strings.TrimSpace(filter.Keyword)); keyword != "" {
		like := "%" + escapeLike(keyword) + "%"
		query = query.Where(
			`LOWER(username) LIKE ? ESCAPE '\' OR client_ip LIKE ? ESCAPE '\' OR LOWER(user_agent) LIKE ? ESCAPE '\'`,
			like, like, like,
		)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.FailReason != "" {
		query = query.Where("fail_reason = ?", filter.FailReason)
	}
	if ip := strings.TrimSpace(filter.ClientIP); ip != "" {
		query = query.Where(`client_ip LIKE ? ESCAPE '\'`, escapeLike(ip)+"%")
	}
	return r.list(query, filter.Page, filter.PageSize)
}

// ListByUser 当前用户查看自己的登录记录
func (r *GormUserLoginLogRepository) ListByUser(userID uint, page, pageSize int) ([]models.UserLoginLog, int64, error) {
	return r.list(r.db.Model(&models.UserLoginLog{}).Where("user_id = ?", userID), page, pageSize)
}

func (r *GormUserLoginLogRepository) list(query *gorm.DB, page, pageSize int) ([]models.UserLoginLog, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	logs := make([]models.UserLoginLog, 0)
	if total == 0 {
		return logs, 0, nil
	}
	if err := applyPagination(query, page, pageSize).Scopes(newestFirst).Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
