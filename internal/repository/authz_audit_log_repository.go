package repository

import (
	"strings"

	"github.com/levpat/marketplace-blog/internal/models"

	"gorm.io/gorm"
)

// AuthzAuditLogRepository 权限变更审计数据访问接口
type AuthzAuditLogRepository interface {
	Create(log *models.AuthzAuditLog) error
	ListAdmin(filter AuthzAuditLogListFilter) ([]models.AuthzAuditLog, int64, error)
}

// GormAuthzAuditLogRepository GORM 实现
type GormAuthzAuditLogRepository struct {
	db *gorm.DB
}

// NewAuthzAuditLogRepository 创建审计仓库
func NewAuthzAuditLogRepository(db *gorm.DB) *GormAuthzAuditLogRepository {
	return &GormAuthzAuditLogRepository{db: db}
}

// Create 追加一条审计记录，写入后不再修改
func (r *GormAuthzAuditLogRepository) Create(log *models.AuthzAuditLog) error {
	if log == nil {
		return nil
	}
	return r.db.Create(log).Error
}

// ListAdmin 管理端检索审计记录
// object 按路由前缀匹配，例如 /admin/posts 可命中 /admin/posts/archived；operator_username 忽略大小写。
func (r *GormAuthzAuditLogRepository) ListAdmin(filter AuthzAuditLogListFilter) ([]models.AuthzAuditLog, int64, error) {
	query := r.db.Model(&models.AuthzAuditLog{}).Scopes(createdBetween(filter.CreatedFrom, filter.CreatedTo))
	if filter.OperatorUserID != 0 {
		query = query.Where("operator_user_id = ?", filter.OperatorUserID)
	}
	if operator := strings.ToLower(strings.TrimSpace(filter.OperatorUsername)); operator != "" {
		query = query.Where("LOWER(operator_username) = ?", operator)
	}
	if filter.TargetUserID != 0 {
		query = query.Where("target_user_id = ?", filter.TargetUserID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if object := strings.TrimSpace(filter.Object); object != "" {
		query = query.Where(`object LIKE ? ESCAPE '\'`, escapeLike(object)+"%")
	}
	if filter.Method != "" {
		query = query.Where("method = ?", filter.Method)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	logs := make([]models.AuthzAuditLog, 0)
	if total == 0 {
		return logs, 0, nil
	}
	if err := applyPagination(query, filter.Page, filter.PageSize).Scopes(newestFirst).Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
