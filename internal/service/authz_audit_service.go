package service

import (
	"strings"
	"time"

	"github.com/levpat/marketplace-blog/internal/models"
	"github.com/levpat/marketplace-blog/internal/repository"
)

// AuthzAuditRecordInput 权限审计记录输入
type AuthzAuditRecordInput struct {
	OperatorUserID   uint
	OperatorUsername string
	TargetUserID     *uint
	Action           string
	Role             string
	Object           string
	Method           string
	RequestID        string
}

// AuthzAuditService 权限审计服务
type AuthzAuditService struct {
	repo repository.AuthzAuditLogRepository
}

// NewAuthzAuditService 创建权限审计服务
func NewAuthzAuditService(repo repository.AuthzAuditLogRepository) *AuthzAuditService {
	return &AuthzAuditService{repo: repo}
}

// Record 记录权限审计日志
func (s *AuthzAuditService) Record(input AuthzAuditRecordInput) error {
	if s == nil || s.repo == nil {
		return nil
	}
	if input.OperatorUserID == 0 || strings.TrimSpace(input.Action) == "" {
		return nil
	}

	return s.repo.Create(&models.AuthzAuditLog{
		OperatorUserID:   input.OperatorUserID,
		OperatorUsername: strings.TrimSpace(input.OperatorUsername),
		TargetUserID:     input.TargetUserID,
		Action:           strings.TrimSpace(input.Action),
		Role:             strings.TrimSpace(input.Role),
		Object:           strings.TrimSpace(input.Object),
		Method:           strings.ToUpper(strings.TrimSpace(input.Method)),
		RequestID:        strings.TrimSpace(input.RequestID),
		CreatedAt:        time.Now(),
	})
}

// ListForAdmin 管理端查询权限审计日志
func (s *AuthzAuditService) ListForAdmin(filter repository.AuthzAuditLogListFilter) ([]models.AuthzAuditLog, int64, error) {
	if s == nil || s.repo == nil {
		return []models.AuthzAuditLog{}, 0, nil
	}
	if err := validatePagination(filter.Page, filter.PageSize); err != nil {
		return nil, 0, err
	}
	return s.repo.ListAdmin(filter)
}
