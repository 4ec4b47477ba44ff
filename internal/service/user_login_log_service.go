package service

import (
	"errors"
	"strings"
	"time"

	"github.com/levpat/marketplace-blog/internal/constants"
	"github.com/levpat/marketplace-blog/internal/models"
	"github.com/levpat/marketplace-blog/internal/repository"
)

// UserLoginLogService 用户登录日志服务
type UserLoginLogService struct {
	repo repository.UserLoginLogRepository
}

// NewUserLoginLogService 创建用户登录日志服务
func NewUserLoginLogService(repo repository.UserLoginLogRepository) *UserLoginLogService {
	return &UserLoginLogService{repo: repo}
}

// RecordUserLoginInput 登录日志记录输入
type RecordUserLoginInput struct {
	UserID     uint
	Username   string
	Status     string
	FailReason string
	ClientIP   string
	UserAgent  string
	RequestID  string
}

// Record 记录登录行为
func (s *UserLoginLogService) Record(input RecordUserLoginInput) error {
	if s == nil || s.repo == nil {
		return nil
	}

	status := strings.ToLower(strings.TrimSpace(input.Status))
	if status != constants.LoginLogStatusSuccess {
		status = constants.LoginLogStatusFailed
	}

	failReason := strings.ToLower(strings.TrimSpace(input.FailReason))
	if status == constants.LoginLogStatusSuccess {
		failReason = ""
	} else if failReason == "" {
		failReason = constants.LoginLogFailReasonInternalError
	}

	username := strings.TrimSpace(input.Username)
	if len(username) > 100 {
		username = username[:100]
	}

	return s.repo.Create(&models.UserLoginLog{
		UserID:     input.UserID,
		Username:   username,
		Status:     status,
		FailReason: failReason,
		ClientIP:   strings.TrimSpace(input.ClientIP),
		UserAgent:  strings.TrimSpace(input.UserAgent),
		RequestID:  strings.TrimSpace(input.RequestID),
		CreatedAt:  time.Now(),
	})
}

// ListForAdmin 管理端查询登录日志
func (s *UserLoginLogService) ListForAdmin(filter repository.UserLoginLogListFilter) ([]models.UserLoginLog, int64, error) {
	if s == nil || s.repo == nil {
		return []models.UserLoginLog{}, 0, nil
	}
	if err := validatePagination(filter.Page, filter.PageSize); err != nil {
		return nil, 0, err
	}
	return s.repo.ListAdmin(filter)
}

// ListByUser 用户侧查询自己的登录日志
func (s *UserLoginLogService) ListByUser(userID uint, page, pageSize int) ([]models.UserLoginLog, int64, error) {
	if s == nil || s.repo == nil || userID == 0 {
		return []models.UserLoginLog{}, 0, nil
	}
	if err := validatePagination(page, pageSize); err != nil {
		return nil, 0, err
	}
	return s.repo.ListByUser(userID, page, pageSize)
}

// LoginFailReason 登录错误映射为日志失败原因
func LoginFailReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidCredentials):
		return constants.LoginLogFailReasonInvalidCredentials
	case errors.Is(err, ErrUserDisabled):
		return constants.LoginLogFailReasonUserDisabled
	default:
		return constants.LoginLogFailReasonInternalError
	}
}
