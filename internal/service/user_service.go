package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/levpat/marketplace-blog/internal/cache"
	"github.com/levpat/marketplace-blog/internal/config"
	"github.com/levpat/marketplace-blog/internal/constants"
	"github.com/levpat/marketplace-blog/internal/logger"
	"github.com/levpat/marketplace-blog/internal/models"
	"github.com/levpat/marketplace-blog/internal/queue"
	"github.com/levpat/marketplace-blog/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
)

// WelcomeEmailEnqueuer 注册欢迎邮件任务投递
type WelcomeEmailEnqueuer interface {
	EnqueueUserWelcomeEmail(ctx context.Context, payload queue.UserWelcomeEmailPayload, opts ...asynq.Option) error
}

// RegisterUserInput 注册参数
type RegisterUserInput struct {
	FirstName string `validate:"required,max=100"`
	LastName  string `validate:"max=100"`
	Username  string `validate:"required,min=3,max=100"`
	Email     string `validate:"required,email,max=255"`
	Password  string `validate:"required,max=72"`
}

type userInputError struct {
	field string
	rule  string
}

func (e userInputError) Error() string {
	switch e.rule {
	case "required":
		return fmt.Sprintf("Field %s is required", e.field)
	case "email":
		return "Invalid email address"
	case "min":
		return fmt.Sprintf("Field %s is too short", e.field)
	case "max":
		return fmt.Sprintf("Field %s is too long", e.field)
	default:
		return fmt.Sprintf("Field %s is invalid", e.field)
	}
}

func (e userInputError) Is(target error) bool {
	return target == ErrInvalidUserInput
}

// UserService 用户服务
type UserService struct {
	cfg      *config.Config
	userRepo repository.UserRepository
	queue    WelcomeEmailEnqueuer
	validate *validator.Validate
}

// NewUserService 创建用户服务
func NewUserService(cfg *config.Config, userRepo repository.UserRepository, enqueuer WelcomeEmailEnqueuer) *UserService {
	return &UserService{
		cfg:      cfg,
		userRepo: userRepo,
		queue:    enqueuer,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Register 注册新用户，成功后投递欢迎邮件
func (s *UserService) Register(ctx context.Context, input RegisterUserInput) (*models.User, error) {
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)

	if err := s.validate.Struct(input); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return nil, userInputError{field: toSnakeField(fieldErrs[0].Field()), rule: fieldErrs[0].Tag()}
		}
		return nil, err
	}
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if s.cfg != nil {
		if err := validatePassword(s.cfg.Security.PasswordPolicy, input.Password); err != nil {
			return nil, err
		}
	}

	exist, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if exist != nil {
		return nil, ErrEmailExists
	}
	exist, err = s.userRepo.GetByUsername(input.Username)
	if err != nil {
		return nil, err
	}
	if exist != nil {
		return nil, ErrUsernameExists
	}

	hashed, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	user := &models.User{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Username:     input.Username,
		Email:        email,
		PasswordHash: hashed,
		Role:         constants.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(user); err != nil {
		if field, ok := repository.UniqueViolationField(err); ok {
			if field == "email" {
				return nil, ErrEmailExists
			}
			return nil, ErrUsernameExists
		}
		return nil, err
	}

	s.enqueueWelcomeEmail(ctx, user)
	return user, nil
}

func (s *UserService) enqueueWelcomeEmail(ctx context.Context, user *models.User) {
	if s.queue == nil {
		return
	}
	err := s.queue.EnqueueUserWelcomeEmail(ctx, queue.UserWelcomeEmailPayload{
		UserID:    user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
	})
	switch {
	case err == nil:
	case errors.Is(err, queue.ErrQueueDisabled):
		logger.Warnw("user_welcome_email_skipped", "user_id", user.ID, "reason", "queue_disabled")
	default:
		logger.Warnw("user_welcome_email_enqueue_failed", "user_id", user.ID, "error", err)
	}
}

// GetByID 获取用户
func (s *UserService) GetByID(id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// ListForAdmin 管理端用户列表
func (s *UserService) ListForAdmin(filter repository.UserListFilter) ([]models.User, int64, error) {
	if err := validatePagination(filter.Page, filter.PageSize); err != nil {
		return nil, 0, err
	}
	return s.userRepo.ListAdmin(filter)
}

// SetActive 启用或停用用户，停用后已签发的 Token 立即失效
func (s *UserService) SetActive(ctx context.Context, operatorID, userID uint, active bool) (*models.User, error) {
	if operatorID != 0 && operatorID == userID {
		return nil, ErrSelfAccountChange
	}
	user, err := s.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user.IsActive == active {
		return user, nil
	}
	user.IsActive = active
	user.UpdatedAt = time.Now()
	if !active {
		user.TokenVersion++
	}
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	s.dropAuthState(ctx, user.ID)
	return user, nil
}

// SetRole 修改用户角色，role 需为已存在的角色名（不含 role: 前缀）
func (s *UserService) SetRole(ctx context.Context, operatorID, userID uint, role string) (*models.User, error) {
	role = strings.TrimSpace(role)
	if role == "" || strings.Contains(role, ":") {
		return nil, ErrInvalidRole
	}
	if operatorID != 0 && operatorID == userID {
		return nil, ErrSelfAccountChange
	}
	user, err := s.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user.Role == role {
		return user, nil
	}
	user.Role = role
	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	s.dropAuthState(ctx, user.ID)
	return user, nil
}

func (s *UserService) dropAuthState(ctx context.Context, userID uint) {
	if err := cache.DelUserAuthState(ctx, userID); err != nil {
		logger.Warnw("auth_state_cache_del_failed", "user_id", userID, "error", err)
	}
}

func normalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", ErrInvalidEmail
	}
	if _, err := mail.ParseAddress(normalized); err != nil {
		return "", ErrInvalidEmail
	}
	return normalized, nil
}

// toSnakeField FirstName -> first_name
func toSnakeField(name string) string {
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
