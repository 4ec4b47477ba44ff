package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/levpat/marketplace-blog/internal/cache"
	"github.com/levpat/marketplace-blog/internal/config"
	"github.com/levpat/marketplace-blog/internal/logger"
	"github.com/levpat/marketplace-blog/internal/models"
	"github.com/levpat/marketplace-blog/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidToken token 无法解析或签名错误
var ErrInvalidToken = errors.New("invalid token")

// AuthService 认证服务
type AuthService struct {
	cfg      *config.Config
	userRepo repository.UserRepository
}

// NewAuthService 创建认证服务实例
func NewAuthService(cfg *config.Config, userRepo repository.UserRepository) *AuthService {
	return &AuthService{
		cfg:      cfg,
		userRepo: userRepo,
	}
}

// HashPassword 使用 bcrypt 加密密码
func (s *AuthService) HashPassword(password string) (string, error) {
	return hashPassword(password)
}

// VerifyPassword 验证密码
func (s *AuthService) VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// ValidatePassword 校验密码是否符合策略
func (s *AuthService) ValidatePassword(password string) error {
	if s == nil || s.cfg == nil {
		return nil
	}
	return validatePassword(s.cfg.Security.PasswordPolicy, password)
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// JWTClaims JWT 声明
type JWTClaims struct {
	UserID       uint   `json:"clientID"`
	Username     string `json:"username"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// GenerateJWT 生成访问 Token
func (s *AuthService) GenerateJWT(user *models.User) (string, time.Time, error) {
	now := time.Now()
	expireMinutes := s.cfg.JWT.ExpireMinutes
	if expireMinutes <= 0 {
		expireMinutes = 20
	}
	expiresAt := now.Add(time.Duration(expireMinutes) * time.Minute)

	claims := JWTClaims{
		UserID:       user.ID,
		Username:     user.Username,
		Name:         user.FullName(),
		Email:        user.Email,
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseJWT 解析 Token，过期时返回的错误满足 errors.Is(err, jwt.ErrTokenExpired)
func (s *AuthService) ParseJWT(tokenString string) (*JWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}

// LoginResult 登录结果
type LoginResult struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

// Login 用户名密码登录
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := s.VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserDisabled
	}

	token, expiresAt, err := s.GenerateJWT(user)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	if err := cache.SetUserAuthState(ctx, cache.BuildUserAuthState(user)); err != nil {
		logger.Warnw("auth_state_cache_set_failed", "user_id", user.ID, "error", err)
	}

	return &LoginResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// Logout 使当前用户已签发的 Token 全部失效
func (s *AuthService) Logout(ctx context.Context, userID uint) error {
	if userID == 0 {
		return nil
	}
	if err := s.userRepo.BumpTokenVersion(userID); err != nil {
		return err
	}
	if err := cache.DelUserAuthState(ctx, userID); err != nil {
		logger.Warnw("auth_state_cache_del_failed", "user_id", userID, "error", err)
	}
	return nil
}

// ResolveAuthState 读取用户鉴权快照，缓存未命中时回源数据库
func (s *AuthService) ResolveAuthState(ctx context.Context, userID uint) (*cache.UserAuthState, error) {
	state, ok, err := cache.GetUserAuthState(ctx, userID)
	if err == nil && ok && state != nil {
		return state, nil
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	state = cache.BuildUserAuthState(user)
	if err := cache.SetUserAuthState(ctx, state); err != nil {
		logger.Debugw("auth_state_cache_set_failed", "user_id", userID, "error", err)
	}
	return state, nil
}
