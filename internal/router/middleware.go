package router

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/levpat/marketplace-blog/internal/authz"
	"github.com/levpat/marketplace-blog/internal/config"
	"github.com/levpat/marketplace-blog/internal/constants"
	handlershared "github.com/levpat/marketplace-blog/internal/http/handlers/shared"
	"github.com/levpat/marketplace-blog/internal/http/response"
	"github.com/levpat/marketplace-blog/internal/logger"
	"github.com/levpat/marketplace-blog/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDKey = "request_id"
const requestIDHeader = "X-Request-ID"

// 鉴权提示
const (
	msgTokenExpired    = "Token expired"
	msgTokenInvalid    = "Invalid JWT token"
	msgTokenRevoked    = "Token revoked"
	msgUserInactive    = "Inactive user"
	msgPermissionDeny  = "Permission denied"
	msgJWTSecretAbsent = "JWT secret is not configured"
)

// CORSMiddleware 跨域中间件
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	allowedMethods := cfg.AllowedMethods
	if len(allowedMethods) == 0 {
		allowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	allowedHeaders := cfg.AllowedHeaders
	if len(allowedHeaders) == 0 {
		allowedHeaders = []string{
			"Content-Type",
			"Content-Length",
			"Accept-Encoding",
			"Authorization",
			"Cache-Control",
			"X-Requested-With",
			"X-Request-ID",
		}
	}
	methodsHeader := strings.Join(allowedMethods, ", ")
	headersHeader := strings.Join(allowedHeaders, ", ")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowedOrigin := resolveAllowedOrigin(origin, allowedOrigins, cfg.AllowCredentials)
		if allowedOrigin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			if allowedOrigin != "*" {
				c.Writer.Header().Add("Vary", "Origin")
			}
		}
		if cfg.AllowCredentials {
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", headersHeader)
		c.Writer.Header().Set("Access-Control-Allow-Methods", methodsHeader)
		if cfg.MaxAge > 0 {
			c.Writer.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func resolveAllowedOrigin(origin string, allowedOrigins []string, allowCredentials bool) string {
	if len(allowedOrigins) == 0 {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if allowed == "*" {
			if allowCredentials && origin != "" {
				return origin
			}
			return "*"
		}
	}
	if origin == "" {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// RequestIDMiddleware 请求 ID 中间件
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware 结构化请求日志中间件
func LoggerMiddleware(log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.L()
	}
	sugar := log.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := sugar.With(
			"request_id", getRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
		if len(c.Errors) > 0 {
			fields.Errorw("request", "errors", c.Errors.String())
			return
		}
		fields.Infow("request")
	}
}

func getRequestID(c *gin.Context) string {
	value, ok := c.Get(requestIDKey)
	if !ok {
		return ""
	}
	if requestID, ok := value.(string); ok {
		return requestID
	}
	return ""
}

// JWTAuthMiddleware 用户 JWT 鉴权中间件
// Token 依次从 Authorization 头与 Cookie 读取
func JWTAuthMiddleware(secretKey, cookieName string, authService *service.AuthService) gin.HandlerFunc {
	if strings.TrimSpace(cookieName) == "" {
		cookieName = constants.AccessTokenCookie
	}
	return func(c *gin.Context) {
		if secretKey == "" || authService == nil {
			logger.Errorw("jwt_auth_unavailable", "path", c.Request.URL.Path)
			response.Abort(c, response.CodeInternal, msgJWTSecretAbsent)
			return
		}

		tokenString, ok := extractToken(c, cookieName)
		if !ok {
			response.Abort(c, response.CodeUnauthorized, handlershared.MsgNeedAuthorization)
			return
		}

		claims, err := authService.ParseJWT(tokenString)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				response.Abort(c, response.CodeUnauthorized, msgTokenExpired)
				return
			}
			response.Abort(c, response.CodeUnauthorized, msgTokenInvalid)
			return
		}
		if claims.UserID == 0 {
			response.Abort(c, response.CodeUnauthorized, msgTokenInvalid)
			return
		}

		state, err := authService.ResolveAuthState(c.Request.Context(), claims.UserID)
		if err != nil {
			handlershared.RequestLog(c).Errorw("jwt_auth_state_load_failed", "user_id", claims.UserID, "error", err)
			response.Abort(c, response.CodeInternal, handlershared.MsgInternal)
			return
		}
		if state == nil {
			response.Abort(c, response.CodeUnauthorized, msgTokenInvalid)
			return
		}
		if !state.IsActive {
			response.Abort(c, response.CodeUnauthorized, msgUserInactive)
			return
		}
		if claims.TokenVersion != state.TokenVersion {
			response.Abort(c, response.CodeUnauthorized, msgTokenRevoked)
			return
		}

		c.Set(constants.ContextKeyUserID, state.UserID)
		c.Set(constants.ContextKeyUsername, state.Username)
		c.Set(constants.ContextKeyRole, state.Role)
		c.Set(constants.ContextKeyEmail, claims.Email)
		c.Next()
	}
}

func extractToken(c *gin.Context, cookieName string) (string, bool) {
	if authHeader := strings.TrimSpace(c.GetHeader("Authorization")); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], constants.BearerPrefix) {
			if token := strings.TrimSpace(parts[1]); token != "" {
				return token, true
			}
		}
		return "", false
	}
	cookie, err := c.Cookie(cookieName)
	if err != nil {
		return "", false
	}
	cookie = strings.TrimSpace(cookie)
	return cookie, cookie != ""
}

// RBACMiddleware 基于角色的访问控制，资源取路由模板
func RBACMiddleware(authzService *authz.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authzService == nil {
			logger.Errorw("rbac_service_unavailable")
			response.Abort(c, response.CodeUnavailable, handlershared.MsgInternal)
			return
		}

		role := c.GetString(constants.ContextKeyRole)
		if strings.TrimSpace(role) == "" {
			response.Abort(c, response.CodeUnauthorized, handlershared.MsgNeedAuthorization)
			return
		}

		resource := c.FullPath()
		if strings.TrimSpace(resource) == "" {
			resource = c.Request.URL.Path
		}

		allowed, err := authzService.EnforceRole(role, resource, c.Request.Method)
		if err != nil {
			handlershared.RequestLog(c).Errorw("rbac_enforce_failed",
				"role", role,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"error", err,
			)
			response.Abort(c, response.CodeInternal, handlershared.MsgInternal)
			return
		}
		if !allowed {
			handlershared.RequestLog(c).Warnw("rbac_permission_denied",
				"user_id", c.GetUint(constants.ContextKeyUserID),
				"role", role,
				"method", c.Request.Method,
				"resource", authz.NormalizeObject(resource),
			)
			response.Abort(c, response.CodeForbidden, msgPermissionDeny)
			return
		}

		c.Next()
	}
}
