package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/levpat/marketplace-blog/internal/cache"
	"github.com/levpat/marketplace-blog/internal/config"
	adminhandlers "github.com/levpat/marketplace-blog/internal/http/handlers/admin"
	publichandlers "github.com/levpat/marketplace-blog/internal/http/handlers/public"
	handlershared "github.com/levpat/marketplace-blog/internal/http/handlers/shared"
	"github.com/levpat/marketplace-blog/internal/http/response"
	"github.com/levpat/marketplace-blog/internal/logger"
	"github.com/levpat/marketplace-blog/internal/provider"

	"github.com/gin-gonic/gin"
)

const msgLoginTooMany = "Too many login attempts, retry in %d seconds"

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	handlershared.RegisterValidators()
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "blog"
	}
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		Message:       msgLoginTooMany,
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// 公开接口
	r.POST("/auth/login", RateLimitMiddleware(cache.Client(), loginRule, KeyByIPAndJSONField("username")), publicHandler.Login)
	r.POST("/users/", publicHandler.RegisterUser)

	// 需鉴权接口
	authorized := r.Group("")
	authorized.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, cfg.JWT.CookieName, c.AuthService), RBACMiddleware(c.AuthzService))
	{
		authorized.GET("/users/me", publicHandler.GetCurrentUser)
		authorized.GET("/users/me/login-logs", publicHandler.GetMyLoginLogs)
		authorized.POST("/auth/logout", publicHandler.Logout)

		// 文章
		authorized.GET("/posts/", publicHandler.ListPosts)
		authorized.POST("/posts/", publicHandler.CreatePost)
		authorized.PUT("/posts/", publicHandler.UpdatePost)
		authorized.DELETE("/posts/", publicHandler.DeletePost)

		// 分类
		authorized.GET("/categories/", publicHandler.ListCategories)
		authorized.POST("/categories/create", publicHandler.CreateCategory)

		// 管理员接口
		admin := authorized.Group("/admin")
		{
			admin.GET("/posts/archived", adminHandler.ListArchivedPosts)

			// 用户管理
			admin.GET("/users", adminHandler.GetAdminUsers)
			admin.PUT("/users/:id/status", adminHandler.UpdateUserStatus)
			admin.PUT("/users/:id/role", adminHandler.UpdateUserRole)
			admin.GET("/login-logs", adminHandler.GetUserLoginLogs)

			// 权限管理
			admin.GET("/authz/roles", adminHandler.ListAuthzRoles)
			admin.POST("/authz/roles", adminHandler.CreateAuthzRole)
			admin.DELETE("/authz/roles/:role", adminHandler.DeleteAuthzRole)
			admin.GET("/authz/roles/:role/policies", adminHandler.GetAuthzRolePolicies)
			admin.POST("/authz/policies", adminHandler.GrantAuthzPolicy)
			admin.DELETE("/authz/policies", adminHandler.RevokeAuthzPolicy)
			admin.GET("/authz/audit-logs", adminHandler.ListAuthzAuditLogs)
			admin.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
				response.Data(ctx, response.CodeOK, buildPermissionCatalog(r))
			})
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

// 无需鉴权的路由不进入权限目录
var publicRoutes = map[string]struct{}{
	"POST:/auth/login": {},
	"POST:/users/":     {},
	"GET:/health":      {},
}

type permissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

func buildPermissionCatalog(engine *gin.Engine) []permissionCatalogItem {
	if engine == nil {
		return []permissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]permissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		permission := method + ":" + item.Path
		if _, skip := publicRoutes[permission]; skip {
			continue
		}
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, permissionCatalogItem{
			Module:     derivePermissionModule(item.Path),
			Method:     method,
			Object:     item.Path,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func derivePermissionModule(object string) string {
	normalized := strings.Trim(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if segments[0] != "admin" || len(segments) == 1 {
		return segments[0]
	}
	return "admin." + segments[1]
}
