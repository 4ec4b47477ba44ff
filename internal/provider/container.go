package provider

import (
	"context"
	"time"

	"github.com/levpat/marketplace-blog/internal/authz"
	"github.com/levpat/marketplace-blog/internal/cache"
	"github.com/levpat/marketplace-blog/internal/config"
	"github.com/levpat/marketplace-blog/internal/logger"
	"github.com/levpat/marketplace-blog/internal/models"
	"github.com/levpat/marketplace-blog/internal/queue"
	"github.com/levpat/marketplace-blog/internal/repository"
	"github.com/levpat/marketplace-blog/internal/service"
	"github.com/levpat/marketplace-blog/internal/storage"
)

const storageInitTimeout = 10 * time.Second

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	Storage     *storage.S3Storage

	// Repositories
	UserRepo     repository.UserRepository
	PostRepo     repository.PostRepository
	CategoryRepo repository.CategoryRepository
	LoginLogRepo repository.UserLoginLogRepository
	AuditLogRepo repository.AuthzAuditLogRepository

	// Services
	AuthzService    *authz.Service
	AuthService     *service.AuthService
	UserService     *service.UserService
	EmailService    *service.EmailService
	UploadService   *service.UploadService
	PostService     *service.PostService
	CategoryService *service.CategoryService
	LoginLogService *service.UserLoginLogService
	AuditService    *service.AuthzAuditService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		Storage:     initStorage(&cfg.Storage),
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func initStorage(cfg *config.StorageConfig) *storage.S3Storage {
	ctx, cancel := context.WithTimeout(context.Background(), storageInitTimeout)
	defer cancel()

	s3Storage, err := storage.NewS3Storage(ctx, cfg)
	if err != nil {
		logger.Warnw("provider_init_storage_failed", "error", err)
		return nil
	}
	if cfg.CreateBucket {
		if err := s3Storage.EnsureBucket(ctx); err != nil {
			logger.Warnw("provider_ensure_bucket_failed", "bucket", s3Storage.Bucket(), "error", err)
		}
	}
	return s3Storage
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.PostRepo = repository.NewPostRepository(db)
	c.CategoryRepo = repository.NewCategoryRepository(db)
	c.LoginLogRepo = repository.NewUserLoginLogRepository(db)
	c.AuditLogRepo = repository.NewAuthzAuditLogRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	var objectStorage service.ObjectStorage
	if c.Storage != nil {
		objectStorage = c.Storage
	}

	c.EmailService = service.NewEmailService(&c.Config.Email)
	c.AuthService = service.NewAuthService(c.Config, c.UserRepo)
	c.UserService = service.NewUserService(c.Config, c.UserRepo, c.welcomeEnqueuer())
	c.UploadService = service.NewUploadService(&c.Config.Upload, objectStorage)
	c.PostService = service.NewPostService(c.PostRepo, c.CategoryRepo, c.UploadService)
	c.CategoryService = service.NewCategoryService(c.CategoryRepo)
	c.LoginLogService = service.NewUserLoginLogService(c.LoginLogRepo)
	c.AuditService = service.NewAuthzAuditService(c.AuditLogRepo)
}

func (c *Container) welcomeEnqueuer() service.WelcomeEmailEnqueuer {
	if c.QueueClient == nil {
		return nil
	}
	return c.QueueClient
}

// Close 释放外部连接
func (c *Container) Close() {
	if c == nil {
		return
	}
	if c.QueueClient != nil {
		if err := c.QueueClient.Close(); err != nil {
			logger.Warnw("provider_close_queue_client_failed", "error", err)
		}
	}
	if err := cache.Close(); err != nil {
		logger.Warnw("provider_close_redis_failed", "error", err)
	}
}
