package main

import (
	"context"
	"errors"

	"github.com/levpat/marketplace-blog/internal/config"
	"github.com/levpat/marketplace-blog/internal/logger"
	"github.com/levpat/marketplace-blog/internal/models"
	"github.com/levpat/marketplace-blog/internal/repository"
	"github.com/levpat/marketplace-blog/internal/service"
)

type seedPost struct {
	title      string
	text       string
	categories []string
}

func main() {
	// 连接数据库
	config.LoadDotEnv()
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	ctx := context.Background()
	categoryRepo := repository.NewCategoryRepository(models.DB)
	categories := service.NewCategoryService(categoryRepo)
	// 种子文章不带图片，无需对象存储
	posts := service.NewPostService(repository.NewPostRepository(models.DB), categoryRepo, service.NewUploadService(&cfg.Upload, nil))

	// 添加分类
	for _, title := range []string{"Electronics", "Home", "Books", "Travel"} {
		if _, err := categories.Create(ctx, title); err != nil {
			if errors.Is(err, service.ErrCategoryExists) {
				continue
			}
			stdLog.Fatalf("Failed to seed category %s: %v", title, err)
		}
	}

	// 添加文章
	samples := []seedPost{
		{
			title:      "Choosing a laptop for travel",
			text:       "Battery life and weight matter more than raw speed when you work on the road.",
			categories: []string{"Electronics", "Travel"},
		},
		{
			title:      "Small kitchen upgrades",
			text:       "A good knife and a sturdy cutting board change more than any gadget.",
			categories: []string{"Home"},
		},
		{
			title:      "Reading list for the winter",
			text:       "Long novels pair well with long evenings; start with the classics you skipped.",
			categories: []string{"Books"},
		},
	}
	for _, sample := range samples {
		_, err := posts.Create(ctx, service.CreatePostInput{
			Title:      sample.title,
			Text:       sample.text,
			Categories: sample.categories,
		})
		if err != nil {
			if errors.Is(err, service.ErrPostTitleExists) || errors.Is(err, service.ErrPostTextExists) {
				continue
			}
			stdLog.Fatalf("Failed to seed post %q: %v", sample.title, err)
		}
	}

	logger.Infow("seed_completed", "categories", 4, "posts", len(samples))
}
