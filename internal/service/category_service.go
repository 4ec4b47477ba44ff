package service

import (
	"context"
	"strings"

	"github.com/levpat/marketplace-blog/internal/cache"
	"github.com/levpat/marketplace-blog/internal/logger"
	"github.com/levpat/marketplace-blog/internal/models"
	"github.com/levpat/marketplace-blog/internal/repository"
)

// CategoryService 分类业务服务
type CategoryService struct {
	repo repository.CategoryRepository
}

// NewCategoryService 创建分类服务
func NewCategoryService(repo repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

// List 获取分类列表（优先读取缓存）
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	if cached, hit, err := cache.GetCategoryList(ctx); err == nil && hit {
		return cached, nil
	} else if err != nil {
		logger.Warnw("category_list_cache_read_failed", "error", err)
	}

	categories, err := s.repo.List()
	if err != nil {
		return nil, err
	}
	if err := cache.SetCategoryList(ctx, categories); err != nil {
		logger.Warnw("category_list_cache_write_failed", "error", err)
	}
	return categories, nil
}

// Create 创建分类
func (s *CategoryService) Create(ctx context.Context, title string) (*models.Category, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrCategoryTitleRequired
	}

	exist, err := s.repo.GetByTitle(title)
	if err != nil {
		return nil, err
	}
	if exist != nil {
		return nil, ErrCategoryExists
	}

	category := models.Category{Title: title}
	if err := s.repo.Create(&category); err != nil {
		if _, ok := repository.UniqueViolationField(err); ok {
			return nil, ErrCategoryExists
		}
		return nil, err
	}
	if err := cache.DelCategoryList(ctx); err != nil {
		logger.Warnw("category_list_cache_invalidate_failed", "error", err)
	}
	return &category, nil
}
