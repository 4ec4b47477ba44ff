package cache

import (
	"context"
	"time"

	"github.com/levpat/marketplace-blog/internal/models"
)

const (
	categoryListKey      = "categories:list"
	categoryListCacheTTL = 5 * time.Minute
)

// GetCategoryList 获取分类列表缓存
func GetCategoryList(ctx context.Context) ([]models.Category, bool, error) {
	var categories []models.Category
	hit, err := GetJSON(ctx, categoryListKey, &categories)
	if err != nil || !hit {
		return nil, hit, err
	}
	return categories, true, nil
}

// SetCategoryList 写入分类列表缓存
func SetCategoryList(ctx context.Context, categories []models.Category) error {
	return SetJSON(ctx, categoryListKey, categories, categoryListCacheTTL)
}

// DelCategoryList 使分类列表缓存失效
func DelCategoryList(ctx context.Context) error {
	return Del(ctx, categoryListKey)
}
