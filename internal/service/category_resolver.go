package service

import (
	"strings"

	"github.com/levpat/marketplace-blog/internal/constants"
	"github.com/levpat/marketplace-blog/internal/models"
	"github.com/levpat/marketplace-blog/internal/repository"
)

// NormalizeCategoryTitles 规范化分类标题列表
// 表单编码可能把多值字段合并为逗号分隔的单个值，这里统一拆分、去空白并按首次出现去重。
func NormalizeCategoryTitles(raw []string) []string {
	titles := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, entry := range raw {
		for _, part := range strings.Split(entry, constants.CategorySeparator) {
			title := strings.TrimSpace(part)
			if title == "" {
				continue
			}
			if _, ok := seen[title]; ok {
				continue
			}
			seen[title] = struct{}{}
			titles = append(titles, title)
		}
	}
	return titles
}

// CategoryResolver 分类标题解析器
type CategoryResolver struct {
	repo repository.CategoryRepository
}

// NewCategoryResolver 创建分类解析器
func NewCategoryResolver(repo repository.CategoryRepository) *CategoryResolver {
	return &CategoryResolver{repo: repo}
}

// Resolve 将已规范化的标题解析为分类ID，任一标题不存在即返回 ErrCategoriesNotFound
// 空列表返回空结果，由调用方决定是否允许。
func (r *CategoryResolver) Resolve(titles []string) ([]uint, error) {
	categories, err := r.ResolveCategories(titles)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(categories))
	for _, category := range categories {
		ids = append(ids, category.ID)
	}
	return ids, nil
}

// ResolveCategories 同 Resolve，返回分类实体
func (r *CategoryResolver) ResolveCategories(titles []string) ([]models.Category, error) {
	if len(titles) == 0 {
		return []models.Category{}, nil
	}
	distinct := make(map[string]struct{}, len(titles))
	for _, title := range titles {
		distinct[title] = struct{}{}
	}
	categories, err := r.repo.ListByTitles(titles)
	if err != nil {
		return nil, err
	}
	if len(categories) < len(distinct) {
		return nil, ErrCategoriesNotFound
	}
	return categories, nil
}
