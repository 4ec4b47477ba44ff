package repository

import (
	"errors"

	"github.com/levpat/marketplace-blog/internal/models"

	"gorm.io/gorm"
)

// CategoryRepository 分类数据访问接口
type CategoryRepository interface {
	WithTx(tx *gorm.DB) CategoryRepository
	List() ([]models.Category, error)
	GetByTitle(title string) (*models.Category, error)
	ListByTitles(titles []string) ([]models.Category, error)
	Create(category *models.Category) error
}

// GormCategoryRepository GORM 实现
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository 创建分类仓库
func NewCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCategoryRepository) WithTx(tx *gorm.DB) CategoryRepository {
	if tx == nil {
		return r
	}
	return &GormCategoryRepository{db: tx}
}

// List 分类列表
func (r *GormCategoryRepository) List() ([]models.Category, error) {
	categories := make([]models.Category, 0)
	if err := r.db.Order("id ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// GetByTitle 根据标题获取分类
func (r *GormCategoryRepository) GetByTitle(title string) (*models.Category, error) {
	var category models.Category
	if err := r.db.Where("title = ?", title).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

// ListByTitles 获取标题在给定集合内的分类
func (r *GormCategoryRepository) ListByTitles(titles []string) ([]models.Category, error) {
	if len(titles) == 0 {
		return []models.Category{}, nil
	}
	var categories []models.Category
	if err := r.db.Where("title IN ?", titles).Order("id ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// Create 创建分类
func (r *GormCategoryRepository) Create(category *models.Category) error {
	return r.db.Create(category).Error
}
