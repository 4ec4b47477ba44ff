package repository

import (
	"errors"
	"sort"
	"strings"

	"github.com/levpat/marketplace-blog/internal/models"
	"github.com/levpat/marketplace-blog/internal/search"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository 文章数据访问接口
type PostRepository interface {
	WithTx(tx *gorm.DB) PostRepository
	Transaction(fn func(tx *gorm.DB) error) error
	List(filter PostListFilter) ([]models.Post, error)
	GetByID(id string) (*models.Post, error)
	FindDuplicates(title, text, excludeID string) ([]models.Post, error)
	Create(post *models.Post) error
	Update(post *models.Post) error
	ReplaceCategories(postID string, categoryIDs []uint) error
	Delete(id string) error
	CreateArchived(archived *models.ArchivedPost) error
	ListArchived(filter ArchivedPostListFilter) ([]models.ArchivedPost, int64, error)
}

// GormPostRepository GORM 实现
type GormPostRepository struct {
	db        *gorm.DB
	threshold float64
}

// NewPostRepository 创建文章仓库
func NewPostRepository(db *gorm.DB) *GormPostRepository {
	return &GormPostRepository{db: db, threshold: search.DefaultThreshold}
}

// WithTx 绑定事务
func (r *GormPostRepository) WithTx(tx *gorm.DB) PostRepository {
	if tx == nil {
		return r
	}
	return &GormPostRepository{db: tx, threshold: r.threshold}
}

// Transaction 执行事务
func (r *GormPostRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// List 按分类（任一命中）与检索词查询文章，结果去重、排序并分页
func (r *GormPostRepository) List(filter PostListFilter) ([]models.Post, error) {
	if len(filter.CategoryIDs) == 0 {
		return []models.Post{}, nil
	}
	keyword := strings.TrimSpace(filter.Search)

	if keyword != "" && !supportsTrigram(dbDialectName(r.db)) {
		return r.listBySimilarityInMemory(filter, keyword)
	}

	query := r.categoryScopedQuery(filter.CategoryIDs)
	if keyword != "" {
		query = query.Where(trigramMatchCondition(), keyword).
			Order(clause.OrderBy{Expression: clause.Expr{
				SQL:                trigramScoreOrder(),
				Vars:               []interface{}{keyword},
				WithoutParentheses: true,
			}})
	}
	query = query.Order("posts.title ASC").Order("posts.id ASC")
	query = applyPagination(query, filter.Page, filter.PageSize)

	posts := make([]models.Post, 0)
	if err := preloadCategories(query).Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// categoryScopedQuery 使用子查询过滤分类，避免关联表扇出产生重复行
func (r *GormPostRepository) categoryScopedQuery(categoryIDs []uint) *gorm.DB {
	sub := r.db.Model(&models.PostCategory{}).Select("post_id").Where("category_id IN ?", categoryIDs)
	return r.db.Model(&models.Post{}).Where("posts.id IN (?)", sub)
}

type postSearchCandidate struct {
	ID    string
	Title string
	Text  string
	score float64
}

// listBySimilarityInMemory 不支持 pg_trgm 的方言在内存中计算三元组相似度
func (r *GormPostRepository) listBySimilarityInMemory(filter PostListFilter, keyword string) ([]models.Post, error) {
	var candidates []postSearchCandidate
	if err := r.categoryScopedQuery(filter.CategoryIDs).
		Select("posts.id, posts.title, posts.text").
		Find(&candidates).Error; err != nil {
		return nil, err
	}

	matched := candidates[:0]
	for _, candidate := range candidates {
		score, ok := search.Score(keyword, searchDocument(candidate.Title, candidate.Text), r.threshold)
		if !ok {
			continue
		}
		candidate.score = score
		matched = append(matched, candidate)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].score != matched[j].score {
			return matched[i].score > matched[j].score
		}
		if matched[i].Title != matched[j].Title {
			return matched[i].Title < matched[j].Title
		}
		return matched[i].ID < matched[j].ID
	})

	start, end := pageWindow(len(matched), filter.Page, filter.PageSize)
	page := matched[start:end]
	if len(page) == 0 {
		return []models.Post{}, nil
	}

	ids := make([]string, 0, len(page))
	for _, candidate := range page {
		ids = append(ids, candidate.ID)
	}
	var rows []models.Post
	if err := preloadCategories(r.db.Model(&models.Post{})).Where("posts.id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	byID := make(map[string]models.Post, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}
	posts := make([]models.Post, 0, len(ids))
	for _, id := range ids {
		if row, ok := byID[id]; ok {
			posts = append(posts, row)
		}
	}
	return posts, nil
}

func preloadCategories(query *gorm.DB) *gorm.DB {
	return query.Preload("Categories", func(db *gorm.DB) *gorm.DB {
		return db.Order("categories.title ASC")
	})
}

// GetByID 根据 ID 获取文章
func (r *GormPostRepository) GetByID(id string) (*models.Post, error) {
	var post models.Post
	if err := preloadCategories(r.db).Where("id = ?", id).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// FindDuplicates 查找标题或正文与给定值相同的文章（可排除指定文章）
func (r *GormPostRepository) FindDuplicates(title, text, excludeID string) ([]models.Post, error) {
	query := r.db.Model(&models.Post{}).Where("title = ? OR text = ?", title, text)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	var posts []models.Post
	if err := query.Order("id ASC").Limit(2).Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// Create 创建文章（不级联写入分类关联）
func (r *GormPostRepository) Create(post *models.Post) error {
	return r.db.Omit(clause.Associations).Create(post).Error
}

// Update 更新文章字段
func (r *GormPostRepository) Update(post *models.Post) error {
	return r.db.Model(&models.Post{}).Where("id = ?", post.ID).Updates(map[string]interface{}{
		"title":      post.Title,
		"text":       post.Text,
		"image_url":  post.ImageURL,
		"updated_at": post.UpdatedAt,
	}).Error
}

// ReplaceCategories 替换文章的全部分类关联（先删后插，需在事务内调用）
func (r *GormPostRepository) ReplaceCategories(postID string, categoryIDs []uint) error {
	if err := r.db.Where("post_id = ?", postID).Delete(&models.PostCategory{}).Error; err != nil {
		return err
	}
	if len(categoryIDs) == 0 {
		return nil
	}
	rows := make([]models.PostCategory, 0, len(categoryIDs))
	seen := make(map[uint]struct{}, len(categoryIDs))
	for _, id := range categoryIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		rows = append(rows, models.PostCategory{PostID: postID, CategoryID: id})
	}
	return r.db.Omit(clause.Associations).Create(&rows).Error
}

// Delete 删除文章及其分类关联
func (r *GormPostRepository) Delete(id string) error {
	if err := r.db.Where("post_id = ?", id).Delete(&models.PostCategory{}).Error; err != nil {
		return err
	}
	return r.db.Where("id = ?", id).Delete(&models.Post{}).Error
}

// CreateArchived 写入归档记录
func (r *GormPostRepository) CreateArchived(archived *models.ArchivedPost) error {
	return r.db.Create(archived).Error
}

// ListArchived 归档列表（按删除时间倒序）
func (r *GormPostRepository) ListArchived(filter ArchivedPostListFilter) ([]models.ArchivedPost, int64, error) {
	query := r.db.Model(&models.ArchivedPost{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	archived := make([]models.ArchivedPost, 0)
	if err := query.Order("deleted_at DESC").Order("id ASC").Find(&archived).Error; err != nil {
		return nil, 0, err
	}
	return archived, total, nil
}
