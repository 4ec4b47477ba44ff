package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/levpat/marketplace-blog/internal/constants"
	"github.com/levpat/marketplace-blog/internal/logger"
	"github.com/levpat/marketplace-blog/internal/models"
	"github.com/levpat/marketplace-blog/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PostService 文章业务服务
type PostService struct {
	repo     repository.PostRepository
	resolver *CategoryResolver
	uploads  *UploadService
	now      func() time.Time
}

// NewPostService 创建文章服务
func NewPostService(repo repository.PostRepository, catRepo repository.CategoryRepository, uploads *UploadService) *PostService {
	return &PostService{
		repo:     repo,
		resolver: NewCategoryResolver(catRepo),
		uploads:  uploads,
		now:      time.Now,
	}
}

// ListPostsInput 文章列表查询输入
type ListPostsInput struct {
	Page       int
	PageSize   int
	Categories []string
	Search     string
}

// CreatePostInput 创建文章输入
type CreatePostInput struct {
	Title      string
	Text       string
	Categories []string
	Image      *multipart.FileHeader
}

// UpdatePostInput 更新文章输入
type UpdatePostInput struct {
	PostID     string
	Title      string
	Text       string
	Categories []string
	Image      *multipart.FileHeader
}

// List 按分类与检索词查询文章
func (s *PostService) List(input ListPostsInput) ([]models.Post, error) {
	if err := validatePagination(input.Page, input.PageSize); err != nil {
		return nil, err
	}
	titles := NormalizeCategoryTitles(input.Categories)
	if len(titles) == 0 {
		return nil, ErrCategoriesRequired
	}
	categoryIDs, err := s.resolver.Resolve(titles)
	if err != nil {
		return nil, err
	}
	return s.repo.List(repository.PostListFilter{
		Page:        input.Page,
		PageSize:    input.PageSize,
		CategoryIDs: categoryIDs,
		Search:      strings.TrimSpace(input.Search),
	})
}

// Create 创建文章：查重 -> 解析分类 -> 上传图片 -> 事务写入
func (s *PostService) Create(ctx context.Context, input CreatePostInput) (*models.Post, error) {
	if err := validatePostContent(input.Title, input.Text); err != nil {
		return nil, err
	}
	image, err := s.uploads.Prepare(input.Image)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUnique(input.Title, input.Text, ""); err != nil {
		return nil, err
	}
	categoryIDs, err := s.resolver.Resolve(NormalizeCategoryTitles(input.Categories))
	if err != nil {
		return nil, err
	}

	uploaded, err := s.uploads.Store(ctx, image, constants.UploadScenePost)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:    input.Title,
		Text:     input.Text,
		ImageURL: uploadedURL(uploaded),
	}
	err = s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(post); err != nil {
			return err
		}
		return repo.ReplaceCategories(post.ID, categoryIDs)
	})
	if err != nil {
		s.uploads.Discard(ctx, uploaded)
		return nil, translatePostWriteError(err)
	}
	return s.reload(post), nil
}

// Update 更新文章：未提供新图片时保留原图
func (s *PostService) Update(ctx context.Context, input UpdatePostInput) (*models.Post, error) {
	postID, ok := normalizePostID(input.PostID)
	if !ok {
		return nil, ErrPostNotFound
	}
	if err := validatePostContent(input.Title, input.Text); err != nil {
		return nil, err
	}
	image, err := s.uploads.Prepare(input.Image)
	if err != nil {
		return nil, err
	}

	post, err := s.repo.GetByID(postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if err := s.ensureUnique(input.Title, input.Text, post.ID); err != nil {
		return nil, err
	}
	categoryIDs, err := s.resolver.Resolve(NormalizeCategoryTitles(input.Categories))
	if err != nil {
		return nil, err
	}

	uploaded, err := s.uploads.Store(ctx, image, constants.UploadScenePost)
	if err != nil {
		return nil, err
	}

	previousImage := post.ImageURL
	now := s.now()
	post.Title = input.Title
	post.Text = input.Text
	post.UpdatedAt = &now
	if uploaded != nil {
		post.ImageURL = uploadedURL(uploaded)
	}

	err = s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Update(post); err != nil {
			return err
		}
		return repo.ReplaceCategories(post.ID, categoryIDs)
	})
	if err != nil {
		s.uploads.Discard(ctx, uploaded)
		return nil, translatePostWriteError(err)
	}
	if uploaded != nil && previousImage != nil {
		s.uploads.DiscardURL(ctx, *previousImage)
	}
	return s.reload(post), nil
}

// Delete 删除文章并写入归档记录
func (s *PostService) Delete(postID string) (*models.ArchivedPost, error) {
	id, ok := normalizePostID(postID)
	if !ok {
		return nil, ErrPostNotFound
	}

	var archived *models.ArchivedPost
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		post, err := repo.GetByID(id)
		if err != nil {
			return err
		}
		if post == nil {
			return ErrPostNotFound
		}
		if err := repo.Delete(post.ID); err != nil {
			return err
		}
		archived = models.NewArchivedPost(post, s.now())
		return repo.CreateArchived(archived)
	})
	if err != nil {
		return nil, err
	}
	return archived, nil
}

// ListArchived 归档文章列表
func (s *PostService) ListArchived(page, pageSize int) ([]models.ArchivedPost, int64, error) {
	if err := validatePagination(page, pageSize); err != nil {
		return nil, 0, err
	}
	return s.repo.ListArchived(repository.ArchivedPostListFilter{Page: page, PageSize: pageSize})
}

// ensureUnique 标题冲突优先于正文冲突
func (s *PostService) ensureUnique(title, text, excludeID string) error {
	duplicates, err := s.repo.FindDuplicates(title, text, excludeID)
	if err != nil {
		return err
	}
	for _, dup := range duplicates {
		if dup.Title == title {
			return ErrPostTitleExists
		}
	}
	if len(duplicates) > 0 {
		return ErrPostTextExists
	}
	return nil
}

func (s *PostService) reload(post *models.Post) *models.Post {
	fresh, err := s.repo.GetByID(post.ID)
	if err != nil || fresh == nil {
		if err != nil {
			logger.Warnw("post_reload_failed", "post_id", post.ID, "error", err)
		}
		return post
	}
	return fresh
}

func translatePostWriteError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrPostNotFound) {
		return err
	}
	field, ok := repository.UniqueViolationField(err)
	if !ok {
		return fmt.Errorf("persist post: %w", err)
	}
	switch field {
	case "text":
		return ErrPostTextExists
	default:
		return ErrPostTitleExists
	}
}

func validatePostContent(title, text string) error {
	if strings.TrimSpace(title) == "" {
		return ErrPostTitleRequired
	}
	if strings.TrimSpace(text) == "" {
		return ErrPostTextRequired
	}
	return nil
}

func validatePagination(page, pageSize int) error {
	if page < 1 || page > constants.MaxPage || pageSize < 1 || pageSize > constants.MaxPageSize {
		return ErrInvalidPagination
	}
	return nil
}

// normalizePostID 非法 UUID 视为不存在
func normalizePostID(raw string) (string, bool) {
	parsed, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}

func uploadedURL(object *UploadedObject) *string {
	if object == nil {
		return nil
	}
	url := object.URL
	return &url
}
