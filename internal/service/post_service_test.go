package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"mime/multipart"
	"strings"
	"sync"
	"testing"

	"github.com/levpat/marketplace-blog/internal/config"
	"github.com/levpat/marketplace-blog/internal/constants"
	"github.com/levpat/marketplace-blog/internal/models"
	"github.com/levpat/marketplace-blog/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const fakeStorageBaseURL = "http://minio.test/marketplace-blog/"

var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 0x49, 0x48, 0x44, 0x52}

type fakeObjectStorage struct {
	mu        sync.Mutex
	objects   map[string][]byte
	deleted   []string
	uploadErr error
}

func newFakeObjectStorage() *fakeObjectStorage {
	return &fakeObjectStorage{objects: map[string][]byte{}}
}

func (f *fakeObjectStorage) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.objects[key] = data
	return fakeStorageBaseURL + key, nil
}

func (f *fakeObjectStorage) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeObjectStorage) KeyFromURL(raw string) (string, bool) {
	if !strings.HasPrefix(raw, fakeStorageBaseURL) {
		return "", false
	}
	return strings.TrimPrefix(raw, fakeStorageBaseURL), true
}

func (f *fakeObjectStorage) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

// skipPrecheckPostRepository 跳过应用层查重，用于验证存储层唯一约束兜底
type skipPrecheckPostRepository struct {
	*repository.GormPostRepository
}

func (r skipPrecheckPostRepository) FindDuplicates(string, string, string) ([]models.Post, error) {
	return nil, nil
}

type postServiceFixture struct {
	db      *gorm.DB
	service *PostService
	storage *fakeObjectStorage
}

func setupPostServiceTest(t *testing.T) *postServiceFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, models.Migrate(db))
	t.Cleanup(func() { _ = sqlDB.Close() })

	storage := newFakeObjectStorage()
	uploads := NewUploadService(&config.UploadConfig{
		MaxSize:           1 << 20,
		AllowedTypes:      []string{"image/jpeg", "image/png", "application/pdf"},
		AllowedExtensions: []string{".png", ".jpg", ".jpeg", ".pdf"},
	}, storage)
	svc := NewPostService(repository.NewPostRepository(db), repository.NewCategoryRepository(db), uploads)
	return &postServiceFixture{db: db, service: svc, storage: storage}
}

func (f *postServiceFixture) category(t *testing.T, title string) *models.Category {
	t.Helper()
	category := &models.Category{Title: title}
	require.NoError(t, f.db.Create(category).Error)
	return category
}

func newTestFileHeader(t *testing.T, filename string, data []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(body, writer.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["image"][0]
}

func TestPostServiceCreateAndList(t *testing.T) {
	f := setupPostServiceTest(t)
	f.category(t, "go")
	f.category(t, "db")
	ctx := context.Background()

	post, err := f.service.Create(ctx, CreatePostInput{
		Title:      "Indexes",
		Text:       "how btree works",
		Categories: []string{"go, db", "go"},
		Image:      newTestFileHeader(t, "cover.PNG", pngHeader),
	})
	require.NoError(t, err)
	require.NotNil(t, post.ImageURL)
	assert.True(t, strings.HasPrefix(*post.ImageURL, fakeStorageBaseURL+"posts/"))
	assert.True(t, strings.HasSuffix(*post.ImageURL, ".png"))
	assert.Len(t, post.Categories, 2)
	assert.Nil(t, post.UpdatedAt)
	assert.Equal(t, 1, f.storage.count())

	_, err = f.service.Create(ctx, CreatePostInput{Title: "Plain", Text: "no categories"})
	require.NoError(t, err)

	posts, err := f.service.List(ListPostsInput{Page: 1, PageSize: 10, Categories: []string{"go"}})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, post.ID, posts[0].ID)
}

func TestPostServiceListValidation(t *testing.T) {
	f := setupPostServiceTest(t)
	f.category(t, "go")

	_, err := f.service.List(ListPostsInput{Page: 0, PageSize: 10, Categories: []string{"go"}})
	assert.ErrorIs(t, err, ErrInvalidPagination)
	_, err = f.service.List(ListPostsInput{Page: 1, PageSize: 101, Categories: []string{"go"}})
	assert.ErrorIs(t, err, ErrInvalidPagination)
	_, err = f.service.List(ListPostsInput{Page: constants.MaxPage + 1, PageSize: 10, Categories: []string{"go"}})
	assert.ErrorIs(t, err, ErrInvalidPagination)
	_, err = f.service.List(ListPostsInput{Page: math.MaxInt, PageSize: 10, Categories: []string{"go"}})
	assert.ErrorIs(t, err, ErrInvalidPagination)
	_, err = f.service.List(ListPostsInput{Page: 1, PageSize: 10})
	assert.ErrorIs(t, err, ErrCategoriesRequired)
	_, err = f.service.List(ListPostsInput{Page: 1, PageSize: 10, Categories: []string{"", " , "}})
	assert.ErrorIs(t, err, ErrCategoriesRequired)
	_, err = f.service.List(ListPostsInput{Page: 1, PageSize: 10, Categories: []string{"go", "rust"}})
	assert.ErrorIs(t, err, ErrCategoriesNotFound)

	posts, err := f.service.List(ListPostsInput{Page: 1, PageSize: 10, Categories: []string{"go"}})
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestPostServiceDuplicateTitleReportedBeforeText(t *testing.T) {
	f := setupPostServiceTest(t)
	ctx := context.Background()

	_, err := f.service.Create(ctx, CreatePostInput{Title: "Same", Text: "body"})
	require.NoError(t, err)

	_, err = f.service.Create(ctx, CreatePostInput{Title: "Same", Text: "body"})
	assert.ErrorIs(t, err, ErrPostTitleExists)

	_, err = f.service.Create(ctx, CreatePostInput{Title: "Other", Text: "body"})
	assert.ErrorIs(t, err, ErrPostTextExists)
}

func TestPostServiceCreateUnknownCategorySkipsUpload(t *testing.T) {
	f := setupPostServiceTest(t)

	_, err := f.service.Create(context.Background(), CreatePostInput{
		Title:      "T",
		Text:       "X",
		Categories: []string{"missing"},
		Image:      newTestFileHeader(t, "a.png", pngHeader),
	})
	assert.ErrorIs(t, err, ErrCategoriesNotFound)
	assert.Equal(t, 0, f.storage.count())

	var total int64
	require.NoError(t, f.db.Model(&models.Post{}).Count(&total).Error)
	assert.Zero(t, total)
}

func TestPostServiceCreateRejectsInvalidImage(t *testing.T) {
	f := setupPostServiceTest(t)
	ctx := context.Background()

	_, err := f.service.Create(ctx, CreatePostInput{Title: "T", Text: "X", Image: newTestFileHeader(t, "a.gif", pngHeader)})
	require.ErrorIs(t, err, ErrInvalidFileType)
	assert.Equal(t, "Invalid file type. Only .png, .jpg, .jpeg and .pdf are allowed", err.Error())

	_, err = f.service.Create(ctx, CreatePostInput{Title: "T", Text: "X", Image: newTestFileHeader(t, "a.png", []byte("plain text"))})
	assert.ErrorIs(t, err, ErrInvalidFileType)

	large := append(append([]byte{}, pngHeader...), make([]byte, 1<<20)...)
	_, err = f.service.Create(ctx, CreatePostInput{Title: "T", Text: "X", Image: newTestFileHeader(t, "a.png", large)})
	require.ErrorIs(t, err, ErrFileTooLarge)
	assert.Equal(t, "File size exceeds the limit (1 MB)", err.Error())

	assert.Equal(t, 0, f.storage.count())
}

func TestPostServiceStorageConflictDiscardsUpload(t *testing.T) {
	f := setupPostServiceTest(t)
	ctx := context.Background()
	_, err := f.service.Create(ctx, CreatePostInput{Title: "Taken", Text: "first"})
	require.NoError(t, err)

	f.service.repo = skipPrecheckPostRepository{repository.NewPostRepository(f.db)}
	_, err = f.service.Create(ctx, CreatePostInput{
		Title: "Taken",
		Text:  "second",
		Image: newTestFileHeader(t, "a.png", pngHeader),
	})
	assert.ErrorIs(t, err, ErrPostTitleExists)
	assert.Equal(t, 0, f.storage.count())
	assert.Len(t, f.storage.deleted, 1)
}

func TestPostServiceUpdate(t *testing.T) {
	f := setupPostServiceTest(t)
	f.category(t, "go")
	f.category(t, "db")
	ctx := context.Background()

	post, err := f.service.Create(ctx, CreatePostInput{
		Title:      "Draft",
		Text:       "v1",
		Categories: []string{"go"},
		Image:      newTestFileHeader(t, "a.png", pngHeader),
	})
	require.NoError(t, err)
	originalURL := *post.ImageURL

	updated, err := f.service.Update(ctx, UpdatePostInput{
		PostID:     post.ID,
		Title:      "Final",
		Text:       "v2",
		Categories: []string{"db"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Final", updated.Title)
	require.NotNil(t, updated.UpdatedAt)
	require.NotNil(t, updated.ImageURL)
	assert.Equal(t, originalURL, *updated.ImageURL)
	require.Len(t, updated.Categories, 1)
	assert.Equal(t, "db", updated.Categories[0].Title)

	updated, err = f.service.Update(ctx, UpdatePostInput{
		PostID: post.ID,
		Title:  "Final",
		Text:   "v2",
		Image:  newTestFileHeader(t, "b.jpg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0x10, 'J', 'F', 'I', 'F'}),
	})
	require.NoError(t, err)
	assert.NotEqual(t, originalURL, *updated.ImageURL)
	assert.Empty(t, updated.Categories)
	assert.Equal(t, []string{strings.TrimPrefix(originalURL, fakeStorageBaseURL)}, f.storage.deleted)
}

func TestPostServiceUpdateConflictsAndMissing(t *testing.T) {
	f := setupPostServiceTest(t)
	ctx := context.Background()

	first, err := f.service.Create(ctx, CreatePostInput{Title: "A", Text: "a"})
	require.NoError(t, err)
	_, err = f.service.Create(ctx, CreatePostInput{Title: "B", Text: "b"})
	require.NoError(t, err)

	// 自身标题不算冲突
	_, err = f.service.Update(ctx, UpdatePostInput{PostID: first.ID, Title: "A", Text: "a2"})
	require.NoError(t, err)

	_, err = f.service.Update(ctx, UpdatePostInput{PostID: first.ID, Title: "B", Text: "x"})
	assert.ErrorIs(t, err, ErrPostTitleExists)
	_, err = f.service.Update(ctx, UpdatePostInput{PostID: first.ID, Title: "C", Text: "b"})
	assert.ErrorIs(t, err, ErrPostTextExists)

	_, err = f.service.Update(ctx, UpdatePostInput{PostID: "not-a-uuid", Title: "C", Text: "c"})
	assert.ErrorIs(t, err, ErrPostNotFound)
	_, err = f.service.Update(ctx, UpdatePostInput{PostID: "6f1c1c1e-0000-4000-8000-000000000000", Title: "C", Text: "c"})
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestPostServiceUpdateUnknownCategoryLeavesPostUntouched(t *testing.T) {
	f := setupPostServiceTest(t)
	f.category(t, "go")
	ctx := context.Background()

	post, err := f.service.Create(ctx, CreatePostInput{
		Title:      "T",
		Text:       "x",
		Categories: []string{"go"},
		Image:      newTestFileHeader(t, "a.png", pngHeader),
	})
	require.NoError(t, err)
	require.Equal(t, 1, f.storage.count())

	_, err = f.service.Update(ctx, UpdatePostInput{
		PostID:     post.ID,
		Title:      "Changed",
		Text:       "changed",
		Categories: []string{"nope"},
		Image:      newTestFileHeader(t, "b.png", pngHeader),
	})
	assert.ErrorIs(t, err, ErrCategoriesNotFound)
	assert.Equal(t, 1, f.storage.count())
	assert.Empty(t, f.storage.deleted)

	reloaded, err := repository.NewPostRepository(f.db).GetByID(post.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded)
	assert.Equal(t, "T", reloaded.Title)
	assert.Equal(t, "x", reloaded.Text)
	assert.Nil(t, reloaded.UpdatedAt)
	require.NotNil(t, reloaded.ImageURL)
	assert.Equal(t, *post.ImageURL, *reloaded.ImageURL)
	require.Len(t, reloaded.Categories, 1)
	assert.Equal(t, "go", reloaded.Categories[0].Title)
}

func TestPostServiceDeleteArchives(t *testing.T) {
	f := setupPostServiceTest(t)
	f.category(t, "go")
	ctx := context.Background()

	post, err := f.service.Create(ctx, CreatePostInput{Title: "Gone", Text: "soon", Categories: []string{"go"}})
	require.NoError(t, err)

	archived, err := f.service.Delete(post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, archived.ID)
	assert.Equal(t, "Gone", archived.Title)
	assert.False(t, archived.DeletedAt.IsZero())

	_, err = f.service.Delete(post.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)
	_, err = f.service.Delete("garbage")
	assert.ErrorIs(t, err, ErrPostNotFound)

	var links int64
	require.NoError(t, f.db.Model(&models.PostCategory{}).Count(&links).Error)
	assert.Zero(t, links)

	items, total, err := f.service.ListArchived(1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, post.ID, items[0].ID)
}

func TestTranslatePostWriteError(t *testing.T) {
	assert.Nil(t, translatePostWriteError(nil))
	assert.ErrorIs(t, translatePostWriteError(ErrPostNotFound), ErrPostNotFound)
	assert.ErrorIs(t, translatePostWriteError(errors.New("UNIQUE constraint failed: posts.text")), ErrPostTextExists)
	assert.ErrorIs(t, translatePostWriteError(errors.New("UNIQUE constraint failed: posts.title")), ErrPostTitleExists)

	cause := errors.New("disk full")
	err := translatePostWriteError(cause)
	assert.ErrorIs(t, err, cause)
}
