package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/levpat/marketplace-blog/internal/models"
	"github.com/levpat/marketplace-blog/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCategoryServiceTest(t *testing.T) (*CategoryService, *repository.GormCategoryRepository) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, models.Migrate(db))
	t.Cleanup(func() { _ = sqlDB.Close() })

	repo := repository.NewCategoryRepository(db)
	return NewCategoryService(repo), repo
}

func TestNormalizeCategoryTitles(t *testing.T) {
	tests := []struct {
		name string
		raw  []string
		want []string
	}{
		{name: "nil", raw: nil, want: []string{}},
		{name: "blank_entries", raw: []string{"", " ", " , "}, want: []string{}},
		{name: "comma_joined", raw: []string{"go, db"}, want: []string{"go", "db"}},
		{name: "dedup_keeps_first", raw: []string{"db", "go,db", " go "}, want: []string{"db", "go"}},
		{name: "case_sensitive", raw: []string{"Go", "go"}, want: []string{"Go", "go"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeCategoryTitles(tt.raw))
		})
	}
}

func TestCategoryResolver(t *testing.T) {
	svc, repo := setupCategoryServiceTest(t)
	ctx := context.Background()
	goCat, err := svc.Create(ctx, "go")
	require.NoError(t, err)
	dbCat, err := svc.Create(ctx, "db")
	require.NoError(t, err)

	resolver := NewCategoryResolver(repo)

	ids, err := resolver.Resolve(nil)
	require.NoError(t, err)
	assert.Empty(t, ids)

	ids, err = resolver.Resolve([]string{"db", "go"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{goCat.ID, dbCat.ID}, ids)

	_, err = resolver.Resolve([]string{"go", "rust"})
	require.ErrorIs(t, err, ErrCategoriesNotFound)

	// 标题匹配区分大小写
	_, err = resolver.Resolve([]string{"GO"})
	assert.ErrorIs(t, err, ErrCategoriesNotFound)
}

func TestCategoryServiceCreate(t *testing.T) {
	svc, _ := setupCategoryServiceTest(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "   ")
	assert.ErrorIs(t, err, ErrCategoryTitleRequired)

	created, err := svc.Create(ctx, "  news ")
	require.NoError(t, err)
	assert.Equal(t, "news", created.Title)
	assert.NotZero(t, created.ID)

	_, err = svc.Create(ctx, "news")
	assert.ErrorIs(t, err, ErrCategoryExists)

	_, err = svc.Create(ctx, "alpha")
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "news", list[0].Title)
	assert.Equal(t, "alpha", list[1].Title)
}
