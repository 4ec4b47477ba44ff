package models

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite" // 纯 Go SQLite 驱动（基于 modernc.org/sqlite）
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// DBPoolConfig 数据库连接池配置
type DBPoolConfig struct {
	MaxOpenConns           int
	MaxIdleConns           int
	ConnMaxLifetimeSeconds int
	ConnMaxIdleTimeSeconds int
}

// InitDB 初始化数据库连接
func InitDB(driver, dsn string, pool DBPoolConfig) error {
	var err error
	normalized := strings.ToLower(strings.TrimSpace(driver))
	var dialector gorm.Dialector
	switch normalized {
	case "", "sqlite":
		// glebarez/sqlite 是基于 modernc.org/sqlite 的纯 Go 驱动
		dialector = sqlite.Open(dsn)
	case "postgres", "postgresql":
		dialector = postgres.Open(dsn)
	default:
		return fmt.Errorf("unsupported database driver: %s", driver)
	}
	DB, err = gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return err
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	applyDBPool(sqlDB, pool)
	return nil
}

func applyDBPool(sqlDB *sql.DB, pool DBPoolConfig) {
	if sqlDB == nil {
		return
	}
	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns >= 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetimeSeconds > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(pool.ConnMaxLifetimeSeconds) * time.Second)
	}
	if pool.ConnMaxIdleTimeSeconds > 0 {
		sqlDB.SetConnMaxIdleTime(time.Duration(pool.ConnMaxIdleTimeSeconds) * time.Second)
	}
}

// AutoMigrate 自动迁移所有数据库表
func AutoMigrate() error {
	return Migrate(DB)
}

// Migrate 对指定连接执行迁移
func Migrate(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database is not initialized")
	}
	if err := SetupJoinTables(db); err != nil {
		return err
	}
	if isPostgres(db) {
		if err := db.Exec("CREATE EXTENSION IF NOT EXISTS pg_trgm").Error; err != nil {
			return fmt.Errorf("create pg_trgm extension failed: %w", err)
		}
	}
	if err := db.AutoMigrate(
		&User{},
		&Category{},
		&Post{},
		&PostCategory{},
		&ArchivedPost{},
		&UserLoginLog{},
		&AuthzAuditLog{},
	); err != nil {
		return err
	}
	if err := migratePostTextIndex(db); err != nil {
		return err
	}
	if isPostgres(db) {
		// 与检索表达式保持一致，供 % 运算符命中
		if err := db.Exec(postTrigramIndexSQL).Error; err != nil {
			return fmt.Errorf("create trigram index failed: %w", err)
		}
	}
	return nil
}

const (
	postTrigramIndexSQL   = `CREATE INDEX IF NOT EXISTS idx_posts_search_trgm ON posts USING gin ((coalesce(title, '') || coalesce(text, '')) gin_trgm_ops)`
	postTextMD5IndexSQL   = `CREATE UNIQUE INDEX IF NOT EXISTS idx_posts_text_md5 ON posts (md5(text))`
	postTextPlainIndexSQL = `CREATE UNIQUE INDEX IF NOT EXISTS idx_posts_text ON posts (text)`
	dropPostTextIndexSQL  = `DROP INDEX IF EXISTS idx_posts_text`
)

// migratePostTextIndex 正文唯一索引
// PostgreSQL 的 btree 索引项上限约 2704 字节，长正文改为对 md5(text) 建唯一索引。
func migratePostTextIndex(db *gorm.DB) error {
	if !isPostgres(db) {
		if err := db.Exec(postTextPlainIndexSQL).Error; err != nil {
			return fmt.Errorf("create post text index failed: %w", err)
		}
		return nil
	}
	if err := db.Exec(dropPostTextIndexSQL).Error; err != nil {
		return fmt.Errorf("drop legacy post text index failed: %w", err)
	}
	if err := db.Exec(postTextMD5IndexSQL).Error; err != nil {
		return fmt.Errorf("create post text md5 index failed: %w", err)
	}
	return nil
}

// SetupJoinTables 注册自定义多对多关联表
func SetupJoinTables(db *gorm.DB) error {
	if err := db.SetupJoinTable(&Post{}, "Categories", &PostCategory{}); err != nil {
		return fmt.Errorf("setup post_categories join table failed: %w", err)
	}
	return nil
}

func isPostgres(db *gorm.DB) bool {
	if db == nil || db.Dialector == nil {
		return false
	}
	return strings.EqualFold(db.Dialector.Name(), "postgres")
}
