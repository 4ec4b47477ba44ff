package repository

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike 转义 LIKE 通配符，配合 ESCAPE '\' 使用
func escapeLike(value string) string {
	return likeEscaper.Replace(value)
}

// createdBetween 按创建时间闭区间过滤，任一端为空时不限制
func createdBetween(from, to *time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if from != nil {
			db = db.Where("created_at >= ?", *from)
		}
		if to != nil {
			db = db.Where("created_at <= ?", *to)
		}
		return db
	}
}

// newestFirst 日志类列表统一排序，同一时刻按主键倒序保证翻页稳定
func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Order("id DESC")
}
