package models

import "time"

// Category 分类表
type Category struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                                     // 主键
	Title     string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_categories_title" json:"title"` // 分类标题（唯一）
	CreatedAt time.Time `json:"-"`                                                                        // 创建时间
}

// TableName 指定表名
func (Category) TableName() string {
	return "categories"
}
