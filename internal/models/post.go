package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post 文章表
type Post struct {
	ID         string     `gorm:"primarykey;type:varchar(36)" json:"id"`                                                       // 主键（UUID）
	Title      string     `gorm:"type:text;not null;uniqueIndex:idx_posts_title" json:"title"`                                 // 标题（全局唯一）
	Text       string     `gorm:"type:text;not null" json:"text"`                                                              // 正文（全局唯一，索引见 Migrate）
	ImageURL   *string    `gorm:"type:text" json:"image_url"`                                                                  // 图片地址
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`                                                                     // 创建时间
	UpdatedAt  *time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`                                                      // 更新时间（仅修改时写入）
	Categories []Category `gorm:"many2many:post_categories;joinForeignKey:PostID;joinReferences:CategoryID" json:"categories"` // 所属分类
}

// TableName 指定表名
func (Post) TableName() string {
	return "posts"
}

// BeforeCreate 生成主键
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if strings.TrimSpace(p.ID) == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// ArchivedPost 已删除文章归档表
// 说明：删除文章时写入，写入后不再修改。
type ArchivedPost struct {
	ID        string    `gorm:"primarykey;type:varchar(36)" json:"id"`  // 原文章ID
	Title     string    `gorm:"type:text;not null" json:"title"`        // 标题
	Text      string    `gorm:"type:text;not null" json:"text"`         // 正文
	ImageURL  *string   `gorm:"type:text" json:"image_url"`             // 图片地址
	CreatedAt time.Time `gorm:"autoCreateTime:false" json:"created_at"` // 原文章创建时间
	DeletedAt time.Time `gorm:"index;not null" json:"deleted_at"`       // 删除时间
}

// TableName 指定表名
func (ArchivedPost) TableName() string {
	return "deleted_posts"
}

// NewArchivedPost 根据文章生成归档记录
func NewArchivedPost(post *Post, deletedAt time.Time) *ArchivedPost {
	if post == nil {
		return nil
	}
	return &ArchivedPost{
		ID:        post.ID,
		Title:     post.Title,
		Text:      post.Text,
		ImageURL:  post.ImageURL,
		CreatedAt: post.CreatedAt,
		DeletedAt: deletedAt,
	}
}
