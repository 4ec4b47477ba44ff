package models

// PostCategory 文章与分类关联表
type PostCategory struct {
	PostID     string    `gorm:"primarykey;type:varchar(36)"`
	CategoryID uint      `gorm:"primarykey;index"`
	Post       *Post     `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	Category   *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT" json:"-"`
}

// TableName 指定表名
func (PostCategory) TableName() string {
	return "post_categories"
}
