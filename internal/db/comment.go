package db

import "gorm.io/gorm"

// PostComment 文章评论，ParentID 指向同一文章下的另一条评论。
type PostComment struct {
	gorm.Model
	ParentID *uint `gorm:"index"`
	PostID   uint  `gorm:"not null;index"`
	AuthorID uint  `gorm:"not null;index"`
	Author   User
	Text     string `gorm:"type:text;not null"`
}

// TableName 指定自定义表名。
func (PostComment) TableName() string {
	return "post_comments"
}
