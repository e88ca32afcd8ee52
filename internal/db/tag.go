package db

import "gorm.io/gorm"

// Tag 定义了标签模型，名称区分大小写且唯一
type Tag struct {
	gorm.Model
	Name  string `gorm:"size:255;uniqueIndex;not null"`
	Posts []Post `gorm:"many2many:post_tags;"`
}
