package db

import (
	"time"

	"gorm.io/gorm"
)

// ModerationStatus 描述文章所处的审核阶段。
type ModerationStatus string

const (
	ModerationNew      ModerationStatus = "NEW"
	ModerationAccepted ModerationStatus = "ACCEPTED"
	ModerationDeclined ModerationStatus = "DECLINED"
)

// Post 定义了文章模型
// IsActive 由作者控制（隐藏/显示），PublishTime 晚于当前时间的文章视为定时发布。
type Post struct {
	gorm.Model
	IsActive         bool             `gorm:"not null;index"`
	ModerationStatus ModerationStatus `gorm:"size:16;not null;index"`
	ModeratorID      *uint            `gorm:"index"`
	AuthorID         uint             `gorm:"not null;index"`
	Author           User
	PublishTime      time.Time `gorm:"not null;index"`
	Title            string    `gorm:"size:255;not null"`
	Text             string    `gorm:"type:text;not null"`
	ViewCount        uint64    `gorm:"not null;default:0"`
	Tags             []Tag     `gorm:"many2many:post_tags;"`
}

// TagNames returns the names of the preloaded tags.
func (p *Post) TagNames() []string {
	names := make([]string, 0, len(p.Tags))
	for _, tag := range p.Tags {
		names = append(names, tag.Name)
	}
	return names
}
