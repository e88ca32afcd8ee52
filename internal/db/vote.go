package db

import "time"

const (
	VoteLike    = 1
	VoteDislike = -1
)

// PostVote 记录用户对文章的当前投票，(user_id, post_id) 唯一。
// 取消/翻转时直接改写或删除该行，不使用软删除，否则唯一索引会被旧行占用。
type PostVote struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_post_votes_user_post"`
	PostID    uint `gorm:"not null;uniqueIndex:idx_post_votes_user_post"`
	Value     int  `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName 指定自定义表名。
func (PostVote) TableName() string {
	return "post_votes"
}
