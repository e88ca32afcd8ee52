package service

import (
	"time"

	"github.com/Choos37ricK/blog-engine/internal/db"
)

// Viewer identifies who is asking. The zero value is an anonymous visitor.
type Viewer struct {
	ID        uint
	Moderator bool
}

// Anonymous reports whether the viewer has no session.
func (v Viewer) Anonymous() bool {
	return v.ID == 0
}

// ViewerFromUser builds a viewer for an authenticated user; nil yields an anonymous viewer.
func ViewerFromUser(user *db.User) Viewer {
	if user == nil {
		return Viewer{}
	}
	return Viewer{ID: user.ID, Moderator: user.IsModerator}
}

// IsPubliclyVisible 判断文章在 now 时刻是否对所有人可见。
func IsPubliclyVisible(post *db.Post, now time.Time) bool {
	if post == nil {
		return false
	}
	return post.IsActive &&
		post.ModerationStatus == db.ModerationAccepted &&
		!post.PublishTime.After(now)
}

// CanView applies the per-viewer overrides on top of public visibility:
// authors always see their own posts, moderators see every active post.
func CanView(post *db.Post, viewer Viewer, now time.Time) bool {
	if post == nil {
		return false
	}
	if !viewer.Anonymous() && post.AuthorID == viewer.ID {
		return true
	}
	if viewer.Moderator && post.IsActive {
		return true
	}
	return IsPubliclyVisible(post, now)
}
