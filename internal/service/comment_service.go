package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Choos37ricK/blog-engine/internal/config"
	"github.com/Choos37ricK/blog-engine/internal/db"
	"github.com/Choos37ricK/blog-engine/internal/repository"
	"gorm.io/gorm"
)

// CommentInput represents a new comment.
type CommentInput struct {
	PostID   uint
	ParentID *uint
	Text     string
}

// CommentService adds and lists post comments.
type CommentService struct {
	db     *gorm.DB
	repo   repository.PostRepository
	policy config.Policy
	now    func() time.Time
}

// NewCommentService creates a CommentService instance.
func NewCommentService(gdb *gorm.DB, repo repository.PostRepository, policy config.Policy) *CommentService {
	return &CommentService{db: gdb, repo: repo, policy: policy, now: utcNow}
}

// SetClock 替换时间源，主要面向测试场景。
func (s *CommentService) SetClock(now func() time.Time) {
	if now == nil {
		s.now = utcNow
		return
	}
	s.now = now
}

// AddComment stores a comment on a post the viewer can see and returns its id.
func (s *CommentService) AddComment(ctx context.Context, viewer Viewer, input CommentInput) (uint, error) {
	if viewer.Anonymous() {
		return 0, ErrNotAuthorized
	}

	post, err := s.repo.FindByID(ctx, input.PostID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrPostNotFound
		}
		return 0, err
	}
	if !CanView(post, viewer, s.now()) {
		return 0, ErrPostNotFound
	}

	if input.ParentID != nil {
		var parent db.PostComment
		if err := s.db.WithContext(ctx).
			Where("id = ? AND post_id = ?", *input.ParentID, post.ID).
			Take(&parent).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, ErrCommentNotFound
			}
			return 0, fmt.Errorf("load parent comment: %w", err)
		}
	}

	text := strings.TrimSpace(input.Text)
	switch {
	case text == "":
		return 0, fieldError("text", "comment text is required")
	case utf8.RuneCountInString(text) < s.policy.CommentMinLength:
		return 0, fieldError("text", fmt.Sprintf("comment must be at least %d characters", s.policy.CommentMinLength))
	}

	comment := db.PostComment{
		ParentID: input.ParentID,
		PostID:   post.ID,
		AuthorID: viewer.ID,
		Text:     text,
	}
	if err := s.db.WithContext(ctx).Omit("Author").Create(&comment).Error; err != nil {
		return 0, fmt.Errorf("create comment: %w", err)
	}
	return comment.ID, nil
}

// ListComments returns the comments of a post in creation order.
func (s *CommentService) ListComments(ctx context.Context, postID uint) ([]db.PostComment, error) {
	var comments []db.PostComment
	if err := s.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at asc").
		Order("id asc").
		Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}
