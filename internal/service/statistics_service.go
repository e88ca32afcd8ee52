package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Choos37ricK/blog-engine/internal/db"
	"github.com/Choos37ricK/blog-engine/internal/repository"
	"gorm.io/gorm"
)

// Statistics aggregates a set of posts.
type Statistics struct {
	PostsCount       int64
	LikesCount       int64
	DislikesCount    int64
	ViewsCount       int64
	FirstPublication *time.Time
}

// StatisticsService computes per-author and site-wide aggregates.
type StatisticsService struct {
	db       *gorm.DB
	settings SettingsProvider
	now      func() time.Time
}

// NewStatisticsService creates a StatisticsService instance.
func NewStatisticsService(gdb *gorm.DB, settings SettingsProvider) *StatisticsService {
	return &StatisticsService{db: gdb, settings: settings, now: utcNow}
}

// SetClock 替换时间源，主要面向测试场景。
func (s *StatisticsService) SetClock(now func() time.Time) {
	if now == nil {
		s.now = utcNow
		return
	}
	s.now = now
}

// AuthorStatistics covers every post of the viewer, whatever its state.
func (s *StatisticsService) AuthorStatistics(ctx context.Context, viewer Viewer) (Statistics, error) {
	if viewer.Anonymous() {
		return Statistics{}, ErrNotAuthorized
	}
	authorID := viewer.ID
	return s.collect(ctx, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("posts.author_id = ?", authorID)
	})
}

// GlobalStatistics covers publicly visible posts. Anonymous visitors are refused when
// statistics are not public.
func (s *StatisticsService) GlobalStatistics(ctx context.Context, viewer Viewer) (Statistics, error) {
	if viewer.Anonymous() {
		settings, err := s.settings.GetSettings(ctx)
		if err != nil {
			return Statistics{}, err
		}
		if !settings.StatisticsIsPublic {
			return Statistics{}, ErrNotAuthorized
		}
	}
	return s.collect(ctx, repository.VisibleAt(s.now()))
}

func (s *StatisticsService) collect(ctx context.Context, scope func(*gorm.DB) *gorm.DB) (Statistics, error) {
	var stats Statistics

	var totals struct {
		Posts int64
		Views int64
	}
	if err := s.db.WithContext(ctx).
		Model(&db.Post{}).
		Select("COUNT(*) AS posts, COALESCE(SUM(posts.view_count), 0) AS views").
		Scopes(scope).
		Scan(&totals).Error; err != nil {
		return Statistics{}, fmt.Errorf("aggregate posts: %w", err)
	}
	stats.PostsCount = totals.Posts
	stats.ViewsCount = totals.Views

	if stats.PostsCount == 0 {
		return stats, nil
	}

	var votes struct {
		Likes    int64
		Dislikes int64
	}
	if err := s.db.WithContext(ctx).
		Table("post_votes").
		Select("COALESCE(SUM(CASE WHEN post_votes.value > 0 THEN 1 ELSE 0 END), 0) AS likes, COALESCE(SUM(CASE WHEN post_votes.value < 0 THEN 1 ELSE 0 END), 0) AS dislikes").
		Joins("JOIN posts ON posts.id = post_votes.post_id").
		Where("posts.deleted_at IS NULL").
		Scopes(scope).
		Scan(&votes).Error; err != nil {
		return Statistics{}, fmt.Errorf("aggregate votes: %w", err)
	}
	stats.LikesCount = votes.Likes
	stats.DislikesCount = votes.Dislikes

	var first db.Post
	err := s.db.WithContext(ctx).
		Model(&db.Post{}).
		Select("posts.id", "posts.publish_time").
		Scopes(scope).
		Order("posts.publish_time asc").
		Order("posts.id asc").
		Take(&first).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
	case err != nil:
		return Statistics{}, fmt.Errorf("load first publication: %w", err)
	default:
		published := first.PublishTime.UTC()
		stats.FirstPublication = &published
	}

	return stats, nil
}
