package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Choos37ricK/blog-engine/internal/config"
	"github.com/Choos37ricK/blog-engine/internal/db"
	"github.com/Choos37ricK/blog-engine/internal/repository"
	"gorm.io/gorm"
)

// TagService builds the weighted tag cloud over publicly visible posts.
type TagService struct {
	db     *gorm.DB
	policy config.Policy
	now    func() time.Time
}

// NewTagService creates a TagService instance.
func NewTagService(gdb *gorm.DB, policy config.Policy) *TagService {
	return &TagService{db: gdb, policy: policy, now: utcNow}
}

// SetClock 替换时间源，主要面向测试场景。
func (s *TagService) SetClock(now func() time.Time) {
	if now == nil {
		s.now = utcNow
		return
	}
	s.now = now
}

// Cloud returns weighted tags, optionally restricted to names starting with query.
func (s *TagService) Cloud(ctx context.Context, query string) ([]TagWeight, error) {
	now := s.now()

	var totalVisible int64
	if err := s.db.WithContext(ctx).
		Model(&db.Post{}).
		Scopes(repository.VisibleAt(now)).
		Count(&totalVisible).Error; err != nil {
		return nil, fmt.Errorf("count visible posts: %w", err)
	}

	usages, err := s.PublishedUsage(ctx, query)
	if err != nil {
		return nil, err
	}

	return ComputeTagWeights(usages, totalVisible, s.policy.TagWeightFloor), nil
}

// PublishedUsage 返回公开文章中标签的使用统计
func (s *TagService) PublishedUsage(ctx context.Context, prefix string) ([]TagUsage, error) {
	var rows []struct {
		Name  string
		Count int64
	}

	query := s.db.WithContext(ctx).
		Table("tags").
		Select("tags.name, COUNT(DISTINCT posts.id) AS count").
		Joins("JOIN post_tags ON post_tags.tag_id = tags.id").
		Joins("JOIN posts ON posts.id = post_tags.post_id").
		Where("tags.deleted_at IS NULL AND posts.deleted_at IS NULL").
		Scopes(repository.VisibleAt(s.now()))

	if trimmed := strings.TrimSpace(prefix); trimmed != "" {
		query = query.Where("tags.name LIKE ? ESCAPE '!'", repository.EscapeLike(trimmed)+"%")
	}

	if err := query.Group("tags.name").Order("tags.name asc").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("load tag usage: %w", err)
	}

	usages := make([]TagUsage, 0, len(rows))
	for _, row := range rows {
		usages = append(usages, TagUsage{Name: row.Name, Count: row.Count})
	}
	return usages, nil
}
