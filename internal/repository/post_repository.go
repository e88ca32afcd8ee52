// Package repository holds the persistence contract for posts and its gorm implementation.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Choos37ricK/blog-engine/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when a post id does not resolve to a live row.
var ErrNotFound = errors.New("post not found")

// PostOrder names a listing sort.
type PostOrder string

const (
	OrderRecent  PostOrder = "recent"
	OrderEarly   PostOrder = "early"
	OrderPopular PostOrder = "popular"
	OrderBest    PostOrder = "best"
)

// ParsePostOrder maps a request mode onto a PostOrder.
func ParsePostOrder(raw string) (PostOrder, bool) {
	switch PostOrder(strings.ToLower(strings.TrimSpace(raw))) {
	case OrderRecent:
		return OrderRecent, true
	case OrderEarly:
		return OrderEarly, true
	case OrderPopular:
		return OrderPopular, true
	case OrderBest:
		return OrderBest, true
	}
	return "", false
}

// Page is an offset/limit window. The effective page index is Offset / Limit.
type Page struct {
	Offset int
	Limit  int
}

// SQLOffset returns the row offset of the page containing Offset.
func (p Page) SQLOffset() int {
	if p.Limit <= 0 {
		return 0
	}
	return (p.Offset / p.Limit) * p.Limit
}

// PostCriteria combines the listing predicates. Nil or empty fields do not filter.
type PostCriteria struct {
	// VisibleAt restricts to posts publicly visible at that instant.
	VisibleAt   *time.Time
	Active      *bool
	Statuses    []db.ModerationStatus
	AuthorID    *uint
	ModeratorID *uint
	Tag         string
	// PublishedFrom and PublishedUntil form a half-open range [from, until).
	PublishedFrom  *time.Time
	PublishedUntil *time.Time
	Query          string
}

// PostCounters are the derived per-post tallies shown next to a post.
type PostCounters struct {
	Likes    int64
	Dislikes int64
	Comments int64
}

// PostRepository is the storage contract used by the engine.
type PostRepository interface {
	FindByID(ctx context.Context, id uint) (*db.Post, error)
	Find(ctx context.Context, criteria PostCriteria, order PostOrder, page Page) ([]db.Post, error)
	Count(ctx context.Context, criteria PostCriteria) (int64, error)
	Create(ctx context.Context, post *db.Post, tags []string) error
	Update(ctx context.Context, post *db.Post, tags []string) error
	IncrementViewCount(ctx context.Context, id uint) error
	SetModeration(ctx context.Context, id uint, status db.ModerationStatus, moderatorID uint) error
	Counters(ctx context.Context, ids []uint) (map[uint]PostCounters, error)
	PublicationYears(ctx context.Context, visibleAt time.Time) ([]int, error)
	PublishTimes(ctx context.Context, criteria PostCriteria) ([]time.Time, error)
}

// GormPostRepository implements PostRepository on gorm.
type GormPostRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a gorm backed repository.
func NewPostRepository(gdb *gorm.DB) *GormPostRepository {
	return &GormPostRepository{db: gdb}
}

// FindByID loads a post with its author and tags.
func (r *GormPostRepository) FindByID(ctx context.Context, id uint) (*db.Post, error) {
	var post db.Post
	if err := r.db.WithContext(ctx).Preload("Author").Preload("Tags").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

// Find returns one page of posts matching criteria in the requested order.
func (r *GormPostRepository) Find(ctx context.Context, criteria PostCriteria, order PostOrder, page Page) ([]db.Post, error) {
	query := r.db.WithContext(ctx).
		Model(&db.Post{}).
		Preload("Author").
		Preload("Tags")
	query = r.applyCriteria(ctx, query, criteria)
	query = applyOrder(query, order)

	if page.Limit > 0 {
		query = query.Offset(page.SQLOffset()).Limit(page.Limit)
	}

	var posts []db.Post
	if err := query.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// Count returns the number of posts matching criteria.
func (r *GormPostRepository) Count(ctx context.Context, criteria PostCriteria) (int64, error) {
	var total int64
	query := r.applyCriteria(ctx, r.db.WithContext(ctx).Model(&db.Post{}), criteria)
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// Create inserts the post and links the named tags, creating missing ones.
func (r *GormPostRepository) Create(ctx context.Context, post *db.Post, tags []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(post).Error; err != nil {
			return err
		}

		resolved, err := ensureTags(tx, tags)
		if err != nil {
			return err
		}
		if len(resolved) == 0 {
			post.Tags = nil
			return nil
		}

		if err := tx.Model(post).Association("Tags").Append(resolved); err != nil {
			return fmt.Errorf("link tags: %w", err)
		}
		post.Tags = resolved
		return nil
	})
}

// Update writes the editable columns and replaces the tag set.
func (r *GormPostRepository) Update(ctx context.Context, post *db.Post, tags []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&db.Post{}).
			Where("id = ?", post.ID).
			Updates(map[string]interface{}{
				"is_active":         post.IsActive,
				"moderation_status": post.ModerationStatus,
				"moderator_id":      post.ModeratorID,
				"publish_time":      post.PublishTime,
				"title":             post.Title,
				"text":              post.Text,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}

		resolved, err := ensureTags(tx, tags)
		if err != nil {
			return err
		}

		association := tx.Model(&db.Post{Model: gorm.Model{ID: post.ID}}).Association("Tags")
		if len(resolved) == 0 {
			err = association.Clear()
		} else {
			err = association.Replace(resolved)
		}
		if err != nil {
			return fmt.Errorf("replace tags: %w", err)
		}
		post.Tags = resolved
		return nil
	})
}

// IncrementViewCount bumps view_count by one in a single statement.
func (r *GormPostRepository) IncrementViewCount(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).
		Model(&db.Post{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetModeration records a moderator decision.
func (r *GormPostRepository) SetModeration(ctx context.Context, id uint, status db.ModerationStatus, moderatorID uint) error {
	result := r.db.WithContext(ctx).
		Model(&db.Post{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"moderation_status": status,
			"moderator_id":      moderatorID,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Counters returns likes, dislikes and comments for each id. Ids without rows map to zero counters.
func (r *GormPostRepository) Counters(ctx context.Context, ids []uint) (map[uint]PostCounters, error) {
	counters := make(map[uint]PostCounters, len(ids))
	if len(ids) == 0 {
		return counters, nil
	}
	for _, id := range ids {
		counters[id] = PostCounters{}
	}

	var votes []struct {
		PostID   uint
		Likes    int64
		Dislikes int64
	}
	if err := r.db.WithContext(ctx).
		Model(&db.PostVote{}).
		Select("post_id, COALESCE(SUM(CASE WHEN value > 0 THEN 1 ELSE 0 END), 0) AS likes, COALESCE(SUM(CASE WHEN value < 0 THEN 1 ELSE 0 END), 0) AS dislikes").
		Where("post_id IN ?", ids).
		Group("post_id").
		Scan(&votes).Error; err != nil {
		return nil, err
	}
	for _, row := range votes {
		c := counters[row.PostID]
		c.Likes = row.Likes
		c.Dislikes = row.Dislikes
		counters[row.PostID] = c
	}

	var comments []struct {
		PostID   uint
		Comments int64
	}
	if err := r.db.WithContext(ctx).
		Model(&db.PostComment{}).
		Select("post_id, COUNT(*) AS comments").
		Where("post_id IN ?", ids).
		Group("post_id").
		Scan(&comments).Error; err != nil {
		return nil, err
	}
	for _, row := range comments {
		c := counters[row.PostID]
		c.Comments = row.Comments
		counters[row.PostID] = c
	}

	return counters, nil
}

// PublicationYears lists, ascending, the distinct years holding a post visible at visibleAt.
func (r *GormPostRepository) PublicationYears(ctx context.Context, visibleAt time.Time) ([]int, error) {
	var rows []struct {
		Year int
	}
	query := r.db.WithContext(ctx).
		Model(&db.Post{}).
		Select("DISTINCT " + yearExpression(r.db.Dialector.Name()) + " AS year")
	query = r.applyCriteria(ctx, query, PostCriteria{VisibleAt: &visibleAt})
	if err := query.Order("year asc").Scan(&rows).Error; err != nil {
		return nil, err
	}

	years := make([]int, 0, len(rows))
	for _, row := range rows {
		years = append(years, row.Year)
	}
	return years, nil
}

// PublishTimes returns the publish time of every post matching criteria.
func (r *GormPostRepository) PublishTimes(ctx context.Context, criteria PostCriteria) ([]time.Time, error) {
	var times []time.Time
	query := r.applyCriteria(ctx, r.db.WithContext(ctx).Model(&db.Post{}), criteria)
	if err := query.Order("posts.publish_time asc").Pluck("posts.publish_time", &times).Error; err != nil {
		return nil, err
	}
	return times, nil
}

func (r *GormPostRepository) applyCriteria(ctx context.Context, query *gorm.DB, c PostCriteria) *gorm.DB {
	if c.VisibleAt != nil {
		query = query.Scopes(VisibleAt(*c.VisibleAt))
	}
	if c.Active != nil {
		query = query.Where("posts.is_active = ?", *c.Active)
	}
	if len(c.Statuses) > 0 {
		query = query.Where("posts.moderation_status IN ?", c.Statuses)
	}
	if c.AuthorID != nil {
		query = query.Where("posts.author_id = ?", *c.AuthorID)
	}
	if c.ModeratorID != nil {
		query = query.Where("posts.moderator_id = ?", *c.ModeratorID)
	}
	if tag := strings.TrimSpace(c.Tag); tag != "" {
		tagged := r.db.WithContext(ctx).
			Table("post_tags").
			Select("post_tags.post_id").
			Joins("JOIN tags ON tags.id = post_tags.tag_id").
			Where("tags.name = ? AND tags.deleted_at IS NULL", tag)
		query = query.Where("posts.id IN (?)", tagged)
	}
	if c.PublishedFrom != nil {
		query = query.Where("posts.publish_time >= ?", c.PublishedFrom.UTC())
	}
	if c.PublishedUntil != nil {
		query = query.Where("posts.publish_time < ?", c.PublishedUntil.UTC())
	}
	if q := strings.TrimSpace(c.Query); q != "" {
		pattern := "%" + EscapeLike(strings.ToLower(q)) + "%"
		query = query.Where("(LOWER(posts.title) LIKE ? ESCAPE '!' OR LOWER(posts.text) LIKE ? ESCAPE '!')", pattern, pattern)
	}
	return query
}

// VisibleAt is the public visibility predicate as a gorm scope over the posts table.
func VisibleAt(now time.Time) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where("posts.is_active = ? AND posts.moderation_status = ? AND posts.publish_time <= ?",
			true, db.ModerationAccepted, now.UTC())
	}
}

// EscapeLike escapes LIKE wildcards using '!' as the escape character.
func EscapeLike(value string) string {
	replacer := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return replacer.Replace(value)
}

func applyOrder(query *gorm.DB, order PostOrder) *gorm.DB {
	switch order {
	case OrderEarly:
		return query.Order("posts.publish_time asc").Order("posts.id asc")
	case OrderPopular:
		return query.
			Order("(SELECT COUNT(*) FROM post_comments WHERE post_comments.post_id = posts.id AND post_comments.deleted_at IS NULL) desc").
			Order("posts.id desc")
	case OrderBest:
		return query.
			Order("(SELECT COUNT(*) FROM post_votes WHERE post_votes.post_id = posts.id AND post_votes.value > 0) desc").
			Order("posts.id desc")
	default:
		return query.Order("posts.publish_time desc").Order("posts.id desc")
	}
}

func yearExpression(dialect string) string {
	switch dialect {
	case "postgres":
		return "CAST(EXTRACT(YEAR FROM posts.publish_time) AS INTEGER)"
	case "mysql":
		return "YEAR(posts.publish_time)"
	default:
		return "CAST(strftime('%Y', posts.publish_time) AS INTEGER)"
	}
}

// ensureTags trims and de-duplicates names, creates missing tags and returns them in input order.
func ensureTags(tx *gorm.DB, names []string) ([]db.Tag, error) {
	cleaned := NormalizeTagNames(names)
	if len(cleaned) == 0 {
		return nil, nil
	}

	for _, name := range cleaned {
		tag := db.Tag{Name: name}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&tag).Error; err != nil {
			return nil, fmt.Errorf("create tag %q: %w", name, err)
		}
	}

	var found []db.Tag
	if err := tx.Where("name IN ?", cleaned).Find(&found).Error; err != nil {
		return nil, err
	}

	byName := make(map[string]db.Tag, len(found))
	for _, tag := range found {
		byName[tag.Name] = tag
	}
	ordered := make([]db.Tag, 0, len(cleaned))
	for _, name := range cleaned {
		if tag, ok := byName[name]; ok {
			ordered = append(ordered, tag)
		}
	}
	return ordered, nil
}

// NormalizeTagNames trims names, drops empty ones and collapses duplicates.
func NormalizeTagNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	cleaned := make([]string, 0, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		cleaned = append(cleaned, name)
	}
	return cleaned
}
