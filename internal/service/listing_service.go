package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Choos37ricK/blog-engine/internal/config"
	"github.com/Choos37ricK/blog-engine/internal/db"
	"github.com/Choos37ricK/blog-engine/internal/repository"
)

// Moderation queue statuses.
const (
	QueueNew      = "new"
	QueueDeclined = "declined"
	QueueAccepted = "accepted"
)

// Own post statuses.
const (
	MyPostsInactive  = "inactive"
	MyPostsPending   = "pending"
	MyPostsDeclined  = "declined"
	MyPostsPublished = "published"
)

// PostSummary is a listing row: the post plus derived counters.
type PostSummary struct {
	ID         uint
	Time       time.Time
	AuthorID   uint
	AuthorName string
	Title      string
	Announce   string
	Likes      int64
	Dislikes   int64
	Comments   int64
	Views      uint64
}

// PostPage is one page of a listing with the full match count.
type PostPage struct {
	Total int64
	Posts []PostSummary
}

// ListingService answers every paginated post query.
type ListingService struct {
	repo   repository.PostRepository
	policy config.Policy
	now    func() time.Time
}

// NewListingService creates a ListingService instance.
func NewListingService(repo repository.PostRepository, policy config.Policy) *ListingService {
	return &ListingService{repo: repo, policy: policy, now: utcNow}
}

// SetClock 替换时间源，主要面向测试场景。
func (s *ListingService) SetClock(now func() time.Time) {
	if now == nil {
		s.now = utcNow
		return
	}
	s.now = now
}

// ByMode lists visible posts in the order named by mode.
func (s *ListingService) ByMode(ctx context.Context, mode string, page repository.Page) (*PostPage, error) {
	order, ok := repository.ParsePostOrder(mode)
	if !ok {
		return nil, fieldError("mode", "mode must be one of recent, popular, best, early")
	}
	return s.list(ctx, s.visible(), order, page)
}

// ByTag lists visible posts carrying tag, newest first.
func (s *ListingService) ByTag(ctx context.Context, tag string, page repository.Page) (*PostPage, error) {
	name := strings.TrimSpace(tag)
	if name == "" {
		return nil, fieldError("tag", "tag is required")
	}
	criteria := s.visible()
	criteria.Tag = name
	return s.list(ctx, criteria, repository.OrderRecent, page)
}

// ByDate lists visible posts published on the given UTC day (YYYY-MM-DD).
func (s *ListingService) ByDate(ctx context.Context, date string, page repository.Page) (*PostPage, error) {
	day, err := time.ParseInLocation(calendarDateLayout, strings.TrimSpace(date), time.UTC)
	if err != nil {
		return nil, fieldError("date", "date must use the YYYY-MM-DD format")
	}
	next := day.AddDate(0, 0, 1)

	criteria := s.visible()
	criteria.PublishedFrom = &day
	criteria.PublishedUntil = &next
	return s.list(ctx, criteria, repository.OrderRecent, page)
}

// Search lists visible posts whose title or text contains query. An empty query lists everything.
func (s *ListingService) Search(ctx context.Context, query string, page repository.Page) (*PostPage, error) {
	criteria := s.visible()
	criteria.Query = strings.TrimSpace(query)
	return s.list(ctx, criteria, repository.OrderRecent, page)
}

// ModerationQueue lists posts for moderators: every active NEW post, or the active posts the
// viewer has already declined or accepted.
func (s *ListingService) ModerationQueue(ctx context.Context, viewer Viewer, status string, page repository.Page) (*PostPage, error) {
	if viewer.Anonymous() {
		return nil, ErrNotAuthorized
	}
	if !viewer.Moderator {
		return nil, ErrForbidden
	}

	active := true
	criteria := repository.PostCriteria{Active: &active}
	moderatorID := viewer.ID

	switch strings.ToLower(strings.TrimSpace(status)) {
	case QueueNew:
		criteria.Statuses = []db.ModerationStatus{db.ModerationNew}
	case QueueDeclined:
		criteria.Statuses = []db.ModerationStatus{db.ModerationDeclined}
		criteria.ModeratorID = &moderatorID
	case QueueAccepted:
		criteria.Statuses = []db.ModerationStatus{db.ModerationAccepted}
		criteria.ModeratorID = &moderatorID
	default:
		return nil, fieldError("status", "status must be one of new, declined, accepted")
	}

	return s.list(ctx, criteria, repository.OrderRecent, page)
}

// MyPosts lists the viewer's own posts by lifecycle state.
func (s *ListingService) MyPosts(ctx context.Context, viewer Viewer, status string, page repository.Page) (*PostPage, error) {
	if viewer.Anonymous() {
		return nil, ErrNotAuthorized
	}

	authorID := viewer.ID
	criteria := repository.PostCriteria{AuthorID: &authorID}
	active := true
	inactive := false

	switch strings.ToLower(strings.TrimSpace(status)) {
	case MyPostsInactive:
		criteria.Active = &inactive
	case MyPostsPending:
		criteria.Active = &active
		criteria.Statuses = []db.ModerationStatus{db.ModerationNew}
	case MyPostsDeclined:
		criteria.Active = &active
		criteria.Statuses = []db.ModerationStatus{db.ModerationDeclined}
	case MyPostsPublished:
		criteria.Active = &active
		criteria.Statuses = []db.ModerationStatus{db.ModerationAccepted}
	default:
		return nil, fieldError("status", "status must be one of inactive, pending, declined, published")
	}

	return s.list(ctx, criteria, repository.OrderRecent, page)
}

func (s *ListingService) visible() repository.PostCriteria {
	now := s.now()
	return repository.PostCriteria{VisibleAt: &now}
}

func (s *ListingService) list(ctx context.Context, criteria repository.PostCriteria, order repository.PostOrder, page repository.Page) (*PostPage, error) {
	if err := s.validatePage(page); err != nil {
		return nil, err
	}

	total, err := s.repo.Count(ctx, criteria)
	if err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}

	result := &PostPage{Total: total, Posts: []PostSummary{}}
	if total == 0 || int64(page.SQLOffset()) >= total {
		return result, nil
	}

	posts, err := s.repo.Find(ctx, criteria, order, page)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	ids := make([]uint, 0, len(posts))
	for _, post := range posts {
		ids = append(ids, post.ID)
	}
	counters, err := s.repo.Counters(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load counters: %w", err)
	}

	result.Posts = make([]PostSummary, 0, len(posts))
	for i := range posts {
		result.Posts = append(result.Posts, s.summarize(&posts[i], counters[posts[i].ID]))
	}
	return result, nil
}

func (s *ListingService) summarize(post *db.Post, counters repository.PostCounters) PostSummary {
	return PostSummary{
		ID:         post.ID,
		Time:       post.PublishTime,
		AuthorID:   post.AuthorID,
		AuthorName: post.Author.Name,
		Title:      post.Title,
		Announce:   Announce(post.Text, s.policy.AnnounceLength),
		Likes:      counters.Likes,
		Dislikes:   counters.Dislikes,
		Comments:   counters.Comments,
		Views:      post.ViewCount,
	}
}

func (s *ListingService) validatePage(page repository.Page) error {
	verr := NewValidationError()
	if page.Offset < 0 {
		verr.Add("offset", "offset must not be negative")
	}
	if page.Limit <= 0 {
		verr.Add("limit", "limit must be positive")
	} else if page.Limit > s.policy.MaxPageSize {
		verr.Add("limit", fmt.Sprintf("limit must not exceed %d", s.policy.MaxPageSize))
	}
	return verr.Err()
}
