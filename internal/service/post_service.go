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
	"github.com/Choos37ricK/blog-engine/internal/metrics"
	"github.com/Choos37ricK/blog-engine/internal/repository"
)

// Moderation decisions accepted by Moderate.
const (
	DecisionAccept  = "accept"
	DecisionDecline = "decline"
)

// PostService owns the post lifecycle: creation, editing, moderation and guarded retrieval.
type PostService struct {
	repo     repository.PostRepository
	settings SettingsProvider
	policy   config.Policy
	now      func() time.Time
}

// PostInput represents fields accepted when creating or updating a post.
type PostInput struct {
	Active      bool
	PublishTime time.Time
	Title       string
	Text        string
	Tags        []string
}

// NewPostService creates a PostService instance.
func NewPostService(repo repository.PostRepository, settings SettingsProvider, policy config.Policy) *PostService {
	return &PostService{repo: repo, settings: settings, policy: policy, now: utcNow}
}

// SetClock 替换时间源，主要面向测试场景。
func (s *PostService) SetClock(now func() time.Time) {
	if now == nil {
		s.now = utcNow
		return
	}
	s.now = now
}

// ResolveVisiblePost returns the post if viewer may see it. Missing and hidden posts are
// indistinguishable. Every successful retrieval by someone other than the author counts as a view.
func (s *PostService) ResolveVisiblePost(ctx context.Context, viewer Viewer, id uint) (*db.Post, error) {
	post, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if !CanView(post, viewer, s.now()) {
		return nil, ErrPostNotFound
	}

	if viewer.Anonymous() || viewer.ID != post.AuthorID {
		if err := s.repo.IncrementViewCount(ctx, post.ID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrPostNotFound
			}
			return nil, fmt.Errorf("count view: %w", err)
		}
		post.ViewCount++
		metrics.PostViews.Inc()
	}

	return post, nil
}

// Create validates and stores a new post authored by viewer.
func (s *PostService) Create(ctx context.Context, viewer Viewer, input PostInput) (*db.Post, error) {
	if viewer.Anonymous() {
		return nil, ErrNotAuthorized
	}

	settings, err := s.settings.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	if !viewer.Moderator && !settings.MultiuserMode {
		return nil, ErrPublishingDisabled
	}

	if err := s.validate(input); err != nil {
		return nil, err
	}

	status := db.ModerationNew
	if viewer.Moderator || !settings.PostPremoderation {
		status = db.ModerationAccepted
	}

	post := &db.Post{
		IsActive:         input.Active,
		ModerationStatus: status,
		AuthorID:         viewer.ID,
		PublishTime:      normalizePublishTime(input.PublishTime, s.now()),
		Title:            strings.TrimSpace(input.Title),
		Text:             input.Text,
	}

	if err := s.repo.Create(ctx, post, input.Tags); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	metrics.PostsSubmitted.WithLabelValues("create", string(status)).Inc()
	return post, nil
}

// Edit updates a post. Only the author or a moderator may edit; an edit by a regular user sends
// the post back to moderation unless premoderation is switched off.
func (s *PostService) Edit(ctx context.Context, viewer Viewer, id uint, input PostInput) (*db.Post, error) {
	if viewer.Anonymous() {
		return nil, ErrNotAuthorized
	}

	post, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != viewer.ID && !viewer.Moderator {
		return nil, ErrForbidden
	}

	if err := s.validate(input); err != nil {
		return nil, err
	}

	settings, err := s.settings.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	switch {
	case !settings.PostPremoderation:
		post.ModerationStatus = db.ModerationAccepted
	case !viewer.Moderator:
		post.ModerationStatus = db.ModerationNew
		post.ModeratorID = nil
	}

	post.IsActive = input.Active
	post.PublishTime = normalizePublishTime(input.PublishTime, s.now())
	post.Title = strings.TrimSpace(input.Title)
	post.Text = input.Text

	if err := s.repo.Update(ctx, post, input.Tags); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("update post: %w", err)
	}

	metrics.PostsSubmitted.WithLabelValues("edit", string(post.ModerationStatus)).Inc()
	return post, nil
}

// Moderate applies a moderator decision to a post.
func (s *PostService) Moderate(ctx context.Context, viewer Viewer, id uint, decision string) error {
	if viewer.Anonymous() {
		return ErrNotAuthorized
	}
	if !viewer.Moderator {
		return ErrForbidden
	}

	var status db.ModerationStatus
	switch strings.ToLower(strings.TrimSpace(decision)) {
	case DecisionAccept:
		status = db.ModerationAccepted
	case DecisionDecline:
		status = db.ModerationDeclined
	default:
		return fieldError("decision", "decision must be accept or decline")
	}

	if err := s.repo.SetModeration(ctx, id, status, viewer.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPostNotFound
		}
		return fmt.Errorf("moderate post: %w", err)
	}

	metrics.ModerationDecisions.WithLabelValues(string(status)).Inc()
	return nil
}

// Counters returns the vote and comment tallies of a post.
func (s *PostService) Counters(ctx context.Context, id uint) (repository.PostCounters, error) {
	counters, err := s.repo.Counters(ctx, []uint{id})
	if err != nil {
		return repository.PostCounters{}, fmt.Errorf("load counters: %w", err)
	}
	return counters[id], nil
}

func (s *PostService) find(ctx context.Context, id uint) (*db.Post, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}

func (s *PostService) validate(input PostInput) error {
	verr := NewValidationError()

	title := strings.TrimSpace(input.Title)
	switch {
	case title == "":
		verr.Add("title", "title is required")
	case utf8.RuneCountInString(title) < s.policy.TitleMinLength:
		verr.Add("title", fmt.Sprintf("title must be at least %d characters", s.policy.TitleMinLength))
	}

	text := strings.TrimSpace(input.Text)
	switch {
	case text == "":
		verr.Add("text", "text is required")
	case utf8.RuneCountInString(text) < s.policy.TextMinLength:
		verr.Add("text", fmt.Sprintf("text must be at least %d characters", s.policy.TextMinLength))
	}

	return verr.Err()
}
