package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Choos37ricK/blog-engine/internal/db"
	"github.com/Choos37ricK/blog-engine/internal/metrics"
	"github.com/Choos37ricK/blog-engine/internal/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VoteOutcome describes what a successful vote changed.
type VoteOutcome string

const (
	VoteCreated VoteOutcome = "created"
	VoteFlipped VoteOutcome = "flipped"
)

type voteKey struct {
	postID uint
	userID uint
}

// VoteService keeps at most one like or dislike per user and post.
type VoteService struct {
	db    *gorm.DB
	repo  repository.PostRepository
	locks *keyedMutex[voteKey]
	now   func() time.Time
}

// NewVoteService creates a VoteService instance.
func NewVoteService(gdb *gorm.DB, repo repository.PostRepository) *VoteService {
	return &VoteService{db: gdb, repo: repo, locks: newKeyedMutex[voteKey](), now: utcNow}
}

// SetClock 替换时间源，主要面向测试场景。
func (s *VoteService) SetClock(now func() time.Time) {
	if now == nil {
		s.now = utcNow
		return
	}
	s.now = now
}

// Like records a +1 vote.
func (s *VoteService) Like(ctx context.Context, viewer Viewer, postID uint) (VoteOutcome, error) {
	return s.Vote(ctx, viewer, postID, db.VoteLike)
}

// Dislike records a -1 vote.
func (s *VoteService) Dislike(ctx context.Context, viewer Viewer, postID uint) (VoteOutcome, error) {
	return s.Vote(ctx, viewer, postID, db.VoteDislike)
}

// Vote inserts a vote, flips an opposite one, or reports ErrAlreadyVoted when the same value is
// already stored. Writes are compare-and-swap so a concurrent change surfaces as ErrVoteConflict.
func (s *VoteService) Vote(ctx context.Context, viewer Viewer, postID uint, value int) (VoteOutcome, error) {
	if viewer.Anonymous() {
		return "", ErrNotAuthorized
	}
	if value != db.VoteLike && value != db.VoteDislike {
		return "", fieldError("value", "vote value must be 1 or -1")
	}

	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrPostNotFound
		}
		return "", err
	}
	if !CanView(post, viewer, s.now()) {
		return "", ErrPostNotFound
	}

	unlock := s.locks.Lock(voteKey{postID: postID, userID: viewer.ID})
	defer unlock()

	outcome, err := s.apply(ctx, postID, viewer.ID, value)
	if err != nil {
		return "", err
	}

	metrics.Votes.WithLabelValues(voteLabel(value), string(outcome)).Inc()
	return outcome, nil
}

func (s *VoteService) apply(ctx context.Context, postID, userID uint, value int) (VoteOutcome, error) {
	tx := s.db.WithContext(ctx)

	var existing db.PostVote
	err := tx.Where("post_id = ? AND user_id = ?", postID, userID).Take(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		vote := db.PostVote{PostID: postID, UserID: userID, Value: value}
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
			DoNothing: true,
		}).Create(&vote)
		if result.Error != nil {
			return "", fmt.Errorf("insert vote: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return "", ErrVoteConflict
		}
		return VoteCreated, nil
	case err != nil:
		return "", fmt.Errorf("load vote: %w", err)
	}

	if existing.Value == value {
		return "", ErrAlreadyVoted
	}

	result := tx.Model(&db.PostVote{}).
		Where("id = ? AND value = ?", existing.ID, existing.Value).
		Updates(map[string]interface{}{"value": value, "updated_at": s.now()})
	if result.Error != nil {
		return "", fmt.Errorf("flip vote: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return "", ErrVoteConflict
	}
	return VoteFlipped, nil
}

func voteLabel(value int) string {
	if value > 0 {
		return "like"
	}
	return "dislike"
}
