package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Choos37ricK/blog-engine/internal/config"
	"github.com/Choos37ricK/blog-engine/internal/db"
	"github.com/Choos37ricK/blog-engine/internal/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time {
	return testNow
}

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("sqlite://file:service-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := db.Init(dsn, logger.Silent)
	if err != nil {
		t.Fatalf("failed to init test database: %v", err)
	}
	return gdb
}

func createTestUser(t *testing.T, gdb *gorm.DB, email string, moderator bool) Viewer {
	t.Helper()
	user := db.User{Name: strings.Split(email, "@")[0], Email: email, Password: "x", IsModerator: moderator}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return ViewerFromUser(&user)
}

func setSwitches(t *testing.T, gdb *gorm.DB, multiuser, premoderation, statisticsPublic bool) {
	t.Helper()
	svc := NewSystemSettingService(gdb)
	if _, err := svc.UpdateSettings(context.Background(), Viewer{ID: 1, Moderator: true}, SystemSettingsInput{
		MultiuserMode:      multiuser,
		PostPremoderation:  premoderation,
		StatisticsIsPublic: statisticsPublic,
	}); err != nil {
		t.Fatalf("update settings: %v", err)
	}
}

// insertPost writes a post directly, bypassing the moderation rules.
func insertPost(t *testing.T, gdb *gorm.DB, post db.Post, tags ...string) db.Post {
	t.Helper()
	if post.ModerationStatus == "" {
		post.ModerationStatus = db.ModerationAccepted
	}
	if post.PublishTime.IsZero() {
		post.PublishTime = testNow.Add(-time.Hour)
	}
	if post.Title == "" {
		post.Title = "seeded post"
	}
	if post.Text == "" {
		post.Text = "seeded text"
	}
	if err := repository.NewPostRepository(gdb).Create(context.Background(), &post, tags); err != nil {
		t.Fatalf("insert post: %v", err)
	}
	return post
}

type testServices struct {
	db       *gorm.DB
	repo     *repository.GormPostRepository
	settings *SystemSettingService
	posts    *PostService
	listing  *ListingService
	votes    *VoteService
	comments *CommentService
	tags     *TagService
	stats    *StatisticsService
	calendar *CalendarService
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()
	gdb := setupServiceTestDB(t)
	policy := config.DefaultPolicy()
	repo := repository.NewPostRepository(gdb)
	settings := NewSystemSettingService(gdb)

	s := &testServices{
		db:       gdb,
		repo:     repo,
		settings: settings,
		posts:    NewPostService(repo, settings, policy),
		listing:  NewListingService(repo, policy),
		votes:    NewVoteService(gdb, repo),
		comments: NewCommentService(gdb, repo, policy),
		tags:     NewTagService(gdb, policy),
		stats:    NewStatisticsService(gdb, settings),
		calendar: NewCalendarService(repo),
	}
	s.posts.SetClock(fixedClock)
	s.listing.SetClock(fixedClock)
	s.votes.SetClock(fixedClock)
	s.comments.SetClock(fixedClock)
	s.tags.SetClock(fixedClock)
	s.stats.SetClock(fixedClock)
	s.calendar.SetClock(fixedClock)
	return s
}

func validInput(title string) PostInput {
	return PostInput{
		Active:      true,
		PublishTime: testNow.Add(-time.Minute),
		Title:       title,
		Text:        strings.Repeat("lorem ipsum ", 6),
	}
}
