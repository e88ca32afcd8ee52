package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Choos37ricK/blog-engine/internal/config"
	"github.com/Choos37ricK/blog-engine/internal/db"
	"github.com/Choos37ricK/blog-engine/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mockPostRepository struct {
	mock.Mock
}

func (m *mockPostRepository) FindByID(ctx context.Context, id uint) (*db.Post, error) {
	args := m.Called(ctx, id)
	post, _ := args.Get(0).(*db.Post)
	return post, args.Error(1)
}

func (m *mockPostRepository) Find(ctx context.Context, criteria repository.PostCriteria, order repository.PostOrder, page repository.Page) ([]db.Post, error) {
	args := m.Called(ctx, criteria, order, page)
	posts, _ := args.Get(0).([]db.Post)
	return posts, args.Error(1)
}

func (m *mockPostRepository) Count(ctx context.Context, criteria repository.PostCriteria) (int64, error) {
	args := m.Called(ctx, criteria)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockPostRepository) Create(ctx context.Context, post *db.Post, tags []string) error {
	return m.Called(ctx, post, tags).Error(0)
}

func (m *mockPostRepository) Update(ctx context.Context, post *db.Post, tags []string) error {
	return m.Called(ctx, post, tags).Error(0)
}

func (m *mockPostRepository) IncrementViewCount(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockPostRepository) SetModeration(ctx context.Context, id uint, status db.ModerationStatus, moderatorID uint) error {
	return m.Called(ctx, id, status, moderatorID).Error(0)
}

func (m *mockPostRepository) Counters(ctx context.Context, ids []uint) (map[uint]repository.PostCounters, error) {
	args := m.Called(ctx, ids)
	counters, _ := args.Get(0).(map[uint]repository.PostCounters)
	return counters, args.Error(1)
}

func (m *mockPostRepository) PublicationYears(ctx context.Context, visibleAt time.Time) ([]int, error) {
	args := m.Called(ctx, visibleAt)
	years, _ := args.Get(0).([]int)
	return years, args.Error(1)
}

func (m *mockPostRepository) PublishTimes(ctx context.Context, criteria repository.PostCriteria) ([]time.Time, error) {
	args := m.Called(ctx, criteria)
	times, _ := args.Get(0).([]time.Time)
	return times, args.Error(1)
}

type staticSettings SystemSettings

func (s staticSettings) GetSettings(context.Context) (SystemSettings, error) {
	return SystemSettings(s), nil
}

func TestCanViewMatrix(t *testing.T) {
	const authorID, moderatorID, strangerID = 1, 2, 3
	author := Viewer{ID: authorID}
	moderator := Viewer{ID: moderatorID, Moderator: true}
	stranger := Viewer{ID: strangerID}
	anonymous := Viewer{}

	public := db.Post{IsActive: true, ModerationStatus: db.ModerationAccepted, AuthorID: authorID, PublishTime: testNow.Add(-time.Hour)}

	tests := []struct {
		name   string
		mutate func(*db.Post)
		public bool
		author bool
		mod    bool
	}{
		{name: "published", mutate: func(*db.Post) {}, public: true, author: true, mod: true},
		{name: "inactive", mutate: func(p *db.Post) { p.IsActive = false }, public: false, author: true, mod: false},
		{name: "new", mutate: func(p *db.Post) { p.ModerationStatus = db.ModerationNew }, public: false, author: true, mod: true},
		{name: "declined", mutate: func(p *db.Post) { p.ModerationStatus = db.ModerationDeclined }, public: false, author: true, mod: true},
		{name: "scheduled", mutate: func(p *db.Post) { p.PublishTime = testNow.Add(time.Hour) }, public: false, author: true, mod: true},
		{name: "publish time equals now", mutate: func(p *db.Post) { p.PublishTime = testNow }, public: true, author: true, mod: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post := public
			tt.mutate(&post)

			assert.Equal(t, tt.public, IsPubliclyVisible(&post, testNow))
			assert.Equal(t, tt.public, CanView(&post, anonymous, testNow))
			assert.Equal(t, tt.public, CanView(&post, stranger, testNow))
			assert.Equal(t, tt.author, CanView(&post, author, testNow))
			assert.Equal(t, tt.mod, CanView(&post, moderator, testNow))
		})
	}

	assert.False(t, CanView(nil, moderator, testNow))
}

func TestResolveVisiblePostCountsOneViewPerRequest(t *testing.T) {
	repo := new(mockPostRepository)
	svc := NewPostService(repo, staticSettings{}, config.DefaultPolicy())
	svc.SetClock(fixedClock)
	ctx := context.Background()

	post := &db.Post{
		Model:            gorm.Model{ID: 10},
		IsActive:         true,
		ModerationStatus: db.ModerationAccepted,
		AuthorID:         1,
		PublishTime:      testNow.Add(-time.Hour),
		ViewCount:        4,
	}
	repo.On("FindByID", ctx, uint(10)).Return(post, nil).Once()
	repo.On("IncrementViewCount", ctx, uint(10)).Return(nil).Once()

	got, err := svc.ResolveVisiblePost(ctx, Viewer{}, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), got.ViewCount)
	repo.AssertExpectations(t)
}

func TestResolveVisiblePostAuthorDoesNotCount(t *testing.T) {
	repo := new(mockPostRepository)
	svc := NewPostService(repo, staticSettings{}, config.DefaultPolicy())
	svc.SetClock(fixedClock)
	ctx := context.Background()

	post := &db.Post{Model: gorm.Model{ID: 11}, AuthorID: 7, ModerationStatus: db.ModerationNew}
	repo.On("FindByID", ctx, uint(11)).Return(post, nil).Once()

	_, err := svc.ResolveVisiblePost(ctx, Viewer{ID: 7}, 11)
	require.NoError(t, err)
	repo.AssertNotCalled(t, "IncrementViewCount", mock.Anything, mock.Anything)
}

func TestResolveVisiblePostMergesMissingAndHidden(t *testing.T) {
	repo := new(mockPostRepository)
	svc := NewPostService(repo, staticSettings{}, config.DefaultPolicy())
	svc.SetClock(fixedClock)
	ctx := context.Background()

	hidden := &db.Post{Model: gorm.Model{ID: 12}, AuthorID: 7, IsActive: false, ModerationStatus: db.ModerationAccepted}
	repo.On("FindByID", ctx, uint(12)).Return(hidden, nil)
	repo.On("FindByID", ctx, uint(13)).Return(nil, repository.ErrNotFound)

	_, hiddenErr := svc.ResolveVisiblePost(ctx, Viewer{ID: 8}, 12)
	_, missingErr := svc.ResolveVisiblePost(ctx, Viewer{ID: 8}, 13)

	assert.True(t, errors.Is(hiddenErr, ErrPostNotFound))
	assert.True(t, errors.Is(missingErr, ErrPostNotFound))
	assert.Equal(t, hiddenErr, missingErr)
	repo.AssertNotCalled(t, "IncrementViewCount", mock.Anything, mock.Anything)
}

func TestCreateUsesSettingsForInitialStatus(t *testing.T) {
	tests := []struct {
		name          string
		viewer        Viewer
		premoderation bool
		want          db.ModerationStatus
	}{
		{name: "regular with premoderation", viewer: Viewer{ID: 1}, premoderation: true, want: db.ModerationNew},
		{name: "regular without premoderation", viewer: Viewer{ID: 1}, premoderation: false, want: db.ModerationAccepted},
		{name: "moderator", viewer: Viewer{ID: 2, Moderator: true}, premoderation: true, want: db.ModerationAccepted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockPostRepository)
			settings := staticSettings{MultiuserMode: true, PostPremoderation: tt.premoderation}
			svc := NewPostService(repo, settings, config.DefaultPolicy())
			svc.SetClock(fixedClock)

			repo.On("Create", mock.Anything, mock.AnythingOfType("*db.Post"), []string{"go"}).Return(nil).Once()

			input := validInput("Status check")
			input.Tags = []string{"go"}
			post, err := svc.Create(context.Background(), tt.viewer, input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, post.ModerationStatus)
			assert.Equal(t, tt.viewer.ID, post.AuthorID)
			repo.AssertExpectations(t)
		})
	}
}
