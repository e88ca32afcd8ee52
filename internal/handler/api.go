package handler

import (
	"github.com/Choos37ricK/blog-engine/internal/config"
	"github.com/Choos37ricK/blog-engine/internal/repository"
	"github.com/Choos37ricK/blog-engine/internal/service"
	"github.com/Choos37ricK/blog-engine/internal/session"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db       *gorm.DB
	auth     *service.AuthService
	posts    *service.PostService
	listing  *service.ListingService
	votes    *service.VoteService
	comments *service.CommentService
	tags     *service.TagService
	stats    *service.StatisticsService
	calendar *service.CalendarService
	settings *service.SystemSettingService
}

// NewAPI constructs a handler set with shared services.
func NewAPI(db *gorm.DB, sessions session.Directory, policy config.Policy) *API {
	repo := repository.NewPostRepository(db)
	settingsService := service.NewSystemSettingService(db)

	return &API{
		db:       db,
		auth:     service.NewAuthService(db, sessions),
		posts:    service.NewPostService(repo, settingsService, policy),
		listing:  service.NewListingService(repo, policy),
		votes:    service.NewVoteService(db, repo),
		comments: service.NewCommentService(db, repo, policy),
		tags:     service.NewTagService(db, policy),
		stats:    service.NewStatisticsService(db, settingsService),
		calendar: service.NewCalendarService(repo),
		settings: settingsService,
	}
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}
