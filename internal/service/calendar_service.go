package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Choos37ricK/blog-engine/internal/repository"
)

const calendarDateLayout = "2006-01-02"

// Calendar lists the years holding visible posts and per-day counts for one year.
type Calendar struct {
	Years []int
	Posts map[string]int64
}

// CalendarService builds the archive calendar.
type CalendarService struct {
	repo repository.PostRepository
	now  func() time.Time
}

// NewCalendarService creates a CalendarService instance.
func NewCalendarService(repo repository.PostRepository) *CalendarService {
	return &CalendarService{repo: repo, now: utcNow}
}

// SetClock 替换时间源，主要面向测试场景。
func (s *CalendarService) SetClock(now func() time.Time) {
	if now == nil {
		s.now = utcNow
		return
	}
	s.now = now
}

// Calendar returns the calendar for year; year 0 means the current year.
func (s *CalendarService) Calendar(ctx context.Context, year int) (*Calendar, error) {
	now := s.now().UTC()
	if year == 0 {
		year = now.Year()
	}
	if year < 1 || year > 9999 {
		return nil, fieldError("year", "year must be between 1 and 9999")
	}

	years, err := s.repo.PublicationYears(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("load publication years: %w", err)
	}

	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	until := from.AddDate(1, 0, 0)
	times, err := s.repo.PublishTimes(ctx, repository.PostCriteria{
		VisibleAt:      &now,
		PublishedFrom:  &from,
		PublishedUntil: &until,
	})
	if err != nil {
		return nil, fmt.Errorf("load publish times: %w", err)
	}

	posts := make(map[string]int64)
	for _, t := range times {
		posts[t.UTC().Format(calendarDateLayout)]++
	}

	if years == nil {
		years = []int{}
	}
	return &Calendar{Years: years, Posts: posts}, nil
}
