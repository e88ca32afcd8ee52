package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Choos37ricK/blog-engine/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var baseTime = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func setupRepositoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("sqlite://file:post-repository-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := db.Init(dsn, logger.Silent)
	if err != nil {
		t.Fatalf("failed to init test database: %v", err)
	}
	return gdb
}

func createUser(t *testing.T, gdb *gorm.DB, email string) db.User {
	t.Helper()
	user := db.User{Name: email, Email: email, Password: "x"}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func createPost(t *testing.T, repo *GormPostRepository, post db.Post, tags ...string) db.Post {
	t.Helper()
	if post.ModerationStatus == "" {
		post.ModerationStatus = db.ModerationAccepted
	}
	if post.PublishTime.IsZero() {
		post.PublishTime = baseTime
	}
	if post.Title == "" {
		post.Title = "title"
	}
	if post.Text == "" {
		post.Text = "text"
	}
	if err := repo.Create(context.Background(), &post, tags); err != nil {
		t.Fatalf("create post: %v", err)
	}
	return post
}

func visibleCriteria() PostCriteria {
	now := baseTime.Add(time.Hour)
	return PostCriteria{VisibleAt: &now}
}

func TestVisibleCriteriaExcludesHiddenPosts(t *testing.T) {
	gdb := setupRepositoryTestDB(t)
	repo := NewPostRepository(gdb)
	author := createUser(t, gdb, "a@example.com")

	visible := createPost(t, repo, db.Post{AuthorID: author.ID, IsActive: true, Title: "visible"})
	createPost(t, repo, db.Post{AuthorID: author.ID, IsActive: false})
	createPost(t, repo, db.Post{AuthorID: author.ID, IsActive: true, ModerationStatus: db.ModerationNew})
	createPost(t, repo, db.Post{AuthorID: author.ID, IsActive: true, ModerationStatus: db.ModerationDeclined})
	createPost(t, repo, db.Post{AuthorID: author.ID, IsActive: true, PublishTime: baseTime.Add(48 * time.Hour)})
	deleted := createPost(t, repo, db.Post{AuthorID: author.ID, IsActive: true})
	if err := gdb.Delete(&db.Post{}, deleted.ID).Error; err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	posts, err := repo.Find(context.Background(), visibleCriteria(), OrderRecent, Page{Limit: 10})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(posts) != 1 || posts[0].ID != visible.ID {
		t.Fatalf("expected only the visible post, got %+v", posts)
	}
	if posts[0].Author.Email != "a@example.com" {
		t.Fatalf("expected author to be preloaded, got %+v", posts[0].Author)
	}

	total, err := repo.Count(context.Background(), visibleCriteria())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected total 1, got %d", total)
	}
}

func TestFindPaginatesInQuery(t *testing.T) {
	gdb := setupRepositoryTestDB(t)
	repo := NewPostRepository(gdb)
	author := createUser(t, gdb, "p@example.com")

	for i := 0; i < 25; i++ {
		createPost(t, repo, db.Post{
			AuthorID:    author.ID,
			IsActive:    true,
			PublishTime: baseTime.Add(-time.Duration(i) * time.Minute),
			Title:       fmt.Sprintf("post %02d", i),
		})
	}

	tests := []struct {
		name      string
		page      Page
		wantCount int
		wantFirst string
	}{
		{name: "first page", page: Page{Offset: 0, Limit: 10}, wantCount: 10, wantFirst: "post 00"},
		{name: "last page", page: Page{Offset: 20, Limit: 10}, wantCount: 5, wantFirst: "post 20"},
		{name: "unaligned offset", page: Page{Offset: 15, Limit: 10}, wantCount: 10, wantFirst: "post 10"},
		{name: "past the end", page: Page{Offset: 30, Limit: 10}, wantCount: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, err := repo.Find(context.Background(), visibleCriteria(), OrderRecent, tt.page)
			if err != nil {
				t.Fatalf("find: %v", err)
			}
			if len(posts) != tt.wantCount {
				t.Fatalf("expected %d posts, got %d", tt.wantCount, len(posts))
			}
			if tt.wantCount > 0 && posts[0].Title != tt.wantFirst {
				t.Fatalf("expected first %q, got %q", tt.wantFirst, posts[0].Title)
			}
		})
	}

	total, err := repo.Count(context.Background(), visibleCriteria())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if total != 25 {
		t.Fatalf("expected total 25, got %d", total)
	}
}

func TestOrdersAreStableAndIncludeZeroCounts(t *testing.T) {
	gdb := setupRepositoryTestDB(t)
	repo := NewPostRepository(gdb)
	author := createUser(t, gdb, "o@example.com")
	voter := createUser(t, gdb, "v@example.com")

	first := createPost(t, repo, db.Post{AuthorID: author.ID, IsActive: true})
	second := createPost(t, repo, db.Post{AuthorID: author.ID, IsActive: true})
	third := createPost(t, repo, db.Post{AuthorID: author.ID, IsActive: true})

	if err := gdb.Create(&db.PostComment{PostID: first.ID, AuthorID: voter.ID, Text: "comment one"}).Error; err != nil {
		t.Fatalf("create comment: %v", err)
	}
	if err := gdb.Create(&db.PostVote{PostID: second.ID, UserID: voter.ID, Value: db.VoteLike}).Error; err != nil {
		t.Fatalf("create vote: %v", err)
	}

	ids := func(posts []db.Post) []uint {
		out := make([]uint, 0, len(posts))
		for _, p := range posts {
			out = append(out, p.ID)
		}
		return out
	}

	tests := []struct {
		order PostOrder
		want  []uint
	}{
		{order: OrderRecent, want: []uint{third.ID, second.ID, first.ID}},
		{order: OrderEarly, want: []uint{first.ID, second.ID, third.ID}},
		{order: OrderPopular, want: []uint{first.ID, third.ID, second.ID}},
		{order: OrderBest, want: []uint{second.ID, third.ID, first.ID}},
	}

	for _, tt := range tests {
		t.Run(string(tt.order), func(t *testing.T) {
			for attempt := 0; attempt < 2; attempt++ {
				posts, err := repo.Find(context.Background(), visibleCriteria(), tt.order, Page{Limit: 10})
				if err != nil {
					t.Fatalf("find: %v", err)
				}
				got := ids(posts)
				if fmt.Sprint(got) != fmt.Sprint(tt.want) {
					t.Fatalf("expected %v, got %v", tt.want, got)
				}
			}
		})
	}
}

func TestCreateAndUpdateManageTags(t *testing.T) {
	gdb := setupRepositoryTestDB(t)
	repo := NewPostRepository(gdb)
	ctx := context.Background()
	author := createUser(t, gdb, "t@example.com")

	post := createPost(t, repo, db.Post{AuthorID: author.ID, IsActive: true}, "go", " go ", "", "web")
	if len(post.Tags) != 2 {
		t.Fatalf("expected 2 tags after normalisation, got %d", len(post.Tags))
	}

	other := createPost(t, repo, db.Post{AuthorID: author.ID, IsActive: true}, "go")

	var tagCount int64
	if err := gdb.Model(&db.Tag{}).Count(&tagCount).Error; err != nil {
		t.Fatalf("count tags: %v", err)
	}
	if tagCount != 2 {
		t.Fatalf("expected tags to be reused, got %d rows", tagCount)
	}

	post.Title = "renamed"
	if err := repo.Update(ctx, &post, []string{"web", "sql"}); err != nil {
		t.Fatalf("update: %v", err)
	}

	reloaded, err := repo.FindByID(ctx, post.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if reloaded.Title != "renamed" {
		t.Fatalf("expected title to be updated, got %q", reloaded.Title)
	}
	names := map[string]bool{}
	for _, name := range reloaded.TagNames() {
		names[name] = true
	}
	if len(names) != 2 || !names["web"] || !names["sql"] {
		t.Fatalf("expected tags web and sql, got %v", reloaded.TagNames())
	}

	byTag := visibleCriteria()
	byTag.Tag = "go"
	posts, err := repo.Find(ctx, byTag, OrderRecent, Page{Limit: 10})
	if err != nil {
		t.Fatalf("find by tag: %v", err)
	}
	if len(posts) != 1 || posts[0].ID != other.ID {
		t.Fatalf("expected only the other post tagged go, got %+v", posts)
	}

	if err := repo.Update(ctx, &post, nil); err != nil {
		t.Fatalf("clear tags: %v", err)
	}
	reloaded, _ = repo.FindByID(ctx, post.ID)
	if len(reloaded.Tags) != 0 {
		t.Fatalf("expected tags to be cleared, got %v", reloaded.TagNames())
	}
}

func TestUpdateClearsModerator(t *testing.T) {
	gdb := setupRepositoryTestDB(t)
	repo := NewPostRepository(gdb)
	ctx := context.Background()
	author := createUser(t, gdb, "m@example.com")
	moderator := createUser(t, gdb, "mod@example.com")

	post := createPost(t, repo, db.Post{AuthorID: author.ID, IsActive: true})
	if err := repo.SetModeration(ctx, post.ID, db.ModerationDeclined, moderator.ID); err != nil {
		t.Fatalf("set moderation: %v", err)
	}

	reloaded, _ := repo.FindByID(ctx, post.ID)
	if reloaded.ModeratorID == nil || *reloaded.ModeratorID != moderator.ID {
		t.Fatalf("expected moderator to be recorded, got %v", reloaded.ModeratorID)
	}

	reloaded.ModerationStatus = db.ModerationNew
	reloaded.ModeratorID = nil
	if err := repo.Update(ctx, reloaded, reloaded.TagNames()); err != nil {
		t.Fatalf("update: %v", err)
	}

	again, _ := repo.FindByID(ctx, post.ID)
	if again.ModeratorID != nil || again.ModerationStatus != db.ModerationNew {
		t.Fatalf("expected NEW without moderator, got %s %v", again.ModerationStatus, again.ModeratorID)
	}

	if err := repo.SetModeration(ctx, 9999, db.ModerationAccepted, moderator.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestQueryFilterMatchesSubstring(t *testing.T) {
	gdb := setupRepositoryTestDB(t)
	repo := NewPostRepository(gdb)
	author := createUser(t, gdb, "q@example.com")

	match := createPost(t, repo, db.Post{AuthorID: author.ID, IsActive: true, Title: "Learning Go", Text: "body"})
	createPost(t, repo, db.Post{AuthorID: author.ID, IsActive: true, Title: "Other", Text: "100 percent"})
	percent := createPost(t, repo, db.Post{AuthorID: author.ID, IsActive: true, Title: "Stats", Text: "grew 50% today"})

	search := func(q string) []db.Post {
		criteria := visibleCriteria()
		criteria.Query = q
		posts, err := repo.Find(context.Background(), criteria, OrderRecent, Page{Limit: 10})
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		return posts
	}

	if got := search("go"); len(got) != 1 || got[0].ID != match.ID {
		t.Fatalf("expected case-insensitive title match, got %+v", got)
	}
	if got := search("0%"); len(got) != 1 || got[0].ID != percent.ID {
		t.Fatalf("expected literal percent match, got %+v", got)
	}
}

func TestCountersAndViewIncrement(t *testing.T) {
	gdb := setupRepositoryTestDB(t)
	repo := NewPostRepository(gdb)
	ctx := context.Background()
	author := createUser(t, gdb, "c@example.com")
	u1 := createUser(t, gdb, "u1@example.com")
	u2 := createUser(t, gdb, "u2@example.com")

	post := createPost(t, repo, db.Post{AuthorID: author.ID, IsActive: true})
	empty := createPost(t, repo, db.Post{AuthorID: author.ID, IsActive: true})

	gdb.Create(&db.PostVote{PostID: post.ID, UserID: u1.ID, Value: db.VoteLike})
	gdb.Create(&db.PostVote{PostID: post.ID, UserID: u2.ID, Value: db.VoteDislike})
	gdb.Create(&db.PostComment{PostID: post.ID, AuthorID: u1.ID, Text: "first comment"})

	counters, err := repo.Counters(ctx, []uint{post.ID, empty.ID})
	if err != nil {
		t.Fatalf("counters: %v", err)
	}
	if got := counters[post.ID]; got != (PostCounters{Likes: 1, Dislikes: 1, Comments: 1}) {
		t.Fatalf("unexpected counters %+v", got)
	}
	if got, ok := counters[empty.ID]; !ok || got != (PostCounters{}) {
		t.Fatalf("expected zero counters for empty post, got %+v", got)
	}

	for i := 0; i < 3; i++ {
		if err := repo.IncrementViewCount(ctx, post.ID); err != nil {
			t.Fatalf("increment: %v", err)
		}
	}
	reloaded, _ := repo.FindByID(ctx, post.ID)
	if reloaded.ViewCount != 3 {
		t.Fatalf("expected 3 views, got %d", reloaded.ViewCount)
	}

	if err := repo.IncrementViewCount(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPublicationYearsAndPublishTimes(t *testing.T) {
	gdb := setupRepositoryTestDB(t)
	repo := NewPostRepository(gdb)
	ctx := context.Background()
	author := createUser(t, gdb, "y@example.com")

	createPost(t, repo, db.Post{AuthorID: author.ID, IsActive: true, PublishTime: time.Date(2022, 3, 1, 9, 0, 0, 0, time.UTC)})
	createPost(t, repo, db.Post{AuthorID: author.ID, IsActive: true, PublishTime: time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)})
	createPost(t, repo, db.Post{AuthorID: author.ID, IsActive: true, PublishTime: time.Date(2024, 1, 2, 18, 0, 0, 0, time.UTC)})
	createPost(t, repo, db.Post{AuthorID: author.ID, IsActive: false, PublishTime: time.Date(2023, 6, 1, 9, 0, 0, 0, time.UTC)})

	years, err := repo.PublicationYears(ctx, baseTime)
	if err != nil {
		t.Fatalf("years: %v", err)
	}
	if fmt.Sprint(years) != "[2022 2024]" {
		t.Fatalf("expected [2022 2024], got %v", years)
	}

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	until := from.AddDate(1, 0, 0)
	criteria := PostCriteria{VisibleAt: &baseTime, PublishedFrom: &from, PublishedUntil: &until}
	times, err := repo.PublishTimes(ctx, criteria)
	if err != nil {
		t.Fatalf("publish times: %v", err)
	}
	if len(times) != 2 {
		t.Fatalf("expected 2 publish times, got %d", len(times))
	}
	if !times[0].Equal(time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected first time %v", times[0])
	}
}

func TestParsePostOrderAndPageOffset(t *testing.T) {
	if order, ok := ParsePostOrder(" Popular "); !ok || order != OrderPopular {
		t.Fatalf("expected popular, got %q %v", order, ok)
	}
	if _, ok := ParsePostOrder("random"); ok {
		t.Fatalf("expected unknown mode to be rejected")
	}
	if got := (Page{Offset: 25, Limit: 10}).SQLOffset(); got != 20 {
		t.Fatalf("expected offset 20, got %d", got)
	}
}
