package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/Choos37ricK/blog-engine/internal/repository"
	"github.com/Choos37ricK/blog-engine/internal/service"
	"github.com/gin-gonic/gin"
)

type postPayload struct {
	Timestamp int64    `json:"timestamp"`
	Active    bool     `json:"active"`
	Title     string   `json:"title"`
	Tags      []string `json:"tags"`
	Text      string   `json:"text"`
}

func (p postPayload) toInput() service.PostInput {
	input := service.PostInput{
		Active: p.Active,
		Title:  p.Title,
		Text:   p.Text,
		Tags:   p.Tags,
	}
	if p.Timestamp > 0 {
		input.PublishTime = time.Unix(p.Timestamp, 0).UTC()
	}
	return input
}

type votePayload struct {
	PostID uint `json:"post_id"`
}

type moderationPayload struct {
	PostID   uint   `json:"post_id"`
	Decision string `json:"decision"`
}

func postListResponse(page *service.PostPage) gin.H {
	posts := make([]gin.H, 0, len(page.Posts))
	for _, post := range page.Posts {
		posts = append(posts, gin.H{
			"id":           post.ID,
			"timestamp":    post.Time.Unix(),
			"user":         gin.H{"id": post.AuthorID, "name": post.AuthorName},
			"title":        post.Title,
			"announce":     post.Announce,
			"likeCount":    post.Likes,
			"dislikeCount": post.Dislikes,
			"commentCount": post.Comments,
			"viewCount":    post.Views,
		})
	}
	return gin.H{"count": page.Total, "posts": posts}
}

func (a *API) respondPostPage(c *gin.Context, page *service.PostPage, err error) {
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, postListResponse(page))
}

// ListPosts 按 mode 排序返回公开文章。
func (a *API) ListPosts(c *gin.Context) {
	page, ok := parsePage(c)
	if !ok {
		return
	}
	mode := strings.TrimSpace(c.Query("mode"))
	if mode == "" {
		mode = string(repository.OrderRecent)
	}
	result, err := a.listing.ByMode(c.Request.Context(), mode, page)
	a.respondPostPage(c, result, err)
}

// SearchPosts 按标题或正文子串搜索。
func (a *API) SearchPosts(c *gin.Context) {
	page, ok := parsePage(c)
	if !ok {
		return
	}
	result, err := a.listing.Search(c.Request.Context(), c.Query("query"), page)
	a.respondPostPage(c, result, err)
}

// PostsByDate lists posts published on a given day.
func (a *API) PostsByDate(c *gin.Context) {
	page, ok := parsePage(c)
	if !ok {
		return
	}
	result, err := a.listing.ByDate(c.Request.Context(), c.Query("date"), page)
	a.respondPostPage(c, result, err)
}

// PostsByTag lists posts carrying a tag.
func (a *API) PostsByTag(c *gin.Context) {
	page, ok := parsePage(c)
	if !ok {
		return
	}
	result, err := a.listing.ByTag(c.Request.Context(), c.Query("tag"), page)
	a.respondPostPage(c, result, err)
}

// ModerationPosts lists the moderation queue.
func (a *API) ModerationPosts(c *gin.Context) {
	page, ok := parsePage(c)
	if !ok {
		return
	}
	result, err := a.listing.ModerationQueue(c.Request.Context(), viewerFrom(c), c.Query("status"), page)
	a.respondPostPage(c, result, err)
}

// MyPosts lists the current user's posts.
func (a *API) MyPosts(c *gin.Context) {
	page, ok := parsePage(c)
	if !ok {
		return
	}
	result, err := a.listing.MyPosts(c.Request.Context(), viewerFrom(c), c.Query("status"), page)
	a.respondPostPage(c, result, err)
}

// GetPost 返回单篇文章详情，包括渲染后的正文、标签和评论。
func (a *API) GetPost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusNotFound, service.ErrPostNotFound.Error())
		return
	}

	ctx := c.Request.Context()
	post, err := a.posts.ResolveVisiblePost(ctx, viewerFrom(c), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	counters, err := a.posts.Counters(ctx, post.ID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	comments, err := a.comments.ListComments(ctx, post.ID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	commentItems := make([]gin.H, 0, len(comments))
	for _, comment := range comments {
		item := gin.H{
			"id":        comment.ID,
			"timestamp": comment.CreatedAt.Unix(),
			"text":      comment.Text,
			"user":      gin.H{"id": comment.AuthorID, "name": comment.Author.Name},
		}
		if comment.ParentID != nil {
			item["parent_id"] = *comment.ParentID
		}
		commentItems = append(commentItems, item)
	}

	c.JSON(http.StatusOK, gin.H{
		"id":           post.ID,
		"timestamp":    post.PublishTime.Unix(),
		"active":       post.IsActive,
		"status":       post.ModerationStatus,
		"user":         gin.H{"id": post.AuthorID, "name": post.Author.Name},
		"title":        post.Title,
		"text":         renderPostText(post.Text),
		"likeCount":    counters.Likes,
		"dislikeCount": counters.Dislikes,
		"viewCount":    post.ViewCount,
		"comments":     commentItems,
		"tags":         post.TagNames(),
	})
}

// CreatePost 创建新文章
func (a *API) CreatePost(c *gin.Context) {
	var payload postPayload
	if !bindJSON(c, &payload) {
		return
	}

	post, err := a.posts.Create(c.Request.Context(), viewerFrom(c), payload.toInput())
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": true, "id": post.ID, "status": post.ModerationStatus})
}

// UpdatePost 更新文章
func (a *API) UpdatePost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusNotFound, service.ErrPostNotFound.Error())
		return
	}

	var payload postPayload
	if !bindJSON(c, &payload) {
		return
	}

	post, err := a.posts.Edit(c.Request.Context(), viewerFrom(c), id, payload.toInput())
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": true, "id": post.ID, "status": post.ModerationStatus})
}

// LikePost records a like.
func (a *API) LikePost(c *gin.Context) {
	a.vote(c, 1)
}

// DislikePost records a dislike.
func (a *API) DislikePost(c *gin.Context) {
	a.vote(c, -1)
}

func (a *API) vote(c *gin.Context, value int) {
	var payload votePayload
	if !bindJSON(c, &payload) {
		return
	}

	outcome, err := a.votes.Vote(c.Request.Context(), viewerFrom(c), payload.PostID, value)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": true, "outcome": outcome})
}

// ModeratePost applies a moderator decision.
func (a *API) ModeratePost(c *gin.Context) {
	var payload moderationPayload
	if !bindJSON(c, &payload) {
		return
	}

	if err := a.posts.Moderate(c.Request.Context(), viewerFrom(c), payload.PostID, payload.Decision); err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": true})
}
