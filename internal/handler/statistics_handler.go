package handler

import (
	"net/http"

	"github.com/Choos37ricK/blog-engine/internal/service"
	"github.com/gin-gonic/gin"
)

func statisticsResponse(stats service.Statistics) gin.H {
	var first interface{}
	if stats.FirstPublication != nil {
		first = stats.FirstPublication.Unix()
	}
	return gin.H{
		"postsCount":       stats.PostsCount,
		"likesCount":       stats.LikesCount,
		"dislikesCount":    stats.DislikesCount,
		"viewsCount":       stats.ViewsCount,
		"firstPublication": first,
	}
}

// MyStatistics reports aggregates over the current user's posts.
func (a *API) MyStatistics(c *gin.Context) {
	stats, err := a.stats.AuthorStatistics(c.Request.Context(), viewerFrom(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, statisticsResponse(stats))
}

// AllStatistics reports aggregates over every publicly visible post.
func (a *API) AllStatistics(c *gin.Context) {
	stats, err := a.stats.GlobalStatistics(c.Request.Context(), viewerFrom(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, statisticsResponse(stats))
}
