package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/Choos37ricK/blog-engine/internal/db"
	"github.com/Choos37ricK/blog-engine/internal/service"
	"github.com/gin-gonic/gin"
)

type commentPayload struct {
	ParentID *uint  `json:"parent_id"`
	PostID   uint   `json:"post_id"`
	Text     string `json:"text"`
}

type settingsPayload struct {
	MultiuserMode      bool `json:"MULTIUSER_MODE"`
	PostPremoderation  bool `json:"POST_PREMODERATION"`
	StatisticsIsPublic bool `json:"STATISTICS_IS_PUBLIC"`
}

func settingsResponse(settings service.SystemSettings) gin.H {
	return gin.H{
		db.SettingMultiuserMode:      settings.MultiuserMode,
		db.SettingPostPremoderation:  settings.PostPremoderation,
		db.SettingStatisticsIsPublic: settings.StatisticsIsPublic,
	}
}

// GetTags 返回带权重的标签云。
func (a *API) GetTags(c *gin.Context) {
	weights, err := a.tags.Cloud(c.Request.Context(), c.Query("query"))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	items := make([]gin.H, 0, len(weights))
	for _, w := range weights {
		items = append(items, gin.H{"name": w.Name, "weight": w.Weight})
	}
	c.JSON(http.StatusOK, gin.H{"tags": items})
}

// GetCalendar returns publication years and per-day counts for the requested year.
func (a *API) GetCalendar(c *gin.Context) {
	year := 0
	if raw := strings.TrimSpace(c.Query("year")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondValidation(c, map[string]string{"year": "year must be an integer"})
			return
		}
		year = parsed
	}

	calendar, err := a.calendar.Calendar(c.Request.Context(), year)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"years": calendar.Years, "posts": calendar.Posts})
}

// GetSettings 读取全站开关。
func (a *API) GetSettings(c *gin.Context) {
	settings, err := a.settings.GetSettings(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, settingsResponse(settings))
}

// UpdateSettings 保存全站开关，仅管理员可用。
func (a *API) UpdateSettings(c *gin.Context) {
	var payload settingsPayload
	if !bindJSON(c, &payload) {
		return
	}

	settings, err := a.settings.UpdateSettings(c.Request.Context(), viewerFrom(c), service.SystemSettingsInput(payload))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, settingsResponse(settings))
}

// AddComment stores a comment and returns its id.
func (a *API) AddComment(c *gin.Context) {
	var payload commentPayload
	if !bindJSON(c, &payload) {
		return
	}

	id, err := a.comments.AddComment(c.Request.Context(), viewerFrom(c), service.CommentInput{
		PostID:   payload.PostID,
		ParentID: payload.ParentID,
		Text:     payload.Text,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}
