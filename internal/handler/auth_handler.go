package handler

import (
	"net/http"

	"github.com/Choos37ricK/blog-engine/internal/db"
	"github.com/Choos37ricK/blog-engine/internal/logger"
	"github.com/Choos37ricK/blog-engine/internal/repository"
	"github.com/Choos37ricK/blog-engine/internal/service"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type loginPayload struct {
	Email    string `json:"e_mail"`
	Password string `json:"password"`
}

// Login 校验邮箱和密码，成功后把新 token 写入会话。
func (a *API) Login(c *gin.Context) {
	var payload loginPayload
	if !bindJSON(c, &payload) {
		return
	}

	token, user, err := a.auth.Login(c.Request.Context(), payload.Email, payload.Password)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set(sessionTokenKey, token)
	if err := session.Save(); err != nil {
		_ = a.auth.Logout(c.Request.Context(), token)
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": true, "user": a.userPayload(c, user)})
}

// Logout revokes the current token and clears the session.
func (a *API) Logout(c *gin.Context) {
	if err := a.auth.Logout(c.Request.Context(), sessionToken(c)); err != nil {
		logger.Get().Warn().Err(err).Msg("revoke session")
	}

	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": true})
}

// Check reports the current user, if any.
func (a *API) Check(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusOK, gin.H{"result": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": true, "user": a.userPayload(c, user)})
}

func (a *API) userPayload(c *gin.Context, user *db.User) gin.H {
	payload := gin.H{
		"id":         user.ID,
		"name":       user.Name,
		"email":      user.Email,
		"moderation": user.IsModerator,
		"settings":   user.IsModerator,
	}

	if user.IsModerator {
		queue, err := a.listing.ModerationQueue(c.Request.Context(), service.ViewerFromUser(user), service.QueueNew, repository.Page{Limit: 1})
		if err != nil {
			logger.Get().Warn().Err(err).Msg("count moderation queue")
		} else {
			payload["moderationCount"] = queue.Total
		}
	}
	return payload
}
