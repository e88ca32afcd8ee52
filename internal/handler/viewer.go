package handler

import (
	"github.com/Choos37ricK/blog-engine/internal/db"
	"github.com/Choos37ricK/blog-engine/internal/middleware"
	"github.com/Choos37ricK/blog-engine/internal/service"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	sessionTokenKey = "token"
	viewerKey       = "__viewer"
	currentUserKey  = "__current_user"
)

// ResolveViewer 从会话中读取 token，并把当前用户写入请求上下文。
// 未登录或 token 失效时按匿名访客处理。
func (a *API) ResolveViewer() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			c.Set(viewerKey, service.Viewer{})
			c.Next()
			return
		}

		user, err := a.auth.Current(c.Request.Context(), token)
		if err != nil {
			writeServiceError(c, err)
			c.Abort()
			return
		}

		viewer := service.ViewerFromUser(user)
		c.Set(viewerKey, viewer)
		if user != nil {
			c.Set(currentUserKey, user)
			c.Set(middleware.UserIDKey, user.ID)
		}
		c.Next()
	}
}

func sessionToken(c *gin.Context) string {
	token, _ := sessions.Default(c).Get(sessionTokenKey).(string)
	return token
}

func viewerFrom(c *gin.Context) service.Viewer {
	if value, ok := c.Get(viewerKey); ok {
		if viewer, ok := value.(service.Viewer); ok {
			return viewer
		}
	}
	return service.Viewer{}
}

func currentUser(c *gin.Context) *db.User {
	if value, ok := c.Get(currentUserKey); ok {
		if user, ok := value.(*db.User); ok {
			return user
		}
	}
	return nil
}
