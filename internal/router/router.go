package router

import (
	"net/http"
	"time"

	"github.com/Choos37ricK/blog-engine/internal/handler"
	"github.com/Choos37ricK/blog-engine/internal/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options 汇总路由层需要的配置。
type Options struct {
	SessionSecret string
	SessionTTL    time.Duration
	CORSOrigins   []string
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.Metrics())

	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     opts.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
			ExposeHeaders:    []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// 会话 cookie 只保存不透明 token，用户绑定关系由 session.Directory 维护
	store := cookie.NewStore([]byte(opts.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(opts.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("blog_engine_session", store))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := r.Group("/api")
	apiGroup.Use(api.ResolveViewer())
	{
		apiGroup.POST("/auth/login", api.Login)
		apiGroup.GET("/auth/logout", api.Logout)
		apiGroup.GET("/auth/check", api.Check)

		apiGroup.GET("/post", api.ListPosts)
		apiGroup.GET("/post/search", api.SearchPosts)
		apiGroup.GET("/post/byDate", api.PostsByDate)
		apiGroup.GET("/post/byTag", api.PostsByTag)
		apiGroup.GET("/post/moderation", api.ModerationPosts)
		apiGroup.GET("/post/my", api.MyPosts)
		apiGroup.GET("/post/:id", api.GetPost)
		apiGroup.POST("/post", api.CreatePost)
		apiGroup.PUT("/post/:id", api.UpdatePost)
		apiGroup.POST("/post/like", api.LikePost)
		apiGroup.POST("/post/dislike", api.DislikePost)

		apiGroup.POST("/moderation", api.ModeratePost)
		apiGroup.POST("/comment", api.AddComment)
		apiGroup.GET("/tag", api.GetTags)
		apiGroup.GET("/calendar", api.GetCalendar)
		apiGroup.GET("/settings", api.GetSettings)
		apiGroup.PUT("/settings", api.UpdateSettings)
		apiGroup.GET("/statistics/my", api.MyStatistics)
		apiGroup.GET("/statistics/all", api.AllStatistics)
	}

	return r
}
