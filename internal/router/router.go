package router

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/tagpress/internal/handler"
	"github.com/tagpress/internal/metrics"
	"github.com/tagpress/internal/middleware"
	"github.com/tagpress/web"
)

const sessionName = "tagpress_session"

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, sessionSecret string) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(), middleware.HandlePanics(), metrics.Middleware())

	// 配置会话中间件
	secret := strings.TrimSpace(sessionSecret)
	if secret == "" {
		secret = "tagpress-dev-secret"
	}
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	r.SetHTMLTemplate(template.Must(web.ParseTemplates()))
	r.StaticFS("/static", web.Static())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	r.GET("/metrics", metrics.Handler())

	// 前台路由
	r.GET("/", api.ShowPostList)
	r.GET("/tag/:tag", api.ShowTagPostList)
	r.GET("/post/:year/:month/:day/:slug", api.ShowPostDetail)
	r.POST("/post/:year/:month/:day/:slug", api.SubmitComment)
	r.GET("/share/:id", api.ShowShare)
	r.POST("/share/:id", api.SharePost)
	r.NoRoute(api.NotFound)

	// 后台管理路由
	admin := r.Group("/admin")
	{
		admin.POST("/login", api.Login)
		admin.POST("/logout", api.Logout)

		// 需要认证的 API
		auth := admin.Group("/api")
		auth.Use(handler.AuthRequired())
		{
			auth.GET("/me", api.CurrentUser)

			auth.GET("/posts", api.GetPosts)
			auth.GET("/posts/:id", api.GetPost)
			auth.POST("/posts", api.CreatePost)
			auth.PUT("/posts/:id", api.UpdatePost)
			auth.POST("/posts/:id/publish", api.PublishPost)

			auth.GET("/comments", api.GetComments)
			auth.POST("/comments/:id/activate", api.ActivateComment)
			auth.POST("/comments/:id/deactivate", api.DeactivateComment)

			auth.GET("/tags", api.GetTags)
		}
	}

	return r
}
