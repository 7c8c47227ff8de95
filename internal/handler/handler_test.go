package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/tagpress/internal/db"
	"github.com/tagpress/internal/mail"
	"github.com/tagpress/internal/service"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type renderedTemplate struct {
	name string
	data gin.H
}

// recordingHTMLRender 记录最后一次渲染的模板名和数据，不输出任何内容。
type recordingHTMLRender struct {
	last *renderedTemplate
}

type stubHTMLInstance struct{}

func (r *recordingHTMLRender) Instance(name string, data interface{}) render.Render {
	payload, _ := data.(gin.H)
	r.last = &renderedTemplate{name: name, data: payload}
	return &stubHTMLInstance{}
}

func (r *stubHTMLInstance) Render(http.ResponseWriter) error {
	return nil
}

func (r *stubHTMLInstance) WriteContentType(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
}

type recordingSender struct {
	sent []mail.Message
	err  error
}

func (r *recordingSender) Send(_ context.Context, msg mail.Message) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

type handlerTestEnv struct {
	db     *gorm.DB
	api    *API
	router *gin.Engine
	html   *recordingHTMLRender
	sender *recordingSender
	author *db.User
}

func setupHandlerTestEnv(t *testing.T) *handlerTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:handler-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := db.Open(sqlite.Open(dsn), logger.Silent)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	author, err := db.EnsureUser(gdb, "admin", "secret")
	if err != nil {
		t.Fatalf("failed to create admin: %v", err)
	}

	sender := &recordingSender{}
	api := NewAPI(gdb, service.NewShareService(sender, "noreply@example.com"), Options{
		SiteBaseURL: "https://blog.example.com/",
	})

	html := &recordingHTMLRender{}
	r := gin.New()
	r.HTMLRender = html
	r.Use(sessions.Sessions("tagpress_test", cookie.NewStore([]byte("test-secret"))))

	r.GET("/", api.ShowPostList)
	r.GET("/tag/:tag", api.ShowTagPostList)
	r.GET("/post/:year/:month/:day/:slug", api.ShowPostDetail)
	r.POST("/post/:year/:month/:day/:slug", api.SubmitComment)
	r.GET("/share/:id", api.ShowShare)
	r.POST("/share/:id", api.SharePost)

	admin := r.Group("/admin")
	admin.POST("/login", api.Login)
	admin.POST("/logout", api.Logout)
	auth := admin.Group("/api", AuthRequired())
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

	return &handlerTestEnv{db: gdb, api: api, router: r, html: html, sender: sender, author: author}
}

func (e *handlerTestEnv) createPost(t *testing.T, title, status string, publishedAt time.Time, tags ...string) *db.Post {
	t.Helper()
	post, err := e.api.posts.Create(service.PostInput{
		Title:       title,
		Body:        "Body of **" + title + "**",
		Status:      status,
		AuthorID:    e.author.ID,
		PublishedAt: &publishedAt,
		TagNames:    tags,
	})
	if err != nil {
		t.Fatalf("create post %q: %v", title, err)
	}
	return post
}

func (e *handlerTestEnv) do(req *http.Request) *httptest.ResponseRecorder {
	e.html.last = nil
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *handlerTestEnv) get(path string) *httptest.ResponseRecorder {
	return e.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (e *handlerTestEnv) postForm(path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(req)
}

func (e *handlerTestEnv) rendered(t *testing.T, name string) gin.H {
	t.Helper()
	if e.html.last == nil {
		t.Fatalf("expected template %s to be rendered, nothing was", name)
	}
	if e.html.last.name != name {
		t.Fatalf("expected template %s, got %s", name, e.html.last.name)
	}
	return e.html.last.data
}
