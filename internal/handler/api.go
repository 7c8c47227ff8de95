package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tagpress/internal/service"
	"gorm.io/gorm"
)

// Options carries site level settings used while rendering.
type Options struct {
	SiteName     string
	SiteBaseURL  string
	PostsPerPage int
}

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db          *gorm.DB
	posts       *service.PostService
	tags        *service.TagService
	comments    *service.CommentService
	share       *service.ShareService
	siteName    string
	siteBaseURL string
	perPage     int
}

// NewAPI constructs a handler set with shared services.
func NewAPI(db *gorm.DB, share *service.ShareService, opts Options) *API {
	siteName := strings.TrimSpace(opts.SiteName)
	if siteName == "" {
		siteName = "TagPress"
	}
	perPage := opts.PostsPerPage
	if perPage <= 0 {
		perPage = service.DefaultPageSize
	}

	return &API{
		db:          db,
		posts:       service.NewPostService(db),
		tags:        service.NewTagService(db),
		comments:    service.NewCommentService(db),
		share:       share,
		siteName:    siteName,
		siteBaseURL: strings.TrimRight(strings.TrimSpace(opts.SiteBaseURL), "/"),
		perPage:     perPage,
	}
}

func (a *API) renderHTML(c *gin.Context, status int, template string, data gin.H) {
	payload := gin.H{}
	for key, value := range data {
		payload[key] = value
	}

	if _, exists := payload["siteName"]; !exists {
		payload["siteName"] = a.siteName
	}
	if _, exists := payload["year"]; !exists {
		payload["year"] = time.Now().Year()
	}

	c.HTML(status, template, payload)
}

func (a *API) renderNotFound(c *gin.Context, message string) {
	a.renderHTML(c, http.StatusNotFound, "error.html", gin.H{
		"title":   "Not found",
		"status":  http.StatusNotFound,
		"message": message,
	})
}

func (a *API) renderServerError(c *gin.Context, err error) {
	c.Error(err)
	a.renderHTML(c, http.StatusInternalServerError, "error.html", gin.H{
		"title":   "Server error",
		"status":  http.StatusInternalServerError,
		"message": "Something went wrong on our side.",
	})
}
