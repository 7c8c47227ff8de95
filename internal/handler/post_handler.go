package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tagpress/internal/db"
	"github.com/tagpress/internal/service"
)

type postPayload struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Body        string     `json:"body"`
	Status      string     `json:"status"`
	AuthorID    uint       `json:"authorId"`
	Author      string     `json:"author"`
	PublishedAt string     `json:"publishedAt"`
	URL         string     `json:"url"`
	Tags        []tagBrief `json:"tags"`
}

type tagBrief struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func newPostPayload(post *db.Post) postPayload {
	tags := make([]tagBrief, 0, len(post.Tags))
	for _, tag := range post.Tags {
		tags = append(tags, tagBrief{ID: tag.ID, Name: tag.Name, Slug: tag.Slug})
	}
	return postPayload{
		ID:          post.ID,
		Title:       post.Title,
		Slug:        post.Slug,
		Body:        post.Body,
		Status:      post.Status,
		AuthorID:    post.AuthorID,
		Author:      post.Author.Username,
		PublishedAt: post.PublishedAt.UTC().Format(time.RFC3339),
		URL:         post.AbsoluteURL(),
		Tags:        tags,
	}
}

// GetPosts 返回后台文章列表（含草稿），附带状态计数
func (a *API) GetPosts(c *gin.Context) {
	from, err := parseDateQuery(c, "from")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	to, err := parseDateQuery(c, "to")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	// to 包含当天
	if to != nil {
		next := to.AddDate(0, 0, 1)
		to = &next
	}

	filter := service.PostFilter{
		Search:    strings.TrimSpace(c.Query("search")),
		Status:    strings.TrimSpace(c.Query("status")),
		AuthorID:  parseUintQuery(c, "author"),
		TagID:     parseUintQuery(c, "tag"),
		StartDate: from,
		EndDate:   to,
		Page:      c.Query("page"),
		PerPage:   parsePositiveInt(c.Query("perPage"), 20),
	}

	result, err := a.posts.List(filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	items := make([]postPayload, 0, len(result.Items))
	for i := range result.Items {
		items = append(items, newPostPayload(&result.Items[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"items":          items,
		"page":           result.Number,
		"totalPages":     result.TotalPages,
		"total":          result.Total,
		"publishedCount": result.PublishedCount,
		"draftCount":     result.DraftCount,
	})
}

// GetPost returns one post, draft or published.
func (a *API) GetPost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	post, err := a.posts.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPostPayload(post))
}

// CreatePost 创建文章，未指定作者时使用当前登录用户
func (a *API) CreatePost(c *gin.Context) {
	var input service.PostInput
	if !bindJSON(c, &input, "invalid post payload") {
		return
	}
	if input.AuthorID == 0 {
		input.AuthorID = sessionUserID(c)
	}

	post, err := a.posts.Create(input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newPostPayload(post))
}

// UpdatePost 更新文章，tags 字段缺省时保留原有标签
func (a *API) UpdatePost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var input service.PostInput
	if !bindJSON(c, &input, "invalid post payload") {
		return
	}

	post, err := a.posts.Update(id, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPostPayload(post))
}

// PublishPost moves a draft to published.
func (a *API) PublishPost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	post, err := a.posts.Publish(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPostPayload(post))
}
