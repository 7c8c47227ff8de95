package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tagpress/internal/db"
	"github.com/tagpress/internal/metrics"
	"github.com/tagpress/internal/service"
)

const invalidFormMessage = "The submitted form could not be read."

// ShowPostList renders published posts, newest first, three per page by default.
func (a *API) ShowPostList(c *gin.Context) {
	a.renderPostList(c, nil)
}

// ShowTagPostList renders published posts carrying the tag in the URL.
func (a *API) ShowTagPostList(c *gin.Context) {
	tag, err := a.tags.GetBySlug(c.Param("tag"))
	if err != nil {
		if errors.Is(err, service.ErrTagNotFound) {
			a.renderNotFound(c, "No tag matches the given query.")
			return
		}
		a.renderServerError(c, err)
		return
	}
	a.renderPostList(c, tag)
}

func (a *API) renderPostList(c *gin.Context, tag *db.Tag) {
	filter := service.PostFilter{
		Page:    c.Query("page"),
		PerPage: a.perPage,
	}
	pagePath := "/"
	title := "Posts"
	if tag != nil {
		filter.TagID = tag.ID
		pagePath = "/tag/" + tag.Slug
		title = fmt.Sprintf("Posts tagged with %q", tag.Name)
	}

	page, err := a.posts.ListPublished(filter)
	if err != nil {
		a.renderServerError(c, err)
		return
	}

	a.renderHTML(c, http.StatusOK, "post_list.html", gin.H{
		"title":    title,
		"tag":      tag,
		"posts":    page.Items,
		"page":     page,
		"pagePath": pagePath,
	})
}

// NotFound renders the 404 page for unmatched routes.
func (a *API) NotFound(c *gin.Context) {
	a.renderNotFound(c, "The requested page does not exist.")
}

// ShowPostDetail 渲染文章详情、已审核评论、评论表单以及相似文章。
func (a *API) ShowPostDetail(c *gin.Context) {
	post, ok := a.lookupPostByDate(c)
	if !ok {
		return
	}
	a.renderPostDetail(c, http.StatusOK, post, service.CommentInput{}, nil, nil)
}

// SubmitComment 处理读者提交的评论，校验失败时回显表单与错误。
func (a *API) SubmitComment(c *gin.Context) {
	post, ok := a.lookupPostByDate(c)
	if !ok {
		return
	}

	var input service.CommentInput
	if err := c.ShouldBind(&input); err != nil {
		metrics.CommentsSubmitted.WithLabelValues("invalid").Inc()
		a.renderPostDetail(c, http.StatusBadRequest, post, input, nil, map[string]string{"form": invalidFormMessage})
		return
	}

	comment, err := a.comments.Submit(post.ID, input)
	if err != nil {
		if verr, ok := service.AsValidationError(err); ok {
			metrics.CommentsSubmitted.WithLabelValues("invalid").Inc()
			a.renderPostDetail(c, http.StatusBadRequest, post, input, nil, verr.Messages())
			return
		}
		metrics.CommentsSubmitted.WithLabelValues("error").Inc()
		a.renderServerError(c, err)
		return
	}

	metrics.CommentsSubmitted.WithLabelValues("created").Inc()
	a.renderPostDetail(c, http.StatusOK, post, service.CommentInput{}, comment, nil)
}

func (a *API) renderPostDetail(c *gin.Context, status int, post *db.Post, form service.CommentInput, newComment *db.Comment, fieldErrors map[string]string) {
	comments, err := a.comments.ListActive(post.ID)
	if err != nil {
		a.renderServerError(c, err)
		return
	}

	similar, err := a.posts.Similar(post, service.DefaultSimilarLimit)
	if err != nil {
		a.renderServerError(c, err)
		return
	}

	a.renderHTML(c, status, "post_detail.html", gin.H{
		"title":        post.Title,
		"post":         post,
		"bodyHTML":     renderMarkdown(post.Body),
		"comments":     comments,
		"newComment":   newComment,
		"form":         form,
		"errors":       fieldErrors,
		"similarPosts": similar,
		"shareURL":     fmt.Sprintf("/share/%d", post.ID),
	})
}

func (a *API) lookupPostByDate(c *gin.Context) (*db.Post, bool) {
	year, errYear := strconv.Atoi(c.Param("year"))
	month, errMonth := strconv.Atoi(c.Param("month"))
	day, errDay := strconv.Atoi(c.Param("day"))
	if errYear != nil || errMonth != nil || errDay != nil {
		a.renderNotFound(c, "No post matches the given query.")
		return nil, false
	}

	post, err := a.posts.GetPublishedByDate(year, month, day, strings.TrimSpace(c.Param("slug")))
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			a.renderNotFound(c, "No post matches the given query.")
			return nil, false
		}
		a.renderServerError(c, err)
		return nil, false
	}
	return post, true
}

// ShowShare renders the "email this post" form.
func (a *API) ShowShare(c *gin.Context) {
	post, ok := a.lookupPublishedByID(c)
	if !ok {
		return
	}
	a.renderShare(c, http.StatusOK, post, service.ShareInput{}, nil, false, false)
}

// SharePost 校验分享表单并发送推荐邮件。
func (a *API) SharePost(c *gin.Context) {
	post, ok := a.lookupPublishedByID(c)
	if !ok {
		return
	}

	var input service.ShareInput
	if err := c.ShouldBind(&input); err != nil {
		metrics.SharesSent.WithLabelValues("invalid").Inc()
		a.renderShare(c, http.StatusBadRequest, post, input, map[string]string{"form": invalidFormMessage}, false, false)
		return
	}

	sent, err := a.share.Share(c.Request.Context(), post, a.absoluteURL(c, post.AbsoluteURL()), input)
	if err != nil {
		if verr, ok := service.AsValidationError(err); ok {
			metrics.SharesSent.WithLabelValues("invalid").Inc()
			a.renderShare(c, http.StatusBadRequest, post, input, verr.Messages(), false, false)
			return
		}
		a.renderServerError(c, err)
		return
	}

	if sent {
		metrics.SharesSent.WithLabelValues("sent").Inc()
	} else {
		metrics.SharesSent.WithLabelValues("not_sent").Inc()
	}
	a.renderShare(c, http.StatusOK, post, input, nil, sent, !sent)
}

// deliveryFailed 表示表单合法但邮件未能投递
func (a *API) renderShare(c *gin.Context, status int, post *db.Post, form service.ShareInput, fieldErrors map[string]string, sent, deliveryFailed bool) {
	a.renderHTML(c, status, "post_share.html", gin.H{
		"title":          "Share " + post.Title,
		"post":           post,
		"postURL":        a.absoluteURL(c, post.AbsoluteURL()),
		"form":           form,
		"errors":         fieldErrors,
		"sent":           sent,
		"deliveryFailed": deliveryFailed,
	})
}

func (a *API) lookupPublishedByID(c *gin.Context) (*db.Post, bool) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		a.renderNotFound(c, "No post matches the given query.")
		return nil, false
	}

	post, err := a.posts.GetPublished(id)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			a.renderNotFound(c, "No post matches the given query.")
			return nil, false
		}
		a.renderServerError(c, err)
		return nil, false
	}
	return post, true
}
