package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tagpress/internal/db"
	"github.com/tagpress/internal/service"
)

type commentPayload struct {
	ID        uint   `json:"id"`
	PostID    uint   `json:"postId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Body      string `json:"body"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"createdAt"`
}

func newCommentPayload(comment *db.Comment) commentPayload {
	return commentPayload{
		ID:        comment.ID,
		PostID:    comment.PostID,
		Name:      comment.Name,
		Email:     comment.Email,
		Body:      comment.Body,
		Active:    comment.Active,
		CreatedAt: comment.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// GetComments 后台评论审核列表
func (a *API) GetComments(c *gin.Context) {
	page, err := a.comments.List(service.CommentFilter{
		PostID:  parseUintQuery(c, "post"),
		Active:  parseBoolQuery(c, "active"),
		Search:  strings.TrimSpace(c.Query("search")),
		Page:    c.Query("page"),
		PerPage: parsePositiveInt(c.Query("perPage"), 20),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	items := make([]commentPayload, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, newCommentPayload(&page.Items[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"items":      items,
		"page":       page.Number,
		"totalPages": page.TotalPages,
		"total":      page.Total,
	})
}

// ActivateComment makes a comment visible on its post again.
func (a *API) ActivateComment(c *gin.Context) {
	a.setCommentActive(c, true)
}

// DeactivateComment hides a comment from readers.
func (a *API) DeactivateComment(c *gin.Context) {
	a.setCommentActive(c, false)
}

func (a *API) setCommentActive(c *gin.Context, active bool) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	comment, err := a.comments.SetActive(id, active)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCommentPayload(comment))
}
