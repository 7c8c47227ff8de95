package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type tagPayload struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	PostCount int64  `json:"postCount"`
}

// GetTags returns every tag with its published post count.
func (a *API) GetTags(c *gin.Context) {
	tags, err := a.tags.List()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	items := make([]tagPayload, 0, len(tags))
	for _, tag := range tags {
		items = append(items, tagPayload{
			ID:        tag.ID,
			Name:      tag.Name,
			Slug:      tag.Slug,
			PostCount: tag.PostCount,
		})
	}
	c.JSON(http.StatusOK, gin.H{"tags": items})
}
