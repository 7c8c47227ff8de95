package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tagpress/internal/service"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

// respondServiceError 将 service 层错误映射为 JSON 响应。
func respondServiceError(c *gin.Context, err error) {
	if verr, ok := service.AsValidationError(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": verr.Messages()})
		return
	}

	switch {
	case errors.Is(err, service.ErrPostNotFound),
		errors.Is(err, service.ErrCommentNotFound),
		errors.Is(err, service.ErrTagNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrTitleRequired),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrAuthorRequired),
		errors.Is(err, service.ErrSlugNotDerivable):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrSlugTaken),
		errors.Is(err, service.ErrStatusTransition):
		respondError(c, http.StatusConflict, err.Error())
	default:
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "internal error")
	}
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}

func parseUintQuery(c *gin.Context, key string) uint {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0
	}
	return uint(id)
}

func parsePositiveInt(raw string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

// parseDateQuery 解析 YYYY-MM-DD 形式的日期参数，缺省时返回 nil
func parseDateQuery(c *gin.Context, key string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	day, err := time.ParseInLocation(time.DateOnly, raw, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid %s date, expected YYYY-MM-DD", key)
	}
	return &day, nil
}

func parseBoolQuery(c *gin.Context, key string) *bool {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &value
}

// absoluteURL 拼接文章的绝对地址，未配置站点地址时按请求推断。
func (a *API) absoluteURL(c *gin.Context, path string) string {
	if a.siteBaseURL != "" {
		return a.siteBaseURL + path
	}
	scheme := "http"
	if c.Request.TLS != nil || strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host + path
}
