package handler

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/tagpress/internal/db"
)

const (
	sessionUserIDKey   = "user_id"
	sessionUsernameKey = "username"
)

type loginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// Login 校验用户名密码并写入会话
func (a *API) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid login payload")
		return
	}

	user, err := db.Authenticate(a.db, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, db.ErrInvalidCredentials) {
			log.Warn().Str("username", req.Username).Msg("admin login rejected")
			respondError(c, http.StatusUnauthorized, "用户名或密码错误")
			return
		}
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}

	session := sessions.Default(c)
	session.Set(sessionUserIDKey, user.ID)
	session.Set(sessionUsernameKey, user.Username)
	if err := session.Save(); err != nil {
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "会话保存失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": user.ID, "username": user.Username})
}

// Logout 清空会话
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		c.Error(err)
	}
	c.Status(http.StatusNoContent)
}

// CurrentUser returns the logged in administrator.
func (a *API) CurrentUser(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"id":       sessionUserID(c),
		"username": sessions.Default(c).Get(sessionUsernameKey),
	})
}

// AuthRequired 是一个简单的认证中间件
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if sessionUserID(c) == 0 {
			respondError(c, http.StatusUnauthorized, "authentication required")
			c.Abort()
			return
		}
		c.Next()
	}
}

func sessionUserID(c *gin.Context) uint {
	id, _ := sessions.Default(c).Get(sessionUserIDKey).(uint)
	return id
}
