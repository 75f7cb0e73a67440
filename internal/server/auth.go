package server

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

func (s *Server) authRequired(c *gin.Context) {
	if !s.cfg.AuthEnabled() {
		c.Next()
		return
	}
	session := sessions.Default(c)
	if session.Get(sessionUserKey) == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"ok": false, "kind": "unauthorized", "error": "login required",
		})
		return
	}
	c.Next()
}

func (s *Server) login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.cfg.Auth.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.cfg.Auth.Password)) == 1
	if !userOK || !passOK {
		s.log.WarnContext(c.Request.Context(), "Rejected login", "username", username)
		c.JSON(http.StatusUnauthorized, gin.H{
			"ok": false, "kind": "unauthorized", "error": "invalid username or password",
		})
		return
	}

	session := sessions.Default(c)
	session.Set(sessionUserKey, username)
	if err := session.Save(); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) logout(c *gin.Context) {
	session := sessions.Default(c)
	if id, ok := session.Get(sessionWorkspaceKey).(string); ok {
		s.store.Delete(id)
		s.metrics.ActiveWorkspaces.Set(float64(s.store.Len()))
	}
	session.Clear()
	if err := session.Save(); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
