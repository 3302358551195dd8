package handlers

import (
	"blockpreview/config"
	"blockpreview/state"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

const sessionCookie = "bp_session"

// Login checks the admin password against the configured bcrypt hash and
// issues a session token, returned in the body and as a cookie.
func Login(c *gin.Context) {
	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	hash := config.Settings.AdminPasswordHash
	if hash == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "admin login is not configured"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "invalid credentials"})
		return
	}

	token := state.Global.Create()
	c.SetCookie(sessionCookie, token, 0, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Logout revokes the caller's session.
func Logout(c *gin.Context) {
	if token := sessionToken(c); token != "" {
		state.Global.Revoke(token)
	}
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// RequireLogin rejects requests without a live admin session before any
// business logic runs.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !state.Global.Valid(sessionToken(c)) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "login required"})
			return
		}
		c.Next()
	}
}

// RequireAcceptsJSON rejects clients that have not declared they accept a
// JSON response.
func RequireAcceptsJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		accept := c.GetHeader("Accept")
		if !strings.Contains(accept, "application/json") && !strings.Contains(accept, "*/*") {
			c.AbortWithStatusJSON(http.StatusNotAcceptable, gin.H{"detail": "client must accept application/json"})
			return
		}
		c.Next()
	}
}

// sessionToken pulls the session token from the bearer header or cookie.
func sessionToken(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if token, err := c.Cookie(sessionCookie); err == nil {
		return token
	}
	return ""
}
