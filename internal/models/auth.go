package models

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	constants "github.com/HapoSeiz/AlertShip/pkg/constant"
)

// Login opens a cookie session for the user.
func Login(c *gin.Context, user *User) error {
	session := sessions.Default(c)
	session.Set(constants.SessionUserKey, user.ID)
	return session.Save()
}

// Logout clears the session.
func Logout(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	return session.Save()
}

// loadSessionUser resolves the session cookie to a user, or nil when
// anonymous.
func loadSessionUser(c *gin.Context) *User {
	session := sessions.Default(c)
	raw := session.Get(constants.SessionUserKey)
	id, ok := raw.(uint)
	if !ok {
		return nil
	}
	v, ok := c.Get(constants.DbField)
	if !ok {
		return nil
	}
	db, ok := v.(*gorm.DB)
	if !ok {
		return nil
	}
	user, err := getUserByID(db, id)
	if err != nil {
		return nil
	}
	return user
}

// AuthRequired guards API routes; anonymous callers get 401 JSON.
func AuthRequired(c *gin.Context) {
	user := loadSessionUser(c)
	if user == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "authentication required",
		})
		return
	}
	c.Set(constants.UserField, user)
	c.Next()
}

// CurrentUser returns the authenticated user placed by AuthRequired, or
// resolves the session directly for routes that allow anonymous access.
func CurrentUser(c *gin.Context) *User {
	if v, ok := c.Get(constants.UserField); ok {
		if user, ok := v.(*User); ok {
			return user
		}
	}
	return loadSessionUser(c)
}
