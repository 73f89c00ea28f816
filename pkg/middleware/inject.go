package middleware

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	constants "github.com/HapoSeiz/AlertShip/pkg/constant"
)

// InjectDB puts the shared gorm handle on the request context so model
// helpers can reach it without threading it through every call.
func InjectDB(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(constants.DbField, db)
		c.Next()
	}
}
