package middleware

import (
	"team-tracker/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const currentUserKey = "CurrentUser"

// InjectUser loads the session's user into the request context. Sessions
// pointing at a deleted user resolve to nobody.
func InjectUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)

		if uid, ok := sess.Get("user_id").(string); ok && uid != "" {
			var user models.User
			if err := db.WithContext(c.Request.Context()).First(&user, "id = ?", uid).Error; err == nil {
				c.Set(currentUserKey, &user)
			}
		}

		c.Next()
	}
}

// CurrentUser returns the user set by InjectUser, or nil.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*models.User)
	return u
}
