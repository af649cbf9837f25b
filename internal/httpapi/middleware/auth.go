package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/client-portal/internal/auth"
	"github.com/suPer8Hu/client-portal/internal/common"
	"github.com/suPer8Hu/client-portal/internal/models"
	"gorm.io/gorm"
)

const sessionKey = "session"

// Session is the authenticated caller.
type Session struct {
	UserID string
	Role   string
}

func SessionFromContext(c *gin.Context) (Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return Session{}, false
	}
	s, ok := v.(Session)
	return s, ok && s.UserID != ""
}

// AuthRequired accepts a bearer JWT and stores the Session on the context.
func AuthRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			common.Fail(c, http.StatusUnauthorized, 40100, "Unauthorized")
			return
		}
		claims, err := auth.ParseJWT(token, secret)
		if err != nil {
			common.Fail(c, http.StatusUnauthorized, 40101, "Unauthorized")
			return
		}
		c.Set(sessionKey, Session{UserID: claims.Subject, Role: claims.Role})
		c.Next()
	}
}

func bearerToken(header string) string {
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// AdminRequired re-reads the caller's role from the user table, so a demoted
// account loses access before its token expires.
func AdminRequired(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := SessionFromContext(c)
		if !ok {
			common.Fail(c, http.StatusUnauthorized, 40100, "Unauthorized")
			return
		}
		var u models.User
		err := db.WithContext(c.Request.Context()).Select("id", "role").First(&u, "id = ?", s.UserID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				common.Fail(c, http.StatusUnauthorized, 40102, "Unauthorized")
				return
			}
			_ = c.Error(err)
			common.Fail(c, http.StatusInternalServerError, 50000, "Internal server error")
			return
		}
		if !u.IsAdmin() {
			common.Fail(c, http.StatusForbidden, 40300, "Forbidden")
			return
		}
		c.Set(sessionKey, Session{UserID: u.ID, Role: u.Role})
		c.Next()
	}
}
