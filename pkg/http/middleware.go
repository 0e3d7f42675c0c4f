package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"liyu1981.xyz/energy-dashboard-service/pkg/auth"
	"liyu1981.xyz/energy-dashboard-service/pkg/common"
	"liyu1981.xyz/energy-dashboard-service/pkg/models"
)

const contextKeyUser = "user"

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// RequireAuth attaches the caller to the context or rejects with 401.
func (rs *RestfulServer) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rs.Auth == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Not authorized"})
			return
		}

		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Not authorized, no token"})
			return
		}

		user, err := rs.Auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, auth.ErrUnauthorized) {
				common.GetLoggerWith(
					common.LoggerNameRestfulServer,
					zap.String(common.LoggerFieldCategory, common.LoggerCategorySession),
				).Error("Failed to authenticate request", zap.Error(err))
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Not authorized, token failed"})
			return
		}

		c.Set(contextKeyUser, user)
		c.Next()
	}
}

func (rs *RestfulServer) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil || user.Role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": "Admin role required"})
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(contextKeyUser)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}
