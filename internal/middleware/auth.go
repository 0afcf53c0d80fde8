package middleware

import (
	"strings"

	"bank-core/internal/handler/response"
	"bank-core/internal/service/auth"
	"bank-core/pkg/errno"

	"github.com/gin-gonic/gin"
)

// Auth 从 Authorization: Bearer <token> 解析会话，
// 把 username 放进 gin context，后续 handler 直接取用。
func Auth(authSvc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			response.Error(c, errno.ErrTokenInvalid)
			c.Abort()
			return
		}

		username, err := authSvc.Resolve(c.Request.Context(), token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set("username", username)
		c.Next()
	}
}
