package middleware

import (
	"strings"

	"github.com/haierkeys/fast-note-share-service/pkg/app"
	"github.com/haierkeys/fast-note-share-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// authToken reads the login token from the Authorization header (with or without
// a "Bearer " prefix), the Token header, or the token query parameter.
func authToken(c *gin.Context) string {
	if s := c.GetHeader("Authorization"); s != "" {
		return strings.TrimSpace(strings.TrimPrefix(s, "Bearer "))
	}
	if s := c.GetHeader("Token"); s != "" {
		return s
	}
	if s, exist := c.GetQuery("token"); exist {
		return s
	}
	return ""
}

// UserAuthToken 用户 Token 认证中间件，校验通过后将用户信息写入上下文
func UserAuthToken(tm app.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := app.NewResponse(c)

		token := authToken(c)
		if token == "" {
			response.ToResponse(code.ErrorNotUserAuthToken)
			c.Abort()
			return
		}

		user, err := tm.Parse(token)
		if err != nil {
			response.ToResponse(code.ErrorInvalidUserAuthToken)
			c.Abort()
			return
		}
		c.Set(app.UserTokenKey, user)

		c.Next()
	}
}

// OptionalUserAuthToken 可选认证：Token 有效时写入用户信息，缺失或无效时按匿名继续
func OptionalUserAuthToken(tm app.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := authToken(c); token != "" {
			if user, err := tm.Parse(token); err == nil {
				c.Set(app.UserTokenKey, user)
			}
		}
		c.Next()
	}
}
