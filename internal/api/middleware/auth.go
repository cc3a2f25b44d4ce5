package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/gin-blog/internal/auth"
	"github.com/d60-Lab/gin-blog/internal/service"
	"github.com/d60-Lab/gin-blog/pkg/response"
)

const (
	ctxUserID = "user_id"
	ctxAdmin  = "admin"
)

// OptionalAuth 有合法 Bearer 令牌时写入当前用户，没有或无效时按匿名处理
func OptionalAuth(tokens *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := parseBearer(c, tokens); ok {
			c.Set(ctxUserID, claims.UserID)
			c.Set(ctxAdmin, claims.Admin)
		}
		c.Next()
	}
}

// RequireAuth 必须登录
func RequireAuth(tokens *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearer(c, tokens)
		if !ok {
			response.Unauthorized(c, "missing or invalid token")
			return
		}
		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxAdmin, claims.Admin)
		c.Next()
	}
}

// AdminOnly 需放在 RequireAuth 之后
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdmin(c) {
			response.Forbidden(c, service.ErrForbidden.Error())
			return
		}
		c.Next()
	}
}

func CurrentUserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

func IsAdmin(c *gin.Context) bool {
	return c.GetBool(ctxAdmin)
}

func parseBearer(c *gin.Context, tokens *auth.TokenIssuer) (*auth.Claims, bool) {
	header := c.GetHeader("Authorization")
	raw, found := strings.CutPrefix(header, "Bearer ")
	if !found || raw == "" {
		return nil, false
	}
	claims, err := tokens.Parse(raw)
	if err != nil {
		return nil, false
	}
	return claims, true
}
