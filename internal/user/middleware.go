package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	// CookieName 是存放会话令牌的Cookie名称
	CookieName = "memeverse-session"
	// UsernameKey 是Gin上下文中当前用户名的键
	UsernameKey = "username"
)

// LoadUserMiddleware 读取会话Cookie并把当前用户名放入Gin上下文。
// 未登录或令牌无效时不拦截请求，只是不设置用户名。
func LoadUserMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := c.Cookie(CookieName)
		if err == nil && tokenStr != "" {
			if username, err := ValidateSession(tokenStr); err == nil {
				c.Set(UsernameKey, username)
			}
		}
		c.Next()
	}
}

// RequireUserMiddleware 拦截未登录的请求。
// 点赞、评论、上传等写操作都挂在它后面。
func RequireUserMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(UsernameKey) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "请先登录"})
			return
		}
		c.Next()
	}
}
