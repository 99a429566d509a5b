package middleware

import (
	"net/http"
	"strings"

	"civic_feed/pkg/response"
	"civic_feed/pkg/utils"

	"github.com/gin-gonic/gin"
)

// 上下文中的键
const (
	ContextUserID = "userID"
	ContextRole   = "role"
)

// bearerToken 解析 "Bearer <token>"，格式不对时返回空串
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", true
	}
	return parts[1], true
}

// AuthMiddleware JWT认证中间件
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, present := bearerToken(c)
		if !present {
			response.Error(c, http.StatusUnauthorized, response.ErrTokenInvalid, "Authorization header is required")
			c.Abort()
			return
		}
		if tokenString == "" {
			response.Error(c, http.StatusUnauthorized, response.ErrTokenInvalid, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(tokenString)
		if err != nil || claims.UserID == "" {
			response.Error(c, http.StatusUnauthorized, response.ErrTokenInvalid, "Invalid or expired token")
			c.Abort()
			return
		}

		// 将 userID 和 role 存入上下文
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// OptionalAuthMiddleware 允许匿名访问，token 有效时才设置当前用户
// 匿名用户看到的 isLikedByCurrentUser 总是 false
func OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, _ := bearerToken(c); tokenString != "" {
			if claims, err := utils.ParseToken(tokenString); err == nil && claims.UserID != "" {
				c.Set(ContextUserID, claims.UserID)
				c.Set(ContextRole, claims.Role)
			}
		}
		c.Next()
	}
}

// GetUserID 从上下文读取当前用户，未登录时返回空串
func GetUserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}
