package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/rollbowl_go_server/internal/pkg/jwt"
	"github.com/qs3c/rollbowl_go_server/internal/pkg/response"
)

const (
	SessionIDKey = "adminSession"
)

// TokenVerifier 校验管理员 token
type TokenVerifier interface {
	VerifyToken(token string) (*jwt.Claims, error)
}

// AdminAuth 管理端 JWT 认证
func AdminAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.AuthError(c, "请提供认证信息")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			response.AuthError(c, "认证格式错误")
			c.Abort()
			return
		}

		claims, err := verifier.VerifyToken(tokenString)
		if err != nil {
			response.AuthError(c, "认证失败或已过期")
			c.Abort()
			return
		}

		c.Set(SessionIDKey, claims.ID)
		c.Next()
	}
}

// GetSessionID 当前管理员会话 ID
func GetSessionID(c *gin.Context) (string, bool) {
	v, exists := c.Get(SessionIDKey)
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}
