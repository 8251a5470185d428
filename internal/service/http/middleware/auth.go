package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/reusedev/design-hub/internal/service/http/response"
)

// RequireUser 从网关透传的 X-User-Id 取用户标识。鉴权本身在网关完成。
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, err := strconv.ParseInt(c.GetHeader("X-User-Id"), 10, 64)
		if err != nil || uid <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.AuthError)
			return
		}
		c.Set("uid", uid)
		c.Next()
	}
}

func CurrentUid(c *gin.Context) int64 {
	return c.GetInt64("uid")
}
