package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

const TooLargeMessage = "File too large"

// BodyLimit 限制请求体大小，声明长度超限时直接返回 413
func BodyLimit(max int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if max <= 0 {
			c.Next()
			return
		}

		if c.Request.ContentLength > max {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"success": false,
				"message": TooLargeMessage,
			})
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max)
		c.Next()
	}
}

// IsTooLarge 读取请求体时是否超过了 BodyLimit 的限制
func IsTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
