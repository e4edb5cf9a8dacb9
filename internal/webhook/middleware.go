package webhook

import (
	"net/http"

	"cafe_bot_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// SignatureHeader carries the base64 HMAC-SHA256 of the request body.
const SignatureHeader = "X-Line-Signature"

// SignatureRequired rejects callbacks that carry no signature header before
// the body is read.
func SignatureRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(SignatureHeader) == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, httpkit.ErrorResponse{Error: "missing signature"})
			return
		}
		c.Next()
	}
}
