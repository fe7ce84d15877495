package requestid

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const Header = "X-Request-ID"

type ctxKey struct{}

var key = ctxKey{}

func FromContext(ctx context.Context) string {
	if v := ctx.Value(key); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func NewContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, key, id)
}

func Generate() string {
	return uuid.NewString()
}

// Middleware picks up the client's X-Request-ID or generates one, stores it in
// the request context and echoes it back on the response.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(Header)
		if id == "" {
			id = Generate()
		}
		c.Request = c.Request.WithContext(NewContext(c.Request.Context(), id))
		c.Writer.Header().Set(Header, id)
		c.Next()
	}
}
