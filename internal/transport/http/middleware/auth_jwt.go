package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"redflix-api/internal/core/auth"
	resp "redflix-api/internal/transport/http/response"
)

const DefaultAuthHeader = "Authorization"

// KeyUserID gin 上下文里的当前用户 id，访问日志使用
const KeyUserID = "userId"

type SessionResolver interface {
	Resolve(ctx context.Context, token string) (context.Context, error)
}

// BearerToken 取指定头；带 "Bearer " 前缀时去掉
func BearerToken(c *gin.Context, header string) string {
	v := strings.TrimSpace(c.GetHeader(header))
	if len(v) > 7 && strings.EqualFold(v[:7], "bearer ") {
		return strings.TrimSpace(v[7:])
	}
	return v
}

// Authenticate 会话解析；成功后 Principal 挂在 c.Request.Context() 上
func Authenticate(r SessionResolver, header string) gin.HandlerFunc {
	if header == "" {
		header = DefaultAuthHeader
	}
	return func(c *gin.Context) {
		ctx, err := r.Resolve(c.Request.Context(), BearerToken(c, header))
		if err != nil {
			resp.Abort(c, err)
			return
		}
		c.Request = c.Request.WithContext(ctx)
		if p, ok := auth.PrincipalFrom(ctx); ok {
			c.Set(KeyUserID, p.ID)
		}
		c.Next()
	}
}

// RequireRoles 必须挂在 Authenticate 之后
func RequireRoles(g auth.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := g.Check(c.Request.Context()); err != nil {
			resp.Abort(c, err)
			return
		}
		c.Next()
	}
}
