package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"redflix-api/internal/transport/http/ez"
	"redflix-api/internal/transport/http/handler"
	mdw "redflix-api/internal/transport/http/middleware"
)

// NewAdminEngine 管理端 /admin/v1，只挂用户管理
func NewAdminEngine(l *zap.Logger, d Deps) *gin.Engine {
	r := newEngine(l, d)
	reg := (&Registry{}).Register(usersModule{h: handler.NewUserHandler(d.Users)})
	reg.MountAdmin(ez.New(r.Group("/admin/v1"), mdw.Authenticate(d.Sessions, d.AuthHeader)))
	return r
}
