package ez

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"redflix-api/internal/core/apperr"
	"redflix-api/internal/core/auth"
	mdw "redflix-api/internal/transport/http/middleware"
	resp "redflix-api/internal/transport/http/response"
)

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param 取
)

// Access 每个动作必须显式声明：公开，或一组允许的角色
type Access struct {
	public bool
	roles  auth.RoleSet
}

func Public() Access { return Access{public: true} }

func Roles(set auth.RoleSet) Access { return Access{roles: set} }

func (a Access) declared() bool { return a.public || !a.roles.Empty() }

// EZ 路由分组 + 会话中间件；authenticate 为 nil 时只能注册公开动作
type EZ struct {
	g            *gin.RouterGroup
	authenticate gin.HandlerFunc
}

func New(g *gin.RouterGroup, authenticate gin.HandlerFunc) EZ {
	initValidator()
	return EZ{g: g, authenticate: authenticate}
}

func (e EZ) Group(path string) EZ {
	return EZ{g: e.g.Group(path), authenticate: e.authenticate}
}

// Guard 把访问声明转换成中间件链；声明缺失直接 panic，启动期暴露
func (e EZ) Guard(method, path, resource string, a Access) []gin.HandlerFunc {
	full := e.g.BasePath() + path
	if !a.declared() {
		panic(fmt.Sprintf("ez: %s %s registered without an access declaration", method, full))
	}
	if a.public {
		return nil
	}
	if e.authenticate == nil {
		panic(fmt.Sprintf("ez: %s %s is role-gated but the group has no session resolver", method, full))
	}
	if resource == "" {
		resource = full
	}
	return []gin.HandlerFunc{e.authenticate, mdw.RequireRoles(auth.Gate{Allowed: a.roles, Resource: resource})}
}

func (e EZ) handle(method, path string, chain []gin.HandlerFunc, h gin.HandlerFunc) {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		panic(fmt.Sprintf("ez: unsupported method %q for %s", method, path))
	}
	e.g.Handle(method, path, append(chain, h)...)
}

// 动作定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method   string // "GET" | "POST" | "PUT" | "PATCH" | "DELETE"
	Path     string // 例："/auth/login"、"/users/:id"
	Binder   Binder
	Access   Access
	Resource string // Forbidden 文案里的资源名，默认完整路径
	Handler  func(c *gin.Context, in *I) (O, error)
}

// RegisterAction 在当前 EZ 下注册动作接口
func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	method := strings.ToUpper(a.Method)
	if a.Handler == nil {
		panic(fmt.Sprintf("ez: %s %s has no handler", method, a.Path))
	}
	chain := e.Guard(method, a.Path, a.Resource, a.Access)

	e.handle(method, a.Path, chain, func(c *gin.Context) {
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		}
		if bindErr != nil {
			resp.Abort(c, BindError(bindErr))
			return
		}

		out, err := a.Handler(c, &in)
		if err != nil {
			resp.Abort(c, err)
			return
		}
		resp.JSON(c, out)
	})
}

// Principal 取当前请求的已认证用户；公开路由上调用返回 Internal
func Principal(c *gin.Context) (auth.Principal, error) {
	p, ok := auth.PrincipalFrom(c.Request.Context())
	if !ok {
		return auth.Principal{}, apperr.Internal("principal requested on an unauthenticated route")
	}
	return p, nil
}
