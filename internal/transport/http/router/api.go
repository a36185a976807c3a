package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"redflix-api/internal/core/cache"
	"redflix-api/internal/core/server"
	"redflix-api/internal/feature/movie"
	"redflix-api/internal/service"
	"redflix-api/internal/transport/http/ez"
	"redflix-api/internal/transport/http/handler"
	mdw "redflix-api/internal/transport/http/middleware"
)

type Limits struct {
	MaxInFlight  int64
	MaxBodyBytes int64
	Timeout      time.Duration
}

// Deps 两个引擎共用的依赖；Cache 可为 nil
type Deps struct {
	DB         *gorm.DB
	Sessions   mdw.SessionResolver
	AuthHeader string
	Auth       *service.AuthService
	Users      *service.UserService
	Cache      *cache.Cache
	CacheTTL   time.Duration
	Limits     Limits
	Server     server.Options
}

func registerValidators() {
	ez.RegisterValidation("movietype", movie.IsValidType)
}

func newEngine(l *zap.Logger, d Deps) *gin.Engine {
	registerValidators()
	if d.Server.AuthHeader == "" {
		d.Server.AuthHeader = d.AuthHeader
	}
	r := server.NewRouter(d.Server)
	r.Use(
		mdw.RequestID(),
		mdw.Recovery(l),
		mdw.ConcurrencyLimit(d.Limits.MaxInFlight),
		mdw.MaxBodyBytes(orDefault(d.Limits.MaxBodyBytes, 1<<20)),
		mdw.Timeout(d.Limits.Timeout),
		mdw.Metrics(),
		mdw.AccessLog(l),
	)
	hh := &handler.HealthHandler{DB: d.DB, Log: l}
	if d.Cache != nil {
		hh.Cache = d.Cache
	}
	hh.Mount(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

func orDefault(v, def int64) int64 {
	if v <= 0 {
		return def
	}
	return v
}

// NewAPIEngine 用户端 /api/v1；mods 为空时挂载 auth/users/movies
func NewAPIEngine(l *zap.Logger, d Deps, mods ...any) *gin.Engine {
	r := newEngine(l, d)
	reg := &Registry{}
	if len(mods) == 0 {
		mods = defaultModules(d)
	}
	reg.Register(mods...)
	reg.MountAPI(ez.New(r.Group("/api/v1"), mdw.Authenticate(d.Sessions, d.AuthHeader)))
	return r
}

func defaultModules(d Deps) []any {
	return []any{
		authModule{h: handler.NewAuthHandler(d.Auth)},
		usersModule{h: handler.NewUserHandler(d.Users)},
		moviesModule{db: d.DB, cache: d.Cache, ttl: d.CacheTTL},
	}
}
