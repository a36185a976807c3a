package main

import (
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"redflix-api/internal/core/auth"
	"redflix-api/internal/core/cache"
	"redflix-api/internal/core/config"
	"redflix-api/internal/core/database"
	"redflix-api/internal/core/logger"
	"redflix-api/internal/core/server"
	"redflix-api/internal/feature/movie"
	"redflix-api/internal/feature/user"
	"redflix-api/internal/repo"
	"redflix-api/internal/service"
	"redflix-api/internal/transport/http/router"
	"redflix-api/pkg/utils"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		zap.NewExample().Fatal("load config", zap.Error(err))
	}
	log, cleanup := logger.New(logger.FromConfig(cfg.Log))
	defer cleanup()
	defer logger.RedirectStdLog(log)()
	gin.DefaultWriter = logger.ToWriter(log, zapcore.DebugLevel)

	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))
	if cfg.DB.AutoMigrate {
		if err := db.AutoMigrate(&user.UserModel{}, &movie.MovieModel{}); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	var c *cache.Cache
	if cfg.Redis.Enabled() {
		c = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer c.Close()
		log.Info("redis cache enabled", zap.String("addr", cfg.Redis.Addr))
	}

	jwter := auth.NewJWTer(cfg.Auth.Secret, cfg.Auth.TTL())
	users := repo.NewUserRepo(db)

	r := router.NewAPIEngine(log, router.Deps{
		DB:         db,
		Sessions:   auth.NewSessionResolver(jwter, users),
		AuthHeader: cfg.Auth.Header,
		Auth:       service.NewAuthService(users, utils.NewPasswordCodec(cfg.Auth.BcryptCost), jwter, auth.OneTimeTokens{}, log),
		Users:      service.NewUserService(users, log),
		Cache:      c,
		CacheTTL:   cfg.Redis.CacheTTL(),
		Limits: router.Limits{
			MaxInFlight:  cfg.App.HTTP.MaxInFlight,
			MaxBodyBytes: cfg.App.HTTP.MaxBodyBytes,
			Timeout:      time.Duration(cfg.App.HTTP.RequestTimeoutSec) * time.Second,
		},
		Server: server.Options{Mode: ginMode(cfg.App.Env), CORSOrigins: cfg.App.CORSOrigins},
	})

	srv := server.BuildServer(
		server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port), r, log,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)
	if err := server.Run(srv, log, "user api"); err != nil {
		log.Error("user api exited", zap.Error(err))
	}
}

func ginMode(env string) string {
	if env == "prod" || env == "production" {
		return gin.ReleaseMode
	}
	return gin.DebugMode
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		Schema:             cfg.DB.Schema,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	}, l)
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}
