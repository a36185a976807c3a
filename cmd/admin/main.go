package main

import (
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"redflix-api/internal/core/auth"
	"redflix-api/internal/core/config"
	"redflix-api/internal/core/database"
	"redflix-api/internal/core/logger"
	"redflix-api/internal/core/server"
	"redflix-api/internal/repo"
	"redflix-api/internal/service"
	"redflix-api/internal/transport/http/router"
)

// 管理端不做迁移，表结构由 cmd/api 负责
func main() {
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		zap.NewExample().Fatal("load config", zap.Error(err))
	}
	log, cleanup := logger.New(logger.FromConfig(cfg.Log))
	defer cleanup()
	log = log.Named("admin")

	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	jwter := auth.NewJWTer(cfg.Auth.Secret, cfg.Auth.TTL())
	users := repo.NewUserRepo(db)

	mode := gin.DebugMode
	if cfg.App.Env == "prod" || cfg.App.Env == "production" {
		mode = gin.ReleaseMode
	}
	r := router.NewAdminEngine(log, router.Deps{
		DB:         db,
		Sessions:   auth.NewSessionResolver(jwter, users),
		AuthHeader: cfg.Auth.Header,
		Users:      service.NewUserService(users, log),
		Limits: router.Limits{
			MaxInFlight:  cfg.App.HTTP.MaxInFlight,
			MaxBodyBytes: cfg.App.HTTP.MaxBodyBytes,
			Timeout:      time.Duration(cfg.App.HTTP.RequestTimeoutSec) * time.Second,
		},
		Server: server.Options{Mode: mode, CORSOrigins: cfg.App.CORSOrigins},
	})

	srv := server.BuildServer(server.Addr(cfg.App.Admin.Host, cfg.App.Admin.Port), r, log, 5*time.Second, 10*time.Second, 60*time.Second)
	if err := server.Run(srv, log, "admin api"); err != nil {
		log.Error("admin api exited", zap.Error(err))
	}
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
