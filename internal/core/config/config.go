package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host              string `mapstructure:"host"`
	Port              int    `mapstructure:"port"`
	ReadTimeoutSec    int    `mapstructure:"readTimeoutSec"`
	WriteTimeoutSec   int    `mapstructure:"writeTimeoutSec"`
	IdleTimeoutSec    int    `mapstructure:"idleTimeoutSec"`
	RequestTimeoutSec int    `mapstructure:"requestTimeoutSec"` // 单请求 ctx 截止时间
	MaxInFlight       int64  `mapstructure:"maxInFlight"`       // <=0 不限制
	MaxBodyBytes      int64  `mapstructure:"maxBodyBytes"`
}

type AdminHTTP struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type App struct {
	Name        string    `mapstructure:"name"`
	Env         string    `mapstructure:"env"`
	HTTP        HTTP      `mapstructure:"http"`
	Admin       AdminHTTP `mapstructure:"admin"`
	CORSOrigins []string  `mapstructure:"corsOrigins"` // 为空则允许全部
}

type LogFile struct {
	Enable     bool   `mapstructure:"enable"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"maxSizeMB"`
	MaxBackups int    `mapstructure:"maxBackups"`
	MaxAgeDays int    `mapstructure:"maxAgeDays"`
	Compress   bool   `mapstructure:"compress"`
}

type Log struct {
	Level string  `mapstructure:"level"`
	JSON  bool    `mapstructure:"json"`
	File  LogFile `mapstructure:"file"`
}

type Auth struct {
	Secret            string `mapstructure:"secret"`
	AccessTokenTTLMin int    `mapstructure:"accessTokenTTLMin"`
	Header            string `mapstructure:"header"` // 默认 Authorization
	BcryptCost        int    `mapstructure:"bcryptCost"`
}

func (a Auth) TTL() time.Duration { return time.Duration(a.AccessTokenTTLMin) * time.Minute }

type DB struct {
	Driver             string `mapstructure:"driver"`
	DSN                string `mapstructure:"dsn"`
	Username           string `mapstructure:"username"`
	Password           string `mapstructure:"password"`
	Schema             string `mapstructure:"schema"`
	MaxOpenConns       int    `mapstructure:"maxOpenConns"`
	MaxIdleConns       int    `mapstructure:"maxIdleConns"`
	ConnMaxLifetimeMin int    `mapstructure:"connMaxLifetimeMin"`
	AutoMigrate        bool   `mapstructure:"autoMigrate"`
	LogLevel           string `mapstructure:"logLevel"`
}

// Redis addr 为空时不启用缓存
type Redis struct {
	Addr        string `mapstructure:"addr"`
	Password    string `mapstructure:"password"`
	DB          int    `mapstructure:"db"`
	CacheTTLSec int    `mapstructure:"cacheTTLSec"`
}

func (r Redis) Enabled() bool { return r.Addr != "" }

func (r Redis) CacheTTL() time.Duration { return time.Duration(r.CacheTTLSec) * time.Second }

type Config struct {
	App   App   `mapstructure:"app"`
	Log   Log   `mapstructure:"log"`
	Auth  Auth  `mapstructure:"auth"`
	DB    DB    `mapstructure:"db"`
	Redis Redis `mapstructure:"redis"`
}

const DefaultPath = "./configs/config.local.yaml"

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "redflix-api")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.readTimeoutSec", 5)
	v.SetDefault("app.http.writeTimeoutSec", 10)
	v.SetDefault("app.http.idleTimeoutSec", 60)
	v.SetDefault("app.http.requestTimeoutSec", 10)
	v.SetDefault("app.http.maxInFlight", 300)
	v.SetDefault("app.http.maxBodyBytes", 1<<20)
	v.SetDefault("app.admin.port", 8081)
	v.SetDefault("log.level", "info")
	v.SetDefault("auth.accessTokenTTLMin", 60)
	v.SetDefault("auth.header", "Authorization")
	v.SetDefault("auth.bcryptCost", 10)
	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.maxOpenConns", 20)
	v.SetDefault("db.maxIdleConns", 5)
	v.SetDefault("db.connMaxLifetimeMin", 30)
	v.SetDefault("db.logLevel", "warn")
	v.SetDefault("redis.cacheTTLSec", 300)
}

// Load 读 yaml，再用 APP_ 前缀的环境变量覆盖（app.http.port → APP_APP_HTTP_PORT）
func Load(path string) (*Config, error) {
	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = DefaultPath
		}
	}
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate 启动前检查，任何监听之前失败
func (c *Config) Validate() error {
	var errs []error
	if c.Auth.Secret == "" {
		errs = append(errs, errors.New("auth.secret is required"))
	}
	if c.Auth.AccessTokenTTLMin <= 0 {
		errs = append(errs, errors.New("auth.accessTokenTTLMin must be positive"))
	}
	switch c.DB.Driver {
	case "postgres", "mysql":
	default:
		errs = append(errs, fmt.Errorf("db.driver %q is not supported", c.DB.Driver))
	}
	if c.DB.DSN == "" {
		errs = append(errs, errors.New("db.dsn is required"))
	}
	if c.Redis.Enabled() && c.Redis.CacheTTLSec <= 0 {
		errs = append(errs, errors.New("redis.cacheTTLSec must be positive when redis is enabled"))
	}
	return errors.Join(errs...)
}
