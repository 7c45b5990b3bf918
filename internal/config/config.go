package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// EnvDevelopment enables verbose error details in API responses.
const EnvDevelopment = "development"

// Config holds application level configuration loaded from environment variables
// (STORE_ prefix), an optional YAML file, and the plain variable names used by
// docker-compose.
type Config struct {
	Env         string        `default:"production" usage:"Runtime environment (development exposes error details)"`
	ServerPort  string        `default:"8080" usage:"HTTP listen port"`
	MySQLDSN    string        `env:"MYSQL_DSN" default:"user:password@tcp(localhost:3306)/store?charset=utf8mb4&parseTime=True&loc=UTC" usage:"MySQL DSN"`
	MySQLPool   PoolConfig    `env:"MYSQL_POOL"`
	RedisAddr   string        `default:"localhost:6379" usage:"Redis address for token revocation"`
	RedisDB     int           `default:"0" usage:"Redis database index"`
	RedisPass   string        `env:"REDIS_PASSWORD" usage:"Redis password"`
	JWTSecret   string        `env:"JWT_SECRET" default:"change-me" usage:"HMAC secret for bearer tokens"`
	TokenTTL    time.Duration `env:"TOKEN_TTL" default:"24h" usage:"Bearer token lifetime"`
	SwaggerHost string        `usage:"Public host used in the swagger URL"`
	CORSOrigins []string      `env:"CORS_ORIGINS" default:"http://localhost:5173" usage:"Origins allowed to call the API with credentials"`
	ResetDB     bool          `env:"RESET_DB" default:"false" usage:"Drop all tables before migrating"`
}

// PoolConfig tunes the database/sql connection pool behind gorm.
type PoolConfig struct {
	MaxOpenConns    int           `default:"25"`
	MaxIdleConns    int           `default:"5"`
	ConnMaxLifetime time.Duration `default:"5m"`
}

// IsDevelopment reports whether verbose error details may be returned to clients.
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// Load builds Config from environment and config files with sensible defaults.
func Load() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "STORE",
		SkipFlags: true,
		Files:     []string{"config.yaml", "/etc/store/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlainEnv()

	if cfg.JWTSecret == "" {
		return nil, errors.New("jwt secret is required: set STORE_JWT_SECRET or JWT_SECRET")
	}
	return &cfg, nil
}

// applyPlainEnv honours the unprefixed variable names used by docker-compose files.
func (c *Config) applyPlainEnv() {
	c.ServerPort = getEnv("SERVER_PORT", c.ServerPort)
	c.MySQLDSN = getEnv("MYSQL_DSN", c.MySQLDSN)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisDB = getEnvInt("REDIS_DB", c.RedisDB)
	c.RedisPass = getEnv("REDIS_PASSWORD", c.RedisPass)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.SwaggerHost = getEnv("SWAGGER_HOST", c.SwaggerHost)
	c.Env = getEnv("APP_ENV", c.Env)
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.CORSOrigins = strings.Split(v, ",")
	}
	if os.Getenv("RESET_DB") == "true" {
		c.ResetDB = true
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}
