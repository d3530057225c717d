package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every environment variable the tracker reads.
const EnvPrefix = "GOLDTRACK"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App    AppConfig
	DB     DBConfig
	Redis  RedisConfig
	Fees   FeesConfig
	Recalc RecalcConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"GOLDTRACK_APP_ENV" required:"true"`
	Port         string `envconfig:"GOLDTRACK_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"GOLDTRACK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GOLDTRACK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"GOLDTRACK_DB_DSN"`
	Driver string `envconfig:"GOLDTRACK_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"GOLDTRACK_DB_HOST"`
	Port     int    `envconfig:"GOLDTRACK_DB_PORT" default:"5432"`
	User     string `envconfig:"GOLDTRACK_DB_USER"`
	Password string `envconfig:"GOLDTRACK_DB_PASSWORD"`
	Name     string `envconfig:"GOLDTRACK_DB_NAME"`
	SSLMode  string `envconfig:"GOLDTRACK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GOLDTRACK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GOLDTRACK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GOLDTRACK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GOLDTRACK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GOLDTRACK_REDIS_URL"`
	Address      string        `envconfig:"GOLDTRACK_REDIS_ADDR"`
	Password     string        `envconfig:"GOLDTRACK_REDIS_PASSWORD"`
	DB           int           `envconfig:"GOLDTRACK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GOLDTRACK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GOLDTRACK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GOLDTRACK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GOLDTRACK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GOLDTRACK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// FeesConfig carries the business constants the discount engine falls back on.
type FeesConfig struct {
	BaseFeePerGram float64 `envconfig:"GOLDTRACK_BASE_FEE_PER_GRAM" default:"5"`
}

type RecalcConfig struct {
	BatchSize      int           `envconfig:"GOLDTRACK_RECALC_BATCH_SIZE" default:"20"`
	PollInterval   time.Duration `envconfig:"GOLDTRACK_RECALC_POLL_INTERVAL" default:"2s"`
	MaxAttempts    int           `envconfig:"GOLDTRACK_RECALC_MAX_ATTEMPTS" default:"10"`
	MaxConcurrency int           `envconfig:"GOLDTRACK_RECALC_MAX_CONCURRENCY" default:"4"`
	LockTTL        time.Duration `envconfig:"GOLDTRACK_RECALC_LOCK_TTL" default:"5m"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	for envVar, value := range map[string]string{
		"GOLDTRACK_DB_HOST": db.Host,
		"GOLDTRACK_DB_USER": db.User,
		"GOLDTRACK_DB_NAME": db.Name,
	} {
		if value == "" {
			missing = append(missing, envVar)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either GOLDTRACK_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}
	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
