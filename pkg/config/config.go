package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Password PasswordConfig
	Razorpay RazorpayConfig
	Cron     CronConfig
	Webhook  WebhookConfig
	Features FeatureFlagsConfig
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
	Env          string `envconfig:"MILKO_APP_ENV" required:"true"`
	Port         string `envconfig:"MILKO_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MILKO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MILKO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MILKO_DB_DSN"`
	Driver string `envconfig:"MILKO_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MILKO_DB_HOST"`
	LegacyPort     int    `envconfig:"MILKO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MILKO_DB_USER"`
	LegacyPassword string `envconfig:"MILKO_DB_PASSWORD"`
	LegacyName     string `envconfig:"MILKO_DB_NAME"`
	LegacySSLMode  string `envconfig:"MILKO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MILKO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MILKO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MILKO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MILKO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MILKO_REDIS_URL"`
	Address      string        `envconfig:"MILKO_REDIS_ADDR"`
	Password     string        `envconfig:"MILKO_REDIS_PASSWORD"`
	DB           int           `envconfig:"MILKO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MILKO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MILKO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MILKO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MILKO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MILKO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"MILKO_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"MILKO_JWT_ISSUER" default:"milko"`
	ExpirationMinutes int    `envconfig:"MILKO_JWT_EXPIRATION_MINUTES" default:"1440"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"MILKO_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"MILKO_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"MILKO_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"MILKO_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"MILKO_ARGON_KEY_LEN" default:"32"`
}

type RazorpayConfig struct {
	KeyID         string `envconfig:"MILKO_RAZORPAY_KEY_ID" required:"true"`
	KeySecret     string `envconfig:"MILKO_RAZORPAY_KEY_SECRET" required:"true"`
	WebhookSecret string `envconfig:"MILKO_RAZORPAY_WEBHOOK_SECRET" required:"true"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"MILKO_CRON_INTERVAL" default:"24h"`
	LockTTL  time.Duration `envconfig:"MILKO_CRON_LOCK_TTL" default:"25h"`
	LockKey  string        `envconfig:"MILKO_CRON_LOCK_KEY" default:"milko:cron:lock"`
}

type WebhookConfig struct {
	IdempotencyTTL time.Duration `envconfig:"MILKO_WEBHOOK_IDEMPOTENCY_TTL" default:"720h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MILKO_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
