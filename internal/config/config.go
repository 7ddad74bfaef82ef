package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

type Config struct {
	Port      string `env:"PORT,default=8080"`
	DbHost    string `env:"DB_HOST"`
	DbPort    string `env:"DB_PORT,default=5432"`
	DbUser    string `env:"DB_USER"`
	DbPass    string `env:"DB_PASSWORD"`
	DbName    string `env:"DB_NAME"`
	DbSSLMode string `env:"DB_SSLMODE,default=disable"`
	DbMaxConn int32  `env:"DB_MAX_CONNS,default=10"`

	JWTSecret    string        `env:"JWT_SECRET"`
	JWTExpiresIn time.Duration `env:"JWT_EXPIRES_IN,default=168h"`

	Log      string `env:"LOG"`
	LogLevel string `env:"LOGLEVEL,default=info"`
	LogDir   string `env:"LOG_DIR,default=logs"`
	Env      string `env:"ENV,default=prod"` // dev|prod

	CORSOrigin        string        `env:"CORS_ORIGIN,default=http://localhost:5173"`
	RateLimitRequests int           `env:"RATE_LIMIT_REQUESTS,default=100"`
	RateLimitWindow   time.Duration `env:"RATE_LIMIT_WINDOW,default=15m"`
	BodyLimitBytes    int64         `env:"BODY_LIMIT_BYTES,default=10485760"`

	MigrateOnStart  bool          `env:"MIGRATE_ON_START,default=true"`
	MetricsEnabled  bool          `env:"METRICS_ENABLED,default=true"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
}

// LoadConfig загружает .env, читает переменные окружения и выставляет дефолты.
// Ничего не логирует, logger инициализируется уже из готового конфига.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{}
	if err := envdecode.Decode(cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode env: %w", err)
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	cfg.Log = strings.ToLower(strings.TrimSpace(cfg.Log))

	return cfg, nil
}

func (c *Config) IsProd() bool {
	return c.Env == "prod" || c.Env == "production"
}

// Validate возвращает предупреждения и фатальную ошибку (если критично).
func (c *Config) Validate() (warnings []string, err error) {
	if c.DbHost == "" || c.DbUser == "" || c.DbName == "" {
		return nil, fmt.Errorf("incomplete DB config (DB_HOST/DB_USER/DB_NAME)")
	}

	if strings.TrimSpace(c.JWTSecret) == "" {
		if c.IsProd() {
			return nil, fmt.Errorf("JWT_SECRET is required in prod")
		}
		warnings = append(warnings, "JWT_SECRET is empty")
	}

	if c.JWTExpiresIn <= 0 {
		warnings = append(warnings, "JWT_EXPIRES_IN is not positive, tokens expire immediately")
	}

	if c.Port == "" {
		warnings = append(warnings, "PORT is empty, using default 8080")
		c.Port = "8080"
	}

	return warnings, nil
}

// GetDSN — полная DSN (с паролем)
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DbUser, c.DbPass, c.DbHost, c.DbPort, c.DbName, c.DbSSLMode,
	)
}

// GetDSNSafe — DSN без пароля (для логов)
func (c *Config) GetDSNSafe() string {
	return fmt.Sprintf(
		"postgres://%s:***@%s:%s/%s?sslmode=%s",
		c.DbUser, c.DbHost, c.DbPort, c.DbName, c.DbSSLMode,
	)
}

// MigrateURL is the DSN in the scheme golang-migrate's pgx/v5 driver registers.
func (c *Config) MigrateURL() string {
	return "pgx5" + strings.TrimPrefix(c.GetDSN(), "postgres")
}
