package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Square        SquareConfig
	Billing       BillingConfig
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
	Env          string `envconfig:"SLABDESK_APP_ENV" required:"true"`
	Port         string `envconfig:"SLABDESK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SLABDESK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SLABDESK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SLABDESK_DB_DSN"`
	Driver string `envconfig:"SLABDESK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SLABDESK_DB_HOST"`
	LegacyPort     int    `envconfig:"SLABDESK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SLABDESK_DB_USER"`
	LegacyPassword string `envconfig:"SLABDESK_DB_PASSWORD"`
	LegacyName     string `envconfig:"SLABDESK_DB_NAME"`
	LegacySSLMode  string `envconfig:"SLABDESK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SLABDESK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SLABDESK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SLABDESK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SLABDESK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SLABDESK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SLABDESK_REDIS_ADDR"`
	Password     string        `envconfig:"SLABDESK_REDIS_PASSWORD"`
	DB           int           `envconfig:"SLABDESK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SLABDESK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SLABDESK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SLABDESK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SLABDESK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SLABDESK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"SLABDESK_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"SLABDESK_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"SLABDESK_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"SLABDESK_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SLABDESK_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SLABDESK_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SLABDESK_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SLABDESK_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SLABDESK_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"SLABDESK_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"SLABDESK_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"SLABDESK_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"SLABDESK_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"1m"`
	RegisterEmailLimit int           `envconfig:"SLABDESK_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"5"`
	RegisterIPLimit    int           `envconfig:"SLABDESK_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SLABDESK_AUTO_MIGRATE" default:"false"`
}

type SquareConfig struct {
	AccessToken string `envconfig:"SLABDESK_SQUARE_ACCESS_TOKEN"`
	Env         string `envconfig:"SLABDESK_SQUARE_ENV" default:"sandbox"`
	LocationID  string `envconfig:"SLABDESK_SQUARE_LOCATION_ID"`
}

// Environment returns the normalized Square environment (sandbox/production).
func (s SquareConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "sandbox"
	}
	return env
}

type BillingConfig struct {
	// Flat grading fee per card, used when the billing settings row carries no rate.
	DefaultUnitRateCents int `envconfig:"SLABDESK_BILLING_UNIT_RATE_CENTS" default:"2500"`
	// Return shipping charged once per invoice.
	DefaultShippingCents int    `envconfig:"SLABDESK_BILLING_SHIPPING_CENTS" default:"1500"`
	Currency             string `envconfig:"SLABDESK_BILLING_CURRENCY" default:"USD"`
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
