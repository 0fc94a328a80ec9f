package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Auction      AuctionConfig
	Requirement  RequirementConfig
	Outbox       OutboxConfig
	NATS         NATSConfig
	Cron         CronConfig
	RateLimit    RateLimitConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if err := cfg.Auction.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MANDI_APP_ENV" required:"true"`
	Port         string `envconfig:"MANDI_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MANDI_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"MANDI_LOG_FORMAT"`
	LogWarnStack bool   `envconfig:"MANDI_LOG_WARN_STACK" default:"false"`

	// CORSOrigins overrides the built-in browser origin allowlist.
	CORSOrigins []string `envconfig:"MANDI_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"MANDI_SERVICE_KIND" default:"api"`
	// MetricsAddr is the scrape listener for the cron worker and outbox
	// publisher. Empty disables it; the api serves /metrics on its own port.
	MetricsAddr string `envconfig:"MANDI_METRICS_ADDR"`
}

type DBConfig struct {
	DSN    string `envconfig:"MANDI_DB_DSN"`
	Driver string `envconfig:"MANDI_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MANDI_DB_HOST"`
	LegacyPort     int    `envconfig:"MANDI_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MANDI_DB_USER"`
	LegacyPassword string `envconfig:"MANDI_DB_PASSWORD"`
	LegacyName     string `envconfig:"MANDI_DB_NAME"`
	LegacySSLMode  string `envconfig:"MANDI_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MANDI_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MANDI_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MANDI_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MANDI_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	// SlowQueryThreshold logs statements slower than this; zero disables it.
	SlowQueryThreshold time.Duration `envconfig:"MANDI_DB_SLOW_QUERY_THRESHOLD" default:"500ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MANDI_REDIS_URL"`
	Address      string        `envconfig:"MANDI_REDIS_ADDR"`
	Password     string        `envconfig:"MANDI_REDIS_PASSWORD"`
	DB           int           `envconfig:"MANDI_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MANDI_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MANDI_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MANDI_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MANDI_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MANDI_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"MANDI_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"MANDI_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"MANDI_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"MANDI_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"MANDI_AUTO_MIGRATE" default:"false"`
}

// AuctionConfig holds marketplace defaults applied when a listing omits them.
type AuctionConfig struct {
	MinIncrement    string        `envconfig:"MANDI_AUCTION_MIN_INCREMENT" default:"1"`
	DefaultDuration time.Duration `envconfig:"MANDI_AUCTION_DEFAULT_DURATION" default:"72h"`
	MaxDuration     time.Duration `envconfig:"MANDI_AUCTION_MAX_DURATION" default:"720h"`
}

// Increment parses MinIncrement; validate() has already rejected bad values.
func (a AuctionConfig) Increment() decimal.Decimal {
	inc, err := decimal.NewFromString(strings.TrimSpace(a.MinIncrement))
	if err != nil || !inc.IsPositive() {
		return decimal.NewFromInt(1)
	}
	return inc
}

func (a AuctionConfig) validate() error {
	inc, err := decimal.NewFromString(strings.TrimSpace(a.MinIncrement))
	if err != nil {
		return fmt.Errorf("%s must be a decimal: %w", EnvAuctionMinIncrement, err)
	}
	if !inc.IsPositive() {
		return fmt.Errorf("%s must be positive", EnvAuctionMinIncrement)
	}
	if a.DefaultDuration <= 0 {
		return fmt.Errorf("%s must be positive", EnvAuctionDefaultDuration)
	}
	return nil
}

type RequirementConfig struct {
	// CountBasedFulfillment flips a requirement to fulfilled once accepted
	// offer quantity covers it. Off by default: buyers close requirements.
	CountBasedFulfillment bool `envconfig:"MANDI_REQUIREMENT_COUNT_FULFILLMENT" default:"false"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"MANDI_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"MANDI_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"MANDI_OUTBOX_MAX_ATTEMPTS" default:"10"`
	RetentionDays  int `envconfig:"MANDI_OUTBOX_RETENTION_DAYS" default:"30"`
}

type NATSConfig struct {
	URL           string `envconfig:"MANDI_NATS_URL" default:"nats://127.0.0.1:4222"`
	SubjectPrefix string `envconfig:"MANDI_NATS_SUBJECT_PREFIX" default:"mandi.events"`
	ClientName    string `envconfig:"MANDI_NATS_CLIENT_NAME" default:"mandi-outbox-publisher"`
}

// RateLimitConfig throttles write-heavy routes per user. A zero limit disables it.
type RateLimitConfig struct {
	BidWindow time.Duration `envconfig:"MANDI_RATE_LIMIT_BID_WINDOW" default:"1m"`
	BidLimit  int           `envconfig:"MANDI_RATE_LIMIT_BID_LIMIT" default:"30"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"MANDI_CRON_INTERVAL" default:"1m"`
	LockTTL  time.Duration `envconfig:"MANDI_CRON_LOCK_TTL" default:"5m"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if useSQLite {
		db.Driver = "sqlite"
		if db.DSN == "" {
			db.DSN = "file:mandi.db?_foreign_keys=on"
		}
		return nil
	}
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
