package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Retention    RetentionConfig
	Cloudinary   CloudinaryConfig
	Sweep        SweepConfig
	FeatureFlags FeatureFlagsConfig
	RateLimit    RateLimitConfig
	Cron         CronConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Retention.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"VOUCHLY_APP_ENV" required:"true"`
	Port         string `envconfig:"VOUCHLY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"VOUCHLY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"VOUCHLY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"VOUCHLY_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"VOUCHLY_DB_DSN"`
	Driver string `envconfig:"VOUCHLY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"VOUCHLY_DB_HOST"`
	LegacyPort     int    `envconfig:"VOUCHLY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"VOUCHLY_DB_USER"`
	LegacyPassword string `envconfig:"VOUCHLY_DB_PASSWORD"`
	LegacyName     string `envconfig:"VOUCHLY_DB_NAME"`
	LegacySSLMode  string `envconfig:"VOUCHLY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"VOUCHLY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"VOUCHLY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"VOUCHLY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"VOUCHLY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"VOUCHLY_REDIS_URL" required:"true"`
	Address      string        `envconfig:"VOUCHLY_REDIS_ADDR"`
	Password     string        `envconfig:"VOUCHLY_REDIS_PASSWORD"`
	DB           int           `envconfig:"VOUCHLY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"VOUCHLY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"VOUCHLY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"VOUCHLY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"VOUCHLY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"VOUCHLY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// RetentionConfig externalizes the lifecycle windows so the policy stays free
// of magic numbers. Values are whole days.
type RetentionConfig struct {
	PendingTimeoutDays    int `envconfig:"VOUCHLY_RETENTION_PENDING_TIMEOUT_DAYS" default:"10"`
	ApprovedRetentionDays int `envconfig:"VOUCHLY_RETENTION_APPROVED_DAYS" default:"15"`
	RejectedRetentionDays int `envconfig:"VOUCHLY_RETENTION_REJECTED_DAYS" default:"3"`
}

func (r RetentionConfig) validate() error {
	if r.PendingTimeoutDays <= 0 || r.ApprovedRetentionDays <= 0 || r.RejectedRetentionDays <= 0 {
		return fmt.Errorf("retention windows must be positive")
	}
	return nil
}

// PendingTimeout returns the review grace period as a duration.
func (r RetentionConfig) PendingTimeout() time.Duration {
	return time.Duration(r.PendingTimeoutDays) * 24 * time.Hour
}

// ApprovedRetention returns the post-approval download window as a duration.
func (r RetentionConfig) ApprovedRetention() time.Duration {
	return time.Duration(r.ApprovedRetentionDays) * 24 * time.Hour
}

// RejectedRetention returns the post-rejection grace period as a duration.
func (r RetentionConfig) RejectedRetention() time.Duration {
	return time.Duration(r.RejectedRetentionDays) * 24 * time.Hour
}

type CloudinaryConfig struct {
	CloudName string        `envconfig:"VOUCHLY_CLOUDINARY_CLOUD_NAME" required:"true"`
	APIKey    string        `envconfig:"VOUCHLY_CLOUDINARY_API_KEY" required:"true"`
	APISecret string        `envconfig:"VOUCHLY_CLOUDINARY_API_SECRET" required:"true"`
	BaseURL   string        `envconfig:"VOUCHLY_CLOUDINARY_BASE_URL" default:"https://api.cloudinary.com"`
	Timeout   time.Duration `envconfig:"VOUCHLY_CLOUDINARY_TIMEOUT" default:"15s"`
}

// SweepConfig controls the retention sweep trigger surface.
type SweepConfig struct {
	// Secret, when set, must accompany sweep trigger calls. Empty leaves the
	// endpoint open for deployments that gate it at the network layer.
	Secret    string `envconfig:"VOUCHLY_SWEEP_SECRET"`
	BatchSize int    `envconfig:"VOUCHLY_SWEEP_BATCH_SIZE" default:"200"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"VOUCHLY_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"VOUCHLY_AUTO_MIGRATE" default:"false"`
}

// RateLimitConfig throttles the review surface per caller IP. A zero window
// or limit disables the middleware.
type RateLimitConfig struct {
	ReviewWindow  time.Duration `envconfig:"VOUCHLY_REVIEW_RATE_WINDOW" default:"1m"`
	ReviewIPLimit int           `envconfig:"VOUCHLY_REVIEW_RATE_IP_LIMIT" default:"30"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"VOUCHLY_CRON_INTERVAL" default:"1h"`
	LockTTL  time.Duration `envconfig:"VOUCHLY_CRON_LOCK_TTL" default:"2h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"VOUCHLY_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"VOUCHLY_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"VOUCHLY_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	LifecycleTopic string `envconfig:"VOUCHLY_PUBSUB_LIFECYCLE_TOPIC" required:"true"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"VOUCHLY_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"VOUCHLY_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"VOUCHLY_OUTBOX_MAX_ATTEMPTS" default:"10"`
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
