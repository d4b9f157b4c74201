package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "FERIAVIRTUAL"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "FERIAVIRTUAL_DB_DSN"
	EnvDBHost = "FERIAVIRTUAL_DB_HOST"
	EnvDBUser = "FERIAVIRTUAL_DB_USER"
	EnvDBName = "FERIAVIRTUAL_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Session      SessionConfig
	Checkout     CheckoutConfig
	SMTP         SMTPConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"FERIAVIRTUAL_APP_ENV" required:"true"`
	Port         string `envconfig:"FERIAVIRTUAL_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"FERIAVIRTUAL_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FERIAVIRTUAL_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"FERIAVIRTUAL_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"FERIAVIRTUAL_DB_DSN"`
	Driver string `envconfig:"FERIAVIRTUAL_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"FERIAVIRTUAL_DB_HOST"`
	LegacyPort     int    `envconfig:"FERIAVIRTUAL_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FERIAVIRTUAL_DB_USER"`
	LegacyPassword string `envconfig:"FERIAVIRTUAL_DB_PASSWORD"`
	LegacyName     string `envconfig:"FERIAVIRTUAL_DB_NAME"`
	LegacySSLMode  string `envconfig:"FERIAVIRTUAL_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FERIAVIRTUAL_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FERIAVIRTUAL_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FERIAVIRTUAL_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FERIAVIRTUAL_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FERIAVIRTUAL_REDIS_URL" required:"true"`
	Address      string        `envconfig:"FERIAVIRTUAL_REDIS_ADDR"`
	Password     string        `envconfig:"FERIAVIRTUAL_REDIS_PASSWORD"`
	DB           int           `envconfig:"FERIAVIRTUAL_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FERIAVIRTUAL_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FERIAVIRTUAL_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FERIAVIRTUAL_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FERIAVIRTUAL_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FERIAVIRTUAL_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// SessionConfig tunes the anonymous browsing session tokens that key
// each shopper's server-side cart.
type SessionConfig struct {
	Secret     string `envconfig:"FERIAVIRTUAL_SESSION_SECRET" required:"true"`
	Issuer     string `envconfig:"FERIAVIRTUAL_SESSION_ISSUER" default:"feriavirtual"`
	TTLMinutes int    `envconfig:"FERIAVIRTUAL_SESSION_TTL_MINUTES" default:"10080"`
}

func (s SessionConfig) TTL() time.Duration {
	if s.TTLMinutes <= 0 {
		return 0
	}
	return time.Duration(s.TTLMinutes) * time.Minute
}

type CheckoutConfig struct {
	CommissionVATPercent      string `envconfig:"FERIAVIRTUAL_COMMISSION_VAT_PERCENT" default:"19"`
	EmailNotificationsEnabled bool   `envconfig:"FERIAVIRTUAL_EMAIL_NOTIFICATIONS_ENABLED" default:"false"`
}

type SMTPConfig struct {
	Host        string `envconfig:"FERIAVIRTUAL_SMTP_HOST"`
	Port        int    `envconfig:"FERIAVIRTUAL_SMTP_PORT" default:"587"`
	Username    string `envconfig:"FERIAVIRTUAL_SMTP_USERNAME"`
	Password    string `envconfig:"FERIAVIRTUAL_SMTP_PASSWORD"`
	DefaultFrom string `envconfig:"FERIAVIRTUAL_SMTP_FROM_EMAIL"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"FERIAVIRTUAL_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"FERIAVIRTUAL_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"FERIAVIRTUAL_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrdersTopic        string `envconfig:"FERIAVIRTUAL_PUBSUB_ORDERS_TOPIC" default:"fv-order-events"`
	OrdersSubscription string `envconfig:"FERIAVIRTUAL_PUBSUB_ORDERS_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"FERIAVIRTUAL_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"FERIAVIRTUAL_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"FERIAVIRTUAL_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"FERIAVIRTUAL_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"FERIAVIRTUAL_AUTO_MIGRATE" default:"false"`
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
