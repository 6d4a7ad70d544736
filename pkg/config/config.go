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
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Catalog      CatalogConfig
	Inventory    InventoryConfig
	Session      SessionConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
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
	Env          string `envconfig:"VITTORIA_APP_ENV" required:"true"`
	Port         string `envconfig:"VITTORIA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"VITTORIA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"VITTORIA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"VITTORIA_DB_DSN"`
	Driver string `envconfig:"VITTORIA_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"VITTORIA_DB_HOST"`
	Port     int    `envconfig:"VITTORIA_DB_PORT" default:"5432"`
	User     string `envconfig:"VITTORIA_DB_USER"`
	Password string `envconfig:"VITTORIA_DB_PASSWORD"`
	Name     string `envconfig:"VITTORIA_DB_NAME"`
	SSLMode  string `envconfig:"VITTORIA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"VITTORIA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"VITTORIA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"VITTORIA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"VITTORIA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"VITTORIA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"VITTORIA_REDIS_ADDR"`
	Password     string        `envconfig:"VITTORIA_REDIS_PASSWORD"`
	DB           int           `envconfig:"VITTORIA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"VITTORIA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"VITTORIA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"VITTORIA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"VITTORIA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"VITTORIA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"VITTORIA_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"VITTORIA_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"VITTORIA_JWT_EXPIRATION_MINUTES" default:"720"`
}

// CatalogConfig controls the read-through catalog cache.
type CatalogConfig struct {
	CacheTTL time.Duration `envconfig:"VITTORIA_CATALOG_CACHE_TTL" default:"5m"`
}

// InventoryConfig points at the external availability backend.
type InventoryConfig struct {
	BaseURL string        `envconfig:"VITTORIA_INVENTORY_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"VITTORIA_INVENTORY_TIMEOUT" default:"3s"`
}

// SessionConfig bounds open customization sessions.
type SessionConfig struct {
	IdleTTL     time.Duration `envconfig:"VITTORIA_SESSION_IDLE_TTL" default:"30m"`
	MaxOpen     int           `envconfig:"VITTORIA_SESSION_MAX_OPEN" default:"256"`
	MaxNoteLen  int           `envconfig:"VITTORIA_SESSION_MAX_NOTE_LEN" default:"100"`
	MaxQuantity int           `envconfig:"VITTORIA_SESSION_MAX_QUANTITY" default:"99"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"VITTORIA_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	OrderLinesTopic string `envconfig:"VITTORIA_PUBSUB_ORDER_LINES_TOPIC" default:"vr-order-lines"`
}

type FeatureFlagsConfig struct {
	AutoMigrate    bool `envconfig:"VITTORIA_AUTO_MIGRATE" default:"false"`
	PublishCommits bool `envconfig:"VITTORIA_FEATURE_PUBLISH_COMMITS" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range requiredDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
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
