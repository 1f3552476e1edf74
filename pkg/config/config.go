package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App     AppConfig
	Service ServiceConfig
	DB      DBConfig
	Redis   RedisConfig
	JWT     JWTConfig
	Cache   CacheConfig
	GCP     GCPConfig
	PubSub  PubSubConfig
	Sync    SyncConfig
	Notify  NotifyConfig
	Flags   FeatureFlagsConfig
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
	Env          string `envconfig:"CLUBS_APP_ENV" required:"true"`
	Port         string `envconfig:"CLUBS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CLUBS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CLUBS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"CLUBS_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"CLUBS_DB_DSN"`
	Driver string `envconfig:"CLUBS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CLUBS_DB_HOST"`
	LegacyPort     int    `envconfig:"CLUBS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CLUBS_DB_USER"`
	LegacyPassword string `envconfig:"CLUBS_DB_PASSWORD"`
	LegacyName     string `envconfig:"CLUBS_DB_NAME"`
	LegacySSLMode  string `envconfig:"CLUBS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CLUBS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CLUBS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CLUBS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CLUBS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CLUBS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CLUBS_REDIS_ADDR"`
	Password     string        `envconfig:"CLUBS_REDIS_PASSWORD"`
	DB           int           `envconfig:"CLUBS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CLUBS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CLUBS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CLUBS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CLUBS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CLUBS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"CLUBS_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"CLUBS_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"CLUBS_JWT_EXPIRATION_MINUTES" required:"true"`
}

// AccessTokenTTL returns the access token TTL configured in minutes.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type CacheConfig struct {
	ClubDetailCapacity int           `envconfig:"CLUBS_CACHE_CLUB_DETAIL_CAPACITY" default:"50"`
	CategoryTTL        time.Duration `envconfig:"CLUBS_CACHE_CATEGORY_TTL" default:"240h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"CLUBS_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"CLUBS_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"CLUBS_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"CLUBS_PUBSUB_DOMAIN_TOPIC" required:"true"`
	NotifySubscription string `envconfig:"CLUBS_PUBSUB_NOTIFY_SUBSCRIPTION" required:"true"`
}

// SyncConfig guards the inter-service rename cascade. The shared secret is
// supplied out of band and stored here only as an argon2id hash.
type SyncConfig struct {
	SecretHash   string        `envconfig:"CLUBS_INTER_SERVICE_SECRET_HASH"`
	RenameWindow time.Duration `envconfig:"CLUBS_SYNC_RENAME_WINDOW" default:"1m"`
	RenameLimit  int64         `envconfig:"CLUBS_SYNC_RENAME_LIMIT" default:"5"`
}

type NotifyConfig struct {
	FromAddress    string `envconfig:"CLUBS_NOTIFY_FROM_ADDRESS" default:"noreply@clubs.example.org"`
	CouncilAddress string `envconfig:"CLUBS_NOTIFY_COUNCIL_ADDRESS" default:"clubs@clubs.example.org"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CLUBS_AUTO_MIGRATE" default:"false"`
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
