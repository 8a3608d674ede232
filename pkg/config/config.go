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
	Session      SessionConfig
	Cart         CartConfig
	RateLimit    RateLimitConfig
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
	Env          string `envconfig:"WELDPOLY_APP_ENV" required:"true"`
	Port         string `envconfig:"WELDPOLY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"WELDPOLY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"WELDPOLY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"WELDPOLY_DB_DSN"`
	Driver string `envconfig:"WELDPOLY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"WELDPOLY_DB_HOST"`
	LegacyPort     int    `envconfig:"WELDPOLY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"WELDPOLY_DB_USER"`
	LegacyPassword string `envconfig:"WELDPOLY_DB_PASSWORD"`
	LegacyName     string `envconfig:"WELDPOLY_DB_NAME"`
	LegacySSLMode  string `envconfig:"WELDPOLY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"WELDPOLY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"WELDPOLY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"WELDPOLY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"WELDPOLY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"WELDPOLY_REDIS_URL" required:"true"`
	Address      string        `envconfig:"WELDPOLY_REDIS_ADDR"`
	Password     string        `envconfig:"WELDPOLY_REDIS_PASSWORD"`
	DB           int           `envconfig:"WELDPOLY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"WELDPOLY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"WELDPOLY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"WELDPOLY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"WELDPOLY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WELDPOLY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type SessionConfig struct {
	Secret     string        `envconfig:"WELDPOLY_SESSION_SECRET" required:"true"`
	Issuer     string        `envconfig:"WELDPOLY_SESSION_ISSUER" default:"weldpoly-quotecart"`
	TTL        time.Duration `envconfig:"WELDPOLY_SESSION_TTL" default:"720h"`
	CookieName string        `envconfig:"WELDPOLY_SESSION_COOKIE" default:"wp_quote_session"`
}

type CartConfig struct {
	// TTL is the cart envelope time-to-live; a load past this age discards the cart.
	TTL           time.Duration `envconfig:"WELDPOLY_CART_TTL" default:"1h"`
	CoalesceDelay time.Duration `envconfig:"WELDPOLY_CART_COALESCE_DELAY" default:"75ms"`
	EventsChannel string        `envconfig:"WELDPOLY_CART_EVENTS_CHANNEL" default:"wp:quote_cart:events"`
	// Optional template overrides; the built-in row fragments apply when unset.
	ProductRowTemplateFile   string `envconfig:"WELDPOLY_CART_PRODUCT_ROW_TEMPLATE"`
	SparePartRowTemplateFile string `envconfig:"WELDPOLY_CART_SPARE_PART_ROW_TEMPLATE"`
}

type RateLimitConfig struct {
	CartWriteWindow         time.Duration `envconfig:"WELDPOLY_RATE_LIMIT_CART_WRITE_WINDOW" default:"1m"`
	CartWriteSessionLimit   int           `envconfig:"WELDPOLY_RATE_LIMIT_CART_WRITE_SESSION_LIMIT" default:"60"`
	CartWriteIPLimit        int           `envconfig:"WELDPOLY_RATE_LIMIT_CART_WRITE_IP_LIMIT" default:"240"`
	QuoteSubmitWindow       time.Duration `envconfig:"WELDPOLY_RATE_LIMIT_QUOTE_SUBMIT_WINDOW" default:"5m"`
	QuoteSubmitSessionLimit int           `envconfig:"WELDPOLY_RATE_LIMIT_QUOTE_SUBMIT_SESSION_LIMIT" default:"5"`
	QuoteSubmitIPLimit      int           `envconfig:"WELDPOLY_RATE_LIMIT_QUOTE_SUBMIT_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"WELDPOLY_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"WELDPOLY_AUTO_MIGRATE" default:"false"`
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
