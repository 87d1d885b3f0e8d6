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
	SMTP         SMTPConfig
	Order        OrderConfig
	Brand        BrandConfig
	Checkout     CheckoutConfig
	Catalog      CatalogConfig
	CartSession  CartSessionConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if !cfg.FeatureFlags.UseSQLite {
		if err := cfg.DB.ensureDSN(); err != nil {
			return nil, err
		}
	}
	cfg.Order.applyFallbacks(cfg.SMTP)
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PRINTS_APP_ENV" required:"true"`
	Port         string `envconfig:"PRINTS_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"PRINTS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PRINTS_LOG_WARN_STACK" default:"false"`
	CORSOrigins  string `envconfig:"PRINTS_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// AllowedOrigins splits the comma separated CORS origin list.
func (a AppConfig) AllowedOrigins() []string {
	var out []string
	for _, origin := range strings.Split(a.CORSOrigins, ",") {
		if o := strings.TrimSpace(origin); o != "" {
			out = append(out, o)
		}
	}
	return out
}

type DBConfig struct {
	DSN        string `envconfig:"PRINTS_DB_DSN"`
	SQLitePath string `envconfig:"PRINTS_DB_SQLITE_PATH" default:"prints.db"`

	LegacyHost     string `envconfig:"PRINTS_DB_HOST"`
	LegacyPort     int    `envconfig:"PRINTS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PRINTS_DB_USER"`
	LegacyPassword string `envconfig:"PRINTS_DB_PASSWORD"`
	LegacyName     string `envconfig:"PRINTS_DB_NAME"`
	LegacySSLMode  string `envconfig:"PRINTS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PRINTS_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"PRINTS_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"PRINTS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PRINTS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PRINTS_REDIS_URL"`
	Address      string        `envconfig:"PRINTS_REDIS_ADDR"`
	Password     string        `envconfig:"PRINTS_REDIS_PASSWORD"`
	DB           int           `envconfig:"PRINTS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PRINTS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PRINTS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PRINTS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PRINTS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PRINTS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// SMTPConfig mirrors the mail transport settings. Port 465 implies implicit TLS.
type SMTPConfig struct {
	Host   string `envconfig:"PRINTS_SMTP_HOST"`
	Port   int    `envconfig:"PRINTS_SMTP_PORT" default:"465"`
	Secure bool   `envconfig:"PRINTS_SMTP_SECURE" default:"false"`
	User   string `envconfig:"PRINTS_SMTP_USER"`
	Pass   string `envconfig:"PRINTS_SMTP_PASS"`
}

// UseSSL reports whether the dialer should open an implicit TLS connection.
func (s SMTPConfig) UseSSL() bool {
	return s.Secure || s.Port == 465
}

type OrderConfig struct {
	To       string `envconfig:"PRINTS_ORDER_TO"`
	From     string `envconfig:"PRINTS_ORDER_FROM"`
	BCC      string `envconfig:"PRINTS_ORDER_BCC"`
	IDPrefix string `envconfig:"PRINTS_ORDER_ID_PREFIX" default:"GA"`
}

const defaultOrderFrom = "no-reply@example.com"

func (o *OrderConfig) applyFallbacks(smtp SMTPConfig) {
	if o.To == "" {
		o.To = smtp.User
	}
	if o.From == "" {
		o.From = smtp.User
	}
	if o.From == "" {
		o.From = defaultOrderFrom
	}
}

type BrandConfig struct {
	Name string `envconfig:"PRINTS_BRAND_NAME" default:"George Adamos Prints"`
	URL  string `envconfig:"PRINTS_BRAND_URL" default:"https://georgeadamos.com"`
	Logo string `envconfig:"PRINTS_BRAND_LOGO"`
}

type CheckoutConfig struct {
	StrictShipping    bool          `envconfig:"PRINTS_CHECKOUT_STRICT_SHIPPING" default:"false"`
	RateLimit         int           `envconfig:"PRINTS_CHECKOUT_RATE_LIMIT" default:"10"`
	RateLimitPerEmail int           `envconfig:"PRINTS_CHECKOUT_RATE_LIMIT_PER_EMAIL" default:"5"`
	RateLimitWindow   time.Duration `envconfig:"PRINTS_CHECKOUT_RATE_LIMIT_WINDOW" default:"10m"`
	IdempotencyTTL    time.Duration `envconfig:"PRINTS_CHECKOUT_IDEMPOTENCY_TTL" default:"24h"`
}

type CatalogConfig struct {
	CacheTTL   time.Duration `envconfig:"PRINTS_CATALOG_CACHE_TTL" default:"5m"`
	CDNProject string        `envconfig:"PRINTS_CATALOG_CDN_PROJECT"`
	CDNDataset string        `envconfig:"PRINTS_CATALOG_CDN_DATASET" default:"production"`
}

type CartSessionConfig struct {
	CookieName string        `envconfig:"PRINTS_CART_COOKIE" default:"pf_cart"`
	TTL        time.Duration `envconfig:"PRINTS_CART_TTL" default:"720h"`
	Secure     bool          `envconfig:"PRINTS_CART_COOKIE_SECURE" default:"true"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"PRINTS_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"PRINTS_AUTO_MIGRATE" default:"false"`
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
