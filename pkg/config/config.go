package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App        AppConfig
	Storage    StorageConfig
	DB         DBConfig
	Redis      RedisConfig
	Token      TokenConfig
	Password   PasswordConfig
	Pricing    PricingConfig
	Latency    LatencyConfig
	Workspaces WorkspaceConfig
	HTTP       HTTPConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Storage.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Pricing.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MEAW_APP_ENV" required:"true"`
	Port         string `envconfig:"MEAW_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"MEAW_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"MEAW_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"MEAW_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// StorageConfig selects where client snapshots are written.
type StorageConfig struct {
	Driver    string `envconfig:"MEAW_STORAGE_DRIVER" default:"file"`
	Dir       string `envconfig:"MEAW_STORAGE_DIR" default:".meaw"`
	Namespace string `envconfig:"MEAW_STORAGE_NAMESPACE" default:"meaw"`
}

func (s StorageConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(s.Driver)) {
	case StorageDriverMemory, StorageDriverFile, StorageDriverRedis, StorageDriverSQL:
		return nil
	}
	return fmt.Errorf("unsupported %s %q", EnvStorageDriver, s.Driver)
}

// NormalizedDriver returns the lower-cased storage driver name.
func (s StorageConfig) NormalizedDriver() string {
	return strings.ToLower(strings.TrimSpace(s.Driver))
}

type DBConfig struct {
	Driver      string `envconfig:"MEAW_DB_DRIVER" default:"sqlite"`
	DSN         string `envconfig:"MEAW_DB_DSN" default:"file:meaw.db?cache=shared"`
	AutoMigrate bool   `envconfig:"MEAW_AUTO_MIGRATE" default:"true"`

	MaxOpenConns    int           `envconfig:"MEAW_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MEAW_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MEAW_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MEAW_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsPostgres reports whether the sql store talks to Postgres instead of sqlite.
func (d DBConfig) IsPostgres() bool {
	return strings.EqualFold(strings.TrimSpace(d.Driver), DBDriverPostgres)
}

type RedisConfig struct {
	URL          string        `envconfig:"MEAW_REDIS_URL"`
	Address      string        `envconfig:"MEAW_REDIS_ADDR"`
	Password     string        `envconfig:"MEAW_REDIS_PASSWORD"`
	DB           int           `envconfig:"MEAW_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MEAW_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MEAW_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MEAW_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MEAW_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MEAW_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// TokenConfig controls the client tokens that bind a browser to its workspace.
type TokenConfig struct {
	Secret string        `envconfig:"MEAW_TOKEN_SECRET" required:"true"`
	Issuer string        `envconfig:"MEAW_TOKEN_ISSUER" default:"meaw"`
	TTL    time.Duration `envconfig:"MEAW_TOKEN_TTL" default:"720h"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"MEAW_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"MEAW_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"MEAW_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"MEAW_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"MEAW_ARGON_KEY_LEN" default:"32"`
}

// PricingConfig holds the cart totals constants. Amounts are in the smallest currency unit.
type PricingConfig struct {
	Currency              string `envconfig:"MEAW_PRICING_CURRENCY" default:"BDT"`
	TaxRate               string `envconfig:"MEAW_PRICING_TAX_RATE" default:"0.05"`
	FreeShippingThreshold int64  `envconfig:"MEAW_PRICING_FREE_SHIPPING_THRESHOLD" default:"5000"`
	FlatShippingFee       int64  `envconfig:"MEAW_PRICING_FLAT_SHIPPING_FEE" default:"100"`
}

// TaxRateDecimal parses TaxRate; validate has already rejected malformed values.
func (p PricingConfig) TaxRateDecimal() decimal.Decimal {
	rate, err := decimal.NewFromString(strings.TrimSpace(p.TaxRate))
	if err != nil {
		return decimal.Zero
	}
	return rate
}

func (p PricingConfig) validate() error {
	rate, err := decimal.NewFromString(strings.TrimSpace(p.TaxRate))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", EnvPricingTaxRate, err)
	}
	if rate.IsNegative() {
		return fmt.Errorf("%s must be non-negative", EnvPricingTaxRate)
	}
	if p.FreeShippingThreshold < 0 || p.FlatShippingFee < 0 {
		return fmt.Errorf("shipping amounts must be non-negative")
	}
	return nil
}

// LatencyConfig simulates the network round trip of login, register and discount lookups.
type LatencyConfig struct {
	Login    time.Duration `envconfig:"MEAW_LOGIN_LATENCY" default:"1s"`
	Discount time.Duration `envconfig:"MEAW_DISCOUNT_LATENCY" default:"500ms"`
}

type WorkspaceConfig struct {
	Capacity int `envconfig:"MEAW_WORKSPACE_CAPACITY" default:"1024"`
}

// HTTPConfig covers the API server surface.
type HTTPConfig struct {
	AllowedOrigins  []string      `envconfig:"MEAW_CORS_ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
	ReadTimeout     time.Duration `envconfig:"MEAW_HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"MEAW_HTTP_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"MEAW_HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
}
