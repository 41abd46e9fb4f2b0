package config

const EnvPrefix = "MEAW"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	StorageDriverMemory = "memory"
	StorageDriverFile   = "file"
	StorageDriverRedis  = "redis"
	StorageDriverSQL    = "sql"
)

const (
	DBDriverSQLite   = "sqlite"
	DBDriverPostgres = "postgres"
)

const (
	EnvAppEnv              = "MEAW_APP_ENV"
	EnvPort                = "MEAW_APP_PORT"
	EnvLogLevel            = "MEAW_LOG_LEVEL"
	EnvStorageDriver       = "MEAW_STORAGE_DRIVER"
	EnvStorageDir          = "MEAW_STORAGE_DIR"
	EnvStorageNamespace    = "MEAW_STORAGE_NAMESPACE"
	EnvDBDriver            = "MEAW_DB_DRIVER"
	EnvDBDSN               = "MEAW_DB_DSN"
	EnvAutoMigrate         = "MEAW_AUTO_MIGRATE"
	EnvRedisURL            = "MEAW_REDIS_URL"
	EnvTokenSecret         = "MEAW_TOKEN_SECRET"
	EnvTokenIssuer         = "MEAW_TOKEN_ISSUER"
	EnvTokenTTL            = "MEAW_TOKEN_TTL"
	EnvPricingTaxRate      = "MEAW_PRICING_TAX_RATE"
	EnvPricingFreeShipping = "MEAW_PRICING_FREE_SHIPPING_THRESHOLD"
	EnvPricingFlatShipping = "MEAW_PRICING_FLAT_SHIPPING_FEE"
	EnvLoginLatency        = "MEAW_LOGIN_LATENCY"
	EnvDiscountLatency     = "MEAW_DISCOUNT_LATENCY"
	EnvWorkspaceCapacity   = "MEAW_WORKSPACE_CAPACITY"
)
