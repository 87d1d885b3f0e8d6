package config

// EnvPrefix is handed to envconfig; every field below declares its full key.
const EnvPrefix = "PRINTS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "PRINTS_APP_ENV"
	EnvPort     = "PRINTS_APP_PORT"
	EnvLogLevel = "PRINTS_LOG_LEVEL"

	EnvDBDSN  = "PRINTS_DB_DSN"
	EnvDBHost = "PRINTS_DB_HOST"
	EnvDBUser = "PRINTS_DB_USER"
	EnvDBName = "PRINTS_DB_NAME"

	EnvRedisURL = "PRINTS_REDIS_URL"

	EnvSMTPHost = "PRINTS_SMTP_HOST"
	EnvSMTPPort = "PRINTS_SMTP_PORT"
	EnvSMTPUser = "PRINTS_SMTP_USER"
	EnvSMTPPass = "PRINTS_SMTP_PASS"

	EnvOrderTo     = "PRINTS_ORDER_TO"
	EnvOrderFrom   = "PRINTS_ORDER_FROM"
	EnvOrderBCC    = "PRINTS_ORDER_BCC"
	EnvOrderPrefix = "PRINTS_ORDER_ID_PREFIX"

	EnvStrictShipping     = "PRINTS_CHECKOUT_STRICT_SHIPPING"
	EnvCheckoutEmailLimit = "PRINTS_CHECKOUT_RATE_LIMIT_PER_EMAIL"
	EnvUseSQLite          = "PRINTS_USE_SQLITE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
