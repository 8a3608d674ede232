package config

const (
	EnvPrefix = "weldpoly"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv        = "WELDPOLY_APP_ENV"
	EnvPort          = "WELDPOLY_APP_PORT"
	EnvDBDSN         = "WELDPOLY_DB_DSN"
	EnvDBHost        = "WELDPOLY_DB_HOST"
	EnvDBUser        = "WELDPOLY_DB_USER"
	EnvDBName        = "WELDPOLY_DB_NAME"
	EnvRedisURL      = "WELDPOLY_REDIS_URL"
	EnvSessionSecret = "WELDPOLY_SESSION_SECRET"
	EnvCartTTL       = "WELDPOLY_CART_TTL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
