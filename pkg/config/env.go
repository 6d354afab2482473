package config

const (
	EnvPrefix = "prodinv"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv = "PRODINV_APP_ENV"
	EnvPort   = "PRODINV_APP_PORT"

	EnvDBDSN  = "PRODINV_DB_DSN"
	EnvDBHost = "PRODINV_DB_HOST"
	EnvDBUser = "PRODINV_DB_USER"
	EnvDBName = "PRODINV_DB_NAME"

	EnvRedisURL = "PRODINV_REDIS_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
