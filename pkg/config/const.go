package config

// EnvPrefix is passed to envconfig; individual fields carry explicit
// envconfig tags, so the prefix only matters for untagged additions.
const EnvPrefix = "VITTORIA"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv = "VITTORIA_APP_ENV"
	EnvPort   = "VITTORIA_APP_PORT"

	EnvDBDSN  = "VITTORIA_DB_DSN"
	EnvDBHost = "VITTORIA_DB_HOST"
	EnvDBUser = "VITTORIA_DB_USER"
	EnvDBName = "VITTORIA_DB_NAME"

	EnvRedisURL = "VITTORIA_REDIS_URL"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
