package config

// EnvPrefix is the envconfig prefix for every SlabDesk variable.
const EnvPrefix = "slabdesk"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv     = "SLABDESK_APP_ENV"
	EnvPort       = "SLABDESK_APP_PORT"
	EnvDBDSN      = "SLABDESK_DB_DSN"
	EnvDBHost     = "SLABDESK_DB_HOST"
	EnvDBUser     = "SLABDESK_DB_USER"
	EnvDBName     = "SLABDESK_DB_NAME"
	EnvRedisURL   = "SLABDESK_REDIS_URL"
	EnvJWTSecret  = "SLABDESK_JWT_SECRET"
	EnvJWTIssuer  = "SLABDESK_JWT_ISSUER"
	EnvJWTExpMins = "SLABDESK_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
