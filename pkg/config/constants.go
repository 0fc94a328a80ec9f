package config

const (
	EnvPrefix = "MANDI"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "MANDI_APP_ENV"
	EnvPort     = "MANDI_APP_PORT"
	EnvDBDSN    = "MANDI_DB_DSN"
	EnvDBHost   = "MANDI_DB_HOST"
	EnvDBUser   = "MANDI_DB_USER"
	EnvDBName   = "MANDI_DB_NAME"
	EnvRedisURL = "MANDI_REDIS_URL"

	EnvJWTSecret  = "MANDI_JWT_SECRET"
	EnvJWTIssuer  = "MANDI_JWT_ISSUER"
	EnvJWTExpMins = "MANDI_JWT_EXPIRATION_MINUTES"

	EnvUseSQLite = "MANDI_USE_SQLITE"

	EnvAuctionMinIncrement    = "MANDI_AUCTION_MIN_INCREMENT"
	EnvAuctionDefaultDuration = "MANDI_AUCTION_DEFAULT_DURATION"

	EnvRequirementCountFulfillment = "MANDI_REQUIREMENT_COUNT_FULFILLMENT"
	EnvNATSURL                     = "MANDI_NATS_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
