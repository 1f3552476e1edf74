package config

// EnvPrefix is passed to envconfig; individual tags spell the full name.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// Environment variable names referenced outside struct tags.
const (
	EnvAppEnv   = "CLUBS_APP_ENV"
	EnvPort     = "CLUBS_APP_PORT"
	EnvDBDSN    = "CLUBS_DB_DSN"
	EnvDBHost   = "CLUBS_DB_HOST"
	EnvDBUser   = "CLUBS_DB_USER"
	EnvDBName   = "CLUBS_DB_NAME"
	EnvRedisURL = "CLUBS_REDIS_URL"

	EnvJWTSecret  = "CLUBS_JWT_SECRET"
	EnvJWTIssuer  = "CLUBS_JWT_ISSUER"
	EnvJWTExpMins = "CLUBS_JWT_EXPIRATION_MINUTES"

	EnvGCPProjectID = "CLUBS_GCP_PROJECT_ID"

	EnvPubSubDomainTopic = "CLUBS_PUBSUB_DOMAIN_TOPIC"
	EnvPubSubNotifySub   = "CLUBS_PUBSUB_NOTIFY_SUBSCRIPTION"

	EnvSyncSecretHash = "CLUBS_INTER_SERVICE_SECRET_HASH"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
