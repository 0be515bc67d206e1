package config

// EnvPrefix is passed to envconfig; each field also carries an explicit
// envconfig tag so the prefix stays visible at the declaration site.
const EnvPrefix = "VOUCHLY"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// Environment variable names referenced outside struct tags.
const (
	EnvAppEnv   = "VOUCHLY_APP_ENV"
	EnvPort     = "VOUCHLY_APP_PORT"
	EnvDBDSN    = "VOUCHLY_DB_DSN"
	EnvDBHost   = "VOUCHLY_DB_HOST"
	EnvDBUser   = "VOUCHLY_DB_USER"
	EnvDBName   = "VOUCHLY_DB_NAME"
	EnvRedisURL = "VOUCHLY_REDIS_URL"

	EnvCloudinaryCloudName = "VOUCHLY_CLOUDINARY_CLOUD_NAME"
	EnvCloudinaryAPIKey    = "VOUCHLY_CLOUDINARY_API_KEY"
	EnvCloudinaryAPISecret = "VOUCHLY_CLOUDINARY_API_SECRET"

	EnvGCPProjectID         = "VOUCHLY_GCP_PROJECT_ID"
	EnvPubSubLifecycleTopic = "VOUCHLY_PUBSUB_LIFECYCLE_TOPIC"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
