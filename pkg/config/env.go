package config

// EnvPrefix scopes every environment variable read by Load.
const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	StorageDriverLocal = "local"
	StorageDriverMinIO = "minio"
)

const (
	EnvAppEnv            = "STOREFRONT_APP_ENV"
	EnvPort              = "STOREFRONT_APP_PORT"
	EnvLogLevel          = "STOREFRONT_LOG_LEVEL"
	EnvDBDSN             = "STOREFRONT_DB_DSN"
	EnvDBDriver          = "STOREFRONT_DB_DRIVER"
	EnvDBHost            = "STOREFRONT_DB_HOST"
	EnvDBUser            = "STOREFRONT_DB_USER"
	EnvDBName            = "STOREFRONT_DB_NAME"
	EnvRedisURL          = "STOREFRONT_REDIS_URL"
	EnvStorageDriver     = "STOREFRONT_STORAGE_DRIVER"
	EnvMinIOEndpoint     = "STOREFRONT_MINIO_ENDPOINT"
	EnvMinIOBucket       = "STOREFRONT_MINIO_BUCKET"
	EnvGCPProjectID      = "STOREFRONT_GCP_PROJECT_ID"
	EnvPubSubSubmissions = "STOREFRONT_PUBSUB_SUBMISSIONS_TOPIC"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
