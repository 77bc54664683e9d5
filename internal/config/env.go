package config

const (
	EnvServiceURL        = "TEXPAD_SERVICE_URL"
	EnvLogLevel          = "TEXPAD_LOG_LEVEL"
	EnvS3AccessKeyID     = "TEXPAD_S3_ACCESS_KEY_ID"
	EnvS3SecretAccessKey = "TEXPAD_S3_SECRET_ACCESS_KEY"
)
