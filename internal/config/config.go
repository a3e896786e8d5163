package config

type Config interface {
	EnvConfig
	CorsConfig
	UpstreamConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetAppAuthPath() string
	GetStorageBackend() string
	GetMongoURI() string
	GetMongoDatabase() string
	GetNonceStore() string
	GetRedisAddr() string
	GetEnv() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Upstream
}

func New() Config {
	return mainConfig{}
}
