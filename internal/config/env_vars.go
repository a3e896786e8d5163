package config

import (
	"fmt"
	"os"
)

const (
	portEnvVar    = "PORT"
	appNameVar    = "APP_NAME"
	storageVar    = "STORAGE_BACKEND"
	nonceStoreVar = "NONCE_STORE"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Shopify Central Relay")
}

// GetAppAuthPath is the app's own authenticated entry point. The OAuth
// callback redirects here (with the shop domain appended) so the host
// platform can re-establish the embedded-app session.
func (EnvVars) GetAppAuthPath() string {
	return GetEnv("APP_AUTH_PATH", "/api/auth")
}

// GetStorageBackend selects the tenant/token persistence: "memory" or "mongo".
func (EnvVars) GetStorageBackend() string {
	return GetEnv(storageVar, "memory")
}

func (EnvVars) GetMongoURI() string {
	return GetEnv("MONGODB_URI", "")
}

func (EnvVars) GetMongoDatabase() string {
	return GetEnv("MONGODB_DB_NAME", "shopify_relay")
}

// GetNonceStore selects the consumed-state-nonce store: "memory" or "redis".
func (EnvVars) GetNonceStore() string {
	return GetEnv(nonceStoreVar, "memory")
}

func (EnvVars) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "localhost:6379")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
