package config

import "time"

type Config interface {
	EnvConfig
	ClientConfig
	StorageConfig
}

type EnvConfig interface {
	GetAPIBaseURL() string
	GetAppName() string
	GetDataFolder() string
	GetEnv() string
}

type ClientConfig interface {
	GetRequestTimeout() time.Duration
	GetAuthFailureStatuses() StatusSet
}

type StorageConfig interface {
	GetTokenStore() TokenStoreKind
	GetTokenKey() ([]byte, error)
}

type mainConfig struct {
	EnvVars
	Client
	Storage
}

// New snapshots the environment. The API base URL is read once here and never
// re-read for the lifetime of the returned Config.
func New() Config {
	return mainConfig{
		EnvVars: newEnvVars(),
		Client:  newClient(),
		Storage: newStorage(),
	}
}
