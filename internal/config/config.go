package config

type Config interface {
	EnvConfig
	BrokerConfig
	APIConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type mainConfig struct {
	EnvVars
	Broker
	API
}

func New() Config {
	return mainConfig{}
}
