package config

import "time"

type BrokerConfig interface {
	GetKeycloakURL() string
	GetKeycloakRealm() string
	GetClientID() string
	GetPKCEMethod() string
	GetSSOCheck() bool
	GetCheckLoginIframe() bool
	GetBrokerConnectTimeout() time.Duration
}

type Broker struct{}

var _ BrokerConfig = Broker{}

func (Broker) GetKeycloakURL() string {
	return GetEnv("KEYCLOAK_URL", "")
}

func (Broker) GetKeycloakRealm() string {
	return GetEnv("KEYCLOAK_REALM", "")
}

func (Broker) GetClientID() string {
	return GetEnv("CLIENT_ID", "")
}

func (Broker) GetPKCEMethod() string {
	return GetEnv("PKCE_METHOD", "S256")
}

func (Broker) GetSSOCheck() bool {
	return GetEnv("SSO_CHECK", "true") == "true"
}

func (Broker) GetCheckLoginIframe() bool {
	return GetEnv("CHECK_LOGIN_IFRAME", "false") == "true"
}

func (Broker) GetBrokerConnectTimeout() time.Duration {
	timeout, err := time.ParseDuration(GetEnv("BROKER_CONNECT_TIMEOUT", "10s"))
	if err != nil {
		return 10 * time.Second
	}
	return timeout
}
