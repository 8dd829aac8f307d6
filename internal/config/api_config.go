package config

type APIConfig interface {
	GetAPIBaseURL() string
	GetCallbackURL() string
}

type API struct{}

var _ APIConfig = API{}

func (API) GetAPIBaseURL() string {
	return GetEnv("API_BASE_URL", "http://localhost:8000")
}

func (API) GetCallbackURL() string {
	return GetEnv("CALLBACK_URL", "http://localhost:5173/callback")
}
