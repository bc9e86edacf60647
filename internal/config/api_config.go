package config

import (
	"strconv"
	"time"
)

const (
	apiURLEnvVar       = "SMARTSALES_API_URL"
	legacyAPIURLEnvVar = "VITE_API_URL"
	apiRetryEnvVar     = "API_RETRY_ATTEMPTS"

	DefaultAPIBaseURL = "http://localhost:8000/api"
	APITimeout        = 10 * time.Second
)

type APIConfig interface {
	GetAPIBaseURL() string
	GetAPITimeout() time.Duration
	GetAPIRetryAttempts() int
}

type API struct {
	file APIFileConfig
}

var _ APIConfig = API{}

// GetAPIBaseURL returns the backend base URL. The variable name used by the
// original browser build is still honoured.
func (a API) GetAPIBaseURL() string {
	return GetEnv(apiURLEnvVar, GetEnv(legacyAPIURLEnvVar, orDefault(a.file.BaseURL, DefaultAPIBaseURL)))
}

// GetAPITimeout is fixed and not configurable.
func (API) GetAPITimeout() time.Duration {
	return APITimeout
}

func (a API) GetAPIRetryAttempts() int {
	if v, err := strconv.Atoi(GetEnv(apiRetryEnvVar, "")); err == nil && v > 0 {
		return v
	}
	if a.file.RetryAttempts > 0 {
		return a.file.RetryAttempts
	}
	return 3
}
