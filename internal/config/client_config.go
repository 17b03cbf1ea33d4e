package config

import "time"

const requestTimeoutEnvVar = "PORTAL_REQUEST_TIMEOUT"

type ClientConfig interface {
	GetRequestTimeout() time.Duration
	GetUserAgent() string
}

type Client struct{}

var _ ClientConfig = Client{}

// GetRequestTimeout parses PORTAL_REQUEST_TIMEOUT as a Go duration ("45s").
// Unparseable or non-positive values fall back to 30 seconds.
func (Client) GetRequestTimeout() time.Duration {
	d, err := time.ParseDuration(GetEnv(requestTimeoutEnvVar, "30s"))
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

func (Client) GetUserAgent() string {
	return "college-portal-client/1.0"
}
