package config

import (
	"fmt"
	"strings"
)

const (
	portEnvVar  = "PORT"
	appNameVar  = "APP_NAME"
	envVar      = "ENV"
	baseURLVar  = "BASE_URL"
	apiURLVar   = "API_URL"
	logLevelVar = "LOG_LEVEL"
)

type EnvVars struct {
	src source
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := e.src.get(portEnvVar, "8080")
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.src.get(appNameVar, "Patient Portal")
}

func (e EnvVars) GetEnv() string {
	return e.src.get(envVar, "DEV")
}

// GetBaseURL returns the public origin of the portal (e.g., "https://patients.example.com").
// Login callbacks and logout return URLs are built from it.
func (e EnvVars) GetBaseURL() string {
	return strings.TrimRight(e.src.get(baseURLVar, "http://localhost:8080"), "/")
}

// GetAPIURL returns the base URL of the remote patient API.
func (e EnvVars) GetAPIURL() string {
	return strings.TrimRight(e.src.get(apiURLVar, ""), "/")
}

func (e EnvVars) GetLogLevel() string {
	return e.src.get(logLevelVar, "info")
}
