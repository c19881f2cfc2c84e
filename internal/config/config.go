package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const configFileVar = "CONFIG_FILE"

type Config interface {
	EnvConfig
	AuthConfig
	SecurityConfig
	Validate() error
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetBaseURL() string
	GetAPIURL() string
	GetLogLevel() string
}

type mainConfig struct {
	EnvVars
	Auth
	Security
}

// New reads configuration from the environment, overlaid on the YAML file
// named by CONFIG_FILE when it is set.
func New() (Config, error) {
	values, err := loadFile(os.Getenv(configFileVar))
	if err != nil {
		return nil, err
	}
	return FromValues(values), nil
}

// FromValues builds a Config whose file layer is values. Keys are the
// environment variable names, case-insensitive.
func FromValues(values map[string]string) Config {
	src := source{file: make(map[string]string, len(values))}
	for k, v := range values {
		src.file[strings.ToUpper(k)] = v
	}
	return mainConfig{
		EnvVars:  EnvVars{src: src},
		Auth:     Auth{src: src},
		Security: Security{src: src},
	}
}

func (c mainConfig) Validate() error {
	var missing []string
	if c.GetAPIURL() == "" {
		missing = append(missing, apiURLVar)
	}
	if c.GetAuthDomain() == "" {
		missing = append(missing, authDomainVar)
	}
	if c.GetAuthClientID() == "" {
		missing = append(missing, authClientIDVar)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

func loadFile(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var values map[string]string
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return values, nil
}

// source resolves a key from the environment, then the file, then the default.
type source struct {
	file map[string]string
}

func (s source) get(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	if value := s.file[key]; value != "" {
		return value
	}
	return defaultValue
}
