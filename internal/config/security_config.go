package config

import "time"

type SecurityConfig interface {
	GetMaxSessionAge() time.Duration
	GetAuthFlowTimeout() time.Duration
}

type Security struct {
	src source
}

var _ SecurityConfig = Security{}

func (s Security) GetMaxSessionAge() time.Duration {
	return s.duration("SESSION_MAX_AGE", 8*time.Hour)
}

// GetAuthFlowTimeout bounds the time between the login redirect and the callback.
func (s Security) GetAuthFlowTimeout() time.Duration {
	return s.duration("AUTH_FLOW_TIMEOUT", 10*time.Minute)
}

func (s Security) duration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(s.src.get(key, ""))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
