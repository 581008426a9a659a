package remote

import (
	"time"

	"registration-pipeline/internal/common/config"
)

const (
	ModeOpaque = config.RemoteModeOpaque
	ModeCORS   = config.RemoteModeCORS
)

type Config struct {
	EndpointURL string
	Mode        string
	// Timeout bounds one send; 0 leaves the call unbounded.
	Timeout time.Duration
}

func LoadConfig(cfg config.RemoteConfig) *Config {
	mode := cfg.Mode
	if mode == "" {
		mode = ModeOpaque
	}
	return &Config{
		EndpointURL: cfg.EndpointURL,
		Mode:        mode,
		Timeout:     config.GetDuration(cfg.Timeout),
	}
}
