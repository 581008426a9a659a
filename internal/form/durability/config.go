package durability

import "time"

const DefaultKey = "registrations"

type Config struct {
	// Key names the single slot holding the serialized record sequence.
	Key string
	// Timeout bounds each read or write against the medium; 0 means none.
	Timeout time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		Key:     DefaultKey,
		Timeout: 5 * time.Second,
	}
}
