// internal/workers/planning/generate-itinerary/config.go
package generateitinerary

import "time"

type Config struct {
	// Timeout bounds the whole generation, retries included.
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 3 * time.Minute,
	}
}
