// internal/workers/itinerary/save-itinerary/config.go
package saveitinerary

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
