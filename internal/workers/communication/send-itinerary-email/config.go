// internal/workers/communication/send-itinerary-email/config.go
package senditineraryemail

import "time"

type Config struct {
	Timeout      time.Duration
	FromEmail    string
	ShareBaseURL string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:   15 * time.Second,
		FromEmail: "trips@planmytrip.app",
	}
}
