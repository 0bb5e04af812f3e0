package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	Port            string
	WhoisTimeout    time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Load reads the configuration from the environment. Invalid values keep
// their defaults and are reported in the returned error.
func Load() (Config, error) {
	cfg := Config{
		Port: getenv("PORT", "8080"),
	}

	var errs []error
	cfg.WhoisTimeout = getenvDuration("WHOIS_TIMEOUT", 10*time.Second, &errs)
	cfg.RequestTimeout = getenvDuration("REQUEST_TIMEOUT", 30*time.Second, &errs)
	cfg.ShutdownTimeout = getenvDuration("SHUTDOWN_TIMEOUT", 10*time.Second, &errs)

	if len(errs) > 0 {
		return cfg, fmt.Errorf("config: %v", errs)
	}
	return cfg, nil
}

func getenvDuration(key string, def time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		*errs = append(*errs, fmt.Errorf("%s=%q is not a positive duration", key, v))
		return def
	}
	return d
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}
