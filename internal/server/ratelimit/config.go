package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig is the limit for one route.
type EndpointConfig struct {
	Path   string        // exact path, or a prefix when it ends with "/"
	Method string        // HTTP method
	Limit  int           // requests per window; zero or less means unlimited
	Window time.Duration // refill window
	Burst  int           // bucket capacity, defaults to Limit
}

// LoadConfig reads RATE_LIMIT_* variables from the environment.
func LoadConfig() *Config {
	return loadConfig(os.Getenv)
}

func loadConfig(getenv func(string) string) *Config {
	if !envBool(getenv, "RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}

	enhanceLimit := envInt(getenv, "RATE_LIMIT_ENHANCE_LIMIT", 60)
	return &Config{
		Enabled:         true,
		DefaultLimit:    envInt(getenv, "RATE_LIMIT_DEFAULT_LIMIT", 600),
		DefaultWindow:   envDuration(getenv, "RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: envDuration(getenv, "RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		Whitelist:       parseIPList(getenv("RATE_LIMIT_WHITELIST")),
		Blacklist:       parseIPList(getenv("RATE_LIMIT_BLACKLIST")),
		EndpointConfigs: DefaultEndpointConfigs(enhanceLimit),
	}
}

// DefaultEndpointConfigs limits the enhance routes to enhanceLimit per minute. They fan out to
// the documentation service and, when enabled, the model. Classify and decompose are local.
func DefaultEndpointConfigs(enhanceLimit int) []EndpointConfig {
	burst := max(enhanceLimit/6, 1)
	return []EndpointConfig{
		{Path: "/enhance", Method: "POST", Limit: enhanceLimit, Window: time.Minute, Burst: burst},
		{Path: "/enhance/stream", Method: "POST", Limit: enhanceLimit, Window: time.Minute, Burst: burst},
		{Path: "/classify", Method: "POST", Limit: 300, Window: time.Minute, Burst: 30},
		{Path: "/decompose", Method: "POST", Limit: 300, Window: time.Minute, Burst: 30},
	}
}

func envInt(getenv func(string) string, key string, def int) int {
	if v, err := strconv.Atoi(getenv(key)); err == nil {
		return v
	}
	return def
}

func envBool(getenv func(string) string, key string, def bool) bool {
	if v, err := strconv.ParseBool(getenv(key)); err == nil {
		return v
	}
	return def
}

func envDuration(getenv func(string) string, key string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(getenv(key)); err == nil && v > 0 {
		return v
	}
	return def
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
