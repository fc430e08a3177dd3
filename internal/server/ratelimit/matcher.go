package ratelimit

import (
	"strings"
)

// MatchEndpoint returns the config for path and method, or nil to use the default.
// Health checks and CORS preflights are unlimited. An exact path wins over a prefix.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if method == "OPTIONS" || (path == "/health" && method == "GET") {
		return &EndpointConfig{}
	}

	var prefix *EndpointConfig
	for i := range configs {
		c := &configs[i]
		if c.Method != method {
			continue
		}
		if c.Path == path {
			return c
		}
		if prefix == nil && strings.HasSuffix(c.Path, "/") && strings.HasPrefix(path, c.Path) {
			prefix = c
		}
	}
	return prefix
}
