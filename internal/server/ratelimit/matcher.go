package ratelimit

import (
	"strings"
)

// MatchEndpoint returns the configuration for a request path and method, or
// nil when the default limit applies. Exact paths win over prefixes; a
// config path ending in "/" (other than "/" itself) matches by prefix.
// GET /health is never limited.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if path == "/health" && method == "GET" {
		return &EndpointConfig{}
	}

	for i := range configs {
		if configs[i].Path == path && configs[i].Method == method {
			return &configs[i]
		}
	}

	for i := range configs {
		c := &configs[i]
		if c.Method == method && c.Path != "/" && strings.HasSuffix(c.Path, "/") && strings.HasPrefix(path, c.Path) {
			return c
		}
	}

	return nil
}
