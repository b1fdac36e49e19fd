package env

import (
	"os"
	"strconv"
	"strings"
)

// Prefix namespaces every storefront variable.
const Prefix = "STOREFRONT_"

// Get looks up STOREFRONT_<key> first and then the bare key, so tooling that
// exports LOG_FORMAT keeps working next to the namespaced form.
func Get(key, fallback string) string {
	if val, ok := lookup(key); ok {
		return val
	}
	return fallback
}

// Bool parses a flag the same way envconfig does; unparsable values fall back.
func Bool(key string, fallback bool) bool {
	val, ok := lookup(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func lookup(key string) (string, bool) {
	key = strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(key)), Prefix)
	if key == "" {
		return "", false
	}
	for _, name := range []string{Prefix + key, key} {
		if val := strings.TrimSpace(os.Getenv(name)); val != "" {
			return val, true
		}
	}
	return "", false
}
