package config

import "os"

// orEnv returns value, or the first non-empty environment variable among names when value
// is empty. cli.EnvVars stops at the first variable that is set, even to an empty string.
func orEnv(value string, names ...string) string {
	if value != "" {
		return value
	}
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}
