package config

import "os"

// GetEnv returns the value of an environment variable, or the fallback
// when the variable is unset or empty.
func GetEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
