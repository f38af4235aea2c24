package utils

import (
	"log"
	"os"
	"strconv"
)

// GetStringEnv reads an environment variable, falling back to defaultValue
// when it is unset or blank.
func GetStringEnv(name string, defaultValue string) string {
	value, ok := os.LookupEnv(name)
	if !ok || value == "" {
		return defaultValue
	}
	return value
}

// GetIntEnv is GetStringEnv for integer variables. A set but non-integer
// value is a deployment mistake and aborts startup.
func GetIntEnv(name string, defaultValue int) int {
	raw := GetStringEnv(name, "")
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		log.Fatalf("environment variable %s: %q is not an integer", name, raw)
	}
	return value
}
