package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Environment variables read by the application
const (
	EnvSettingsPath = "YT2MP3_CONFIG"
	EnvLogLevel     = "YT2MP3_LOG_LEVEL"
)

// DotEnvFile is loaded from the working directory when present
const DotEnvFile = ".env"

// LoadEnv loads DotEnvFile into the process environment without overriding
// variables that are already set. A missing file is not an error.
func LoadEnv() error {
	if _, err := os.Stat(DotEnvFile); err != nil {
		return nil
	}
	return godotenv.Load(DotEnvFile)
}

// GetEnvStr returns the value of key, or defaultVal when it is unset
func GetEnvStr(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
