// Package config loads CLI settings from flags, the environment and an
// optional .env file.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// EnvPrefix is prepended to every environment key read by the CLI.
const EnvPrefix = "TABLESCHEMA_"

// SetupLogging builds the CLI logger. An empty level falls back to
// TABLESCHEMA_LOG_LEVEL, then to info. Unknown levels mean info.
func SetupLogging(level string) *logrus.Logger {
	logger := logrus.New()
	if level == "" {
		level = String("LOG_LEVEL", "info")
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.SetOutput(os.Stderr)
	return logger
}

// LoadEnv reads envFile into the process environment when it exists.
// Variables already set win. It reports whether a file was loaded.
func LoadEnv(envFile string, logger logrus.FieldLogger) bool {
	if envFile == "" {
		return false
	}
	if _, err := os.Stat(envFile); err != nil {
		logger.Debugf("no %s file found, using existing environment", envFile)
		return false
	}
	if err := godotenv.Load(envFile); err != nil {
		logger.Warnf("error loading %s: %v", envFile, err)
		return false
	}
	logger.Debugf("loaded environment from %s", envFile)
	return true
}

// String returns TABLESCHEMA_<key> or def.
func String(key, def string) string {
	if v, ok := os.LookupEnv(EnvPrefix + key); ok && v != "" {
		return v
	}
	return def
}

// Int returns TABLESCHEMA_<key> parsed as an int, or def when unset or malformed.
func Int(key string, def int) int {
	v, ok := os.LookupEnv(EnvPrefix + key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// Bool returns TABLESCHEMA_<key> parsed with strconv.ParseBool, or def.
func Bool(key string, def bool) bool {
	v, ok := os.LookupEnv(EnvPrefix + key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
