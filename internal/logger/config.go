package logger

import (
	"io"

	"github.com/spf13/viper"
)

// EnvConfig is the logger setup read from the process environment,
// used before the application config file has been loaded.
type EnvConfig struct {
	Level       string
	Format      string
	Output      io.Writer // overrides file and stdout when set
	ServiceName string
	Environment string // local, dev or prod

	LogFile     string
	LogFileOnly bool

	// Rotation, handed to lumberjack.
	MaxSize    int // MB
	MaxBackups int
	MaxAge     int // days
	Compress   bool
}

const (
	defaultMaxSize    = 100
	defaultMaxBackups = 7
	defaultMaxAge     = 30
)

var envBindings = map[string]string{
	"level":        "LOG_LEVEL",
	"format":       "LOG_FORMAT",
	"service_name": "SERVICE_NAME",
	"environment":  "APP_ENV",
	"file":         "LOG_FILE",
	"file_only":    "LOG_FILE_ONLY",
	"max_size":     "LOG_MAX_SIZE",
	"max_backups":  "LOG_MAX_BACKUPS",
	"max_age":      "LOG_MAX_AGE",
	"compress":     "LOG_COMPRESS",
}

// LoadFromEnv reads the LOG_* variables plus SERVICE_NAME and APP_ENV.
func LoadFromEnv() *EnvConfig {
	v := viper.New()
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}
	v.SetDefault("level", "info")
	v.SetDefault("format", "json")
	v.SetDefault("service_name", "hirelane")
	v.SetDefault("environment", "local")
	v.SetDefault("file", "/var/log/hirelane/app.log")
	v.SetDefault("compress", true)

	return &EnvConfig{
		Level:       v.GetString("level"),
		Format:      v.GetString("format"),
		ServiceName: v.GetString("service_name"),
		Environment: v.GetString("environment"),
		LogFile:     v.GetString("file"),
		LogFileOnly: v.GetBool("file_only"),
		MaxSize:     positiveOr(v.GetInt("max_size"), defaultMaxSize),
		MaxBackups:  positiveOr(v.GetInt("max_backups"), defaultMaxBackups),
		MaxAge:      positiveOr(v.GetInt("max_age"), defaultMaxAge),
		Compress:    v.GetBool("compress"),
	}
}

// positiveOr also covers unparsable values, which viper reads as 0.
func positiveOr(n, fallback int) int {
	if n > 0 {
		return n
	}
	return fallback
}
