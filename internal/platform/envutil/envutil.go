package envutil

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/DavidAtikpo/irata-sub002/internal/platform/logger"
)

func String(name, def string) string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	return v
}

func Int(name string, def int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func Int64(name string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return i
}

func Bool(name string, def bool) bool {
	switch strings.TrimSpace(strings.ToLower(os.Getenv(name))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

func Duration(name string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// Lookup reports the raw value and whether it was set, logging the outcome
// at debug level when a logger is given.
func Lookup(key string, log *logger.Logger) (string, bool) {
	val, ok := os.LookupEnv(key)
	if log != nil {
		if ok {
			log.Debug("Environment variable found, using environment", "env_var", key)
		} else {
			log.Debug("Environment variable not found, using default", "env_var", key)
		}
	}
	return strings.TrimSpace(val), ok && strings.TrimSpace(val) != ""
}
