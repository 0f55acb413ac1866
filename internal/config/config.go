package config // package config loads application configuration from environment variables

import (
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime configuration of the test server.  Every field has
// a default so that a bare start listens on 0.0.0.0:5000 with no setup.
type Config struct {
	Env             string        // application environment label (e.g. "dev", "ci")
	Host            string        // interface to bind
	Port            string        // HTTP port to listen on
	LogLevel        string        // zerolog level name
	LogFormat       string        // "console" or "json"
	BodyLimit       string        // maximum request body size accepted by echo (e.g. "1M")
	ShutdownTimeout time.Duration // grace period for in-flight requests on shutdown
}

// Addr returns the host:port pair the server binds to.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// Load reads configuration values from the environment.  A .env file in the
// working directory is loaded first when present; variables already set in
// the process environment win.
func Load() Config {
	_ = godotenv.Load()
	return Config{
		Env:             envStr("APP_ENV", "dev"),
		Host:            envStr("APP_HOST", "0.0.0.0"),
		Port:            envStr("APP_PORT", "5000"),
		LogLevel:        envStr("LOG_LEVEL", "info"),
		LogFormat:       envStr("LOG_FORMAT", "console"),
		BodyLimit:       envStr("BODY_LIMIT", "1M"),
		ShutdownTimeout: envDur("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	if n, err := strconv.Atoi(os.Getenv(k)); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	if dur, err := time.ParseDuration(os.Getenv(k)); err == nil {
		return dur
	}
	return d
}
