package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the dashboard engine.
type Config struct {
	AppName          string
	AppEnv           string
	AppPort          string
	ClassroomCode    string
	BackendHTTPBase  string
	BackendWSBase    string
	AccessToken      string
	RedisURL         string
	SnapshotInterval time.Duration
}

// HTTPAddress returns the address the dashboard surface should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CLASSBOARD")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Classboard")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("snapshot.interval", "5m")

	intervalString := v.GetString("snapshot.interval")
	if intervalString == "" {
		intervalString = "5m"
	}

	interval, err := time.ParseDuration(intervalString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid snapshot interval: %w", err)
	}

	cfg := Config{
		AppName:          v.GetString("app.name"),
		AppEnv:           v.GetString("app.env"),
		AppPort:          v.GetString("app.port"),
		ClassroomCode:    v.GetString("classroom.code"),
		BackendHTTPBase:  normalizeBase(v.GetString("backend.http_base")),
		BackendWSBase:    normalizeBase(v.GetString("backend.ws_base")),
		AccessToken:      v.GetString("access.token"),
		RedisURL:         v.GetString("redis.url"),
		SnapshotInterval: interval,
	}

	if cfg.ClassroomCode == "" {
		return Config{}, fmt.Errorf("classroom code must be provided")
	}
	if cfg.BackendHTTPBase == "" {
		return Config{}, fmt.Errorf("backend http base must be provided")
	}

	return cfg, nil
}

// normalizeBase guarantees a trailing slash so paths join cleanly.
func normalizeBase(base string) string {
	if base == "" {
		return ""
	}
	if !strings.HasSuffix(base, "/") {
		return base + "/"
	}
	return base
}
