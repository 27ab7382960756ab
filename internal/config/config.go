package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultKind           = "org"
	DefaultTrafficWorkers = 8
	DefaultRateLimitSleep = 60 * time.Second
	DefaultListenAddr     = ":8080"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	GitHubToken string
	// Owner is the organization or user to report on.
	Owner string
	// Kind is "org" or "user".
	Kind string
	// APIURL overrides the GitHub API base URL.
	APIURL         string
	TrafficWorkers int
	RateLimitSleep time.Duration
	ListenAddr     string
	SlackMode      bool
	DebugMode      bool

	S3Bucket    string
	S3ObjectKey string
	AWSRegion   string
}

// LoadDotEnv loads variables from path into the environment without
// overriding ones already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// FromEnvironment creates a Config from environment variables.
func FromEnvironment() Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("GITHUB_KIND", DefaultKind)
	v.SetDefault("TRAFFIC_WORKERS", DefaultTrafficWorkers)
	v.SetDefault("RATE_LIMIT_SLEEP", DefaultRateLimitSleep)
	v.SetDefault("LISTEN_ADDR", DefaultListenAddr)

	workers := v.GetInt("TRAFFIC_WORKERS")
	if workers <= 0 {
		workers = DefaultTrafficWorkers
	}
	sleep := v.GetDuration("RATE_LIMIT_SLEEP")
	if sleep <= 0 {
		sleep = DefaultRateLimitSleep
	}
	kind := v.GetString("GITHUB_KIND")
	if kind == "" {
		kind = DefaultKind
	}
	addr := v.GetString("LISTEN_ADDR")
	if addr == "" {
		addr = DefaultListenAddr
	}

	return Config{
		GitHubToken:    v.GetString("GITHUB_TOKEN"),
		Owner:          v.GetString("GITHUB_OWNER"),
		Kind:           kind,
		APIURL:         v.GetString("GITHUB_API_URL"),
		TrafficWorkers: workers,
		RateLimitSleep: sleep,
		ListenAddr:     addr,
		SlackMode:      truthy(v.GetString("SLACK_MODE")),
		DebugMode:      truthy(v.GetString("DEBUG")),
		S3Bucket:       v.GetString("S3_BUCKET_NAME"),
		S3ObjectKey:    v.GetString("S3_OBJECT_KEY"),
		AWSRegion:      v.GetString("AWS_REGION"),
	}
}

// truthy treats empty, "0" and "false" in any case as false.
func truthy(s string) bool {
	return s != "" && s != "0" && strings.ToLower(s) != "false"
}
