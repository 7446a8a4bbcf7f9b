package conf

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

const (
	StoreDynamoDb = "dynamodb"
	StoreMemory   = "memory"
)

type StoreConfig struct {
	Backend    string `toml:"backend"`
	Endpoint   string `toml:"endpoint"`
	UsersTable string `toml:"users_table"`
	TasksTable string `toml:"tasks_table"`
	SubmsTable string `toml:"submissions_table"`
	AuditTable string `toml:"audit_table"`
}

type Config struct {
	Env            string   `toml:"env"`
	ListenAddr     string   `toml:"listen_addr"`
	LogLevel       string   `toml:"log_level"`
	LogFormat      string   `toml:"log_format"`
	TimeZone       string   `toml:"timezone"`
	AllowedOrigins []string `toml:"allowed_origins"`
	RebuildRule    string   `toml:"rebuild_rule"`

	// JwtKey is only read from the environment. JwtKeySecretName points to
	// an AWS Secrets Manager secret used when JwtKey is empty.
	JwtKey           string `toml:"-"`
	JwtKeySecretName string `toml:"jwt_key_secret_name"`

	AwsRegion             string `toml:"aws_region"`
	ReportBucket          string `toml:"report_bucket"`
	AuditQueueUrl         string `toml:"audit_queue_url"`
	LeaderboardTTLSeconds int    `toml:"leaderboard_ttl_seconds"`

	Store StoreConfig `toml:"store"`
}

func Defaults() Config {
	return Config{
		Env:                   "dev",
		ListenAddr:            ":8080",
		LogLevel:              "info",
		LogFormat:             "text",
		TimeZone:              "Asia/Kolkata",
		AllowedOrigins:        []string{"http://localhost:5173"},
		RebuildRule:           "all",
		AwsRegion:             "ap-south-1",
		LeaderboardTTLSeconds: 30,
		Store: StoreConfig{
			Backend:    StoreDynamoDb,
			UsersTable: "qacker_users",
			TasksTable: "qacker_tasks",
			SubmsTable: "qacker_submissions",
			AuditTable: "qacker_score_audit",
		},
	}
}

// Load reads .env if present, then the TOML file named by TRACKER_CONFIG,
// then environment variables. Later sources win.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Defaults()
	if path := os.Getenv("TRACKER_CONFIG"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	cfg.mergeEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := toml.Unmarshal(content, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) mergeEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.Env, "ENV")
	set(&c.ListenAddr, "LISTEN_ADDR")
	set(&c.LogLevel, "LOG_LEVEL")
	set(&c.LogFormat, "LOG_FORMAT")
	set(&c.TimeZone, "TRACKER_TIMEZONE")
	set(&c.RebuildRule, "SCORE_REBUILD_RULE")
	set(&c.JwtKey, "JWT_KEY")
	set(&c.JwtKeySecretName, "JWT_KEY_SECRET_NAME")
	set(&c.AwsRegion, "AWS_REGION")
	set(&c.ReportBucket, "REPORT_BUCKET")
	set(&c.AuditQueueUrl, "AUDIT_QUEUE_URL")
	set(&c.Store.Backend, "STORE_BACKEND")
	set(&c.Store.Endpoint, "DYNAMODB_ENDPOINT")
	set(&c.Store.UsersTable, "DDB_USERS_TABLE")
	set(&c.Store.TasksTable, "DDB_TASKS_TABLE")
	set(&c.Store.SubmsTable, "DDB_SUBMISSIONS_TABLE")
	set(&c.Store.AuditTable, "DDB_AUDIT_TABLE")

	if v := getenv("ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = strings.Split(v, ",")
	}
	if v := getenv("LEADERBOARD_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.LeaderboardTTLSeconds = n
		}
	}
}

func (c Config) Validate() error {
	var errs []error
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	switch c.Store.Backend {
	case StoreDynamoDb, StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown store backend %q", c.Store.Backend))
	}
	switch c.RebuildRule {
	case "all", "latest":
	default:
		errs = append(errs, fmt.Errorf("unknown rebuild rule %q", c.RebuildRule))
	}
	if c.LeaderboardTTLSeconds <= 0 {
		errs = append(errs, errors.New("leaderboard ttl must be positive"))
	}
	return errors.Join(errs...)
}

// Location is the reference time zone of the working-time calendar.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

func (c Config) LeaderboardTTL() time.Duration {
	return time.Duration(c.LeaderboardTTLSeconds) * time.Second
}
