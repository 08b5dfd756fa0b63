package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Ingest  IngestConfig  `yaml:"ingest"`
	Vendors VendorConfig  `yaml:"vendors"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// StorageConfig selects and configures the template store backend.
// Type is one of "local", "redis", "postgres", "dynamodb".
type StorageConfig struct {
	Type string `yaml:"type"`

	// local
	LocalPath string `yaml:"local_path"`

	// redis
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	// postgres
	DatabaseURL string `yaml:"database_url"`

	// dynamodb
	DynamoDBTable string `yaml:"dynamodb_table"`
	AWSRegion     string `yaml:"aws_region"`
	AWSProfile    string `yaml:"aws_profile"`
}

// IngestConfig holds S3 export-watcher settings.
type IngestConfig struct {
	Enabled         bool   `yaml:"enabled"`
	S3Bucket        string `yaml:"s3_bucket"`
	S3Region        string `yaml:"s3_region"`
	AWSProfile      string `yaml:"aws_profile"`
	IntervalMinutes int    `yaml:"interval_minutes"`
	TargetTool      string `yaml:"target_tool"`
}

// VendorConfig points at the CAD vendor fingerprint table. When the file
// is empty the built-in table is used.
type VendorConfig struct {
	FingerprintFile string `yaml:"fingerprint_file"`
}

// LoggingConfig holds log level and redaction settings.
type LoggingConfig struct {
	Level     string `yaml:"level"`
	RedactPII *bool  `yaml:"redact_pii"`
}

// Load reads configuration from a YAML file and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Storage.Type == "" {
		cfg.Storage.Type = "local"
	}
	if cfg.Storage.LocalPath == "" {
		cfg.Storage.LocalPath = "./data/templates"
	}
	if cfg.Storage.AWSRegion == "" {
		cfg.Storage.AWSRegion = "us-east-1"
	}
	if cfg.Ingest.IntervalMinutes == 0 {
		cfg.Ingest.IntervalMinutes = 5
	}
	if cfg.Ingest.TargetTool == "" {
		cfg.Ingest.TargetTool = "response-times"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromEnv loads config from a file, then overlays environment
// variables (reading a .env file first if present).
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists; real env vars win over file values
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if host := os.Getenv("SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if st := os.Getenv("STORAGE_TYPE"); st != "" {
		cfg.Storage.Type = st
	}
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		cfg.Storage.DatabaseURL = dsn
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Storage.RedisAddr = addr
	}
	if pw := os.Getenv("REDIS_PASSWORD"); pw != "" {
		cfg.Storage.RedisPassword = pw
	}
	if bucket := os.Getenv("INGEST_S3_BUCKET"); bucket != "" {
		cfg.Ingest.S3Bucket = bucket
	}
	if profile := os.Getenv("AWS_PROFILE_OVERRIDE"); profile != "" {
		cfg.Storage.AWSProfile = profile
		cfg.Ingest.AWSProfile = profile
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Type {
	case "local", "redis", "postgres", "dynamodb":
	default:
		return fmt.Errorf("unknown storage type %q", c.Storage.Type)
	}
	if c.Storage.Type == "postgres" && c.Storage.DatabaseURL == "" {
		return fmt.Errorf("storage type postgres requires database_url")
	}
	if c.Storage.Type == "redis" && c.Storage.RedisAddr == "" {
		return fmt.Errorf("storage type redis requires redis_addr")
	}
	if c.Storage.Type == "dynamodb" && c.Storage.DynamoDBTable == "" {
		return fmt.Errorf("storage type dynamodb requires dynamodb_table")
	}
	if c.Ingest.Enabled && c.Ingest.S3Bucket == "" {
		return fmt.Errorf("ingest enabled but s3_bucket not set")
	}
	return nil
}
