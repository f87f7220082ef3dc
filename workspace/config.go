// Package workspace provides the wire-level client for the QuantaLeap
// Quantum service: target and job lookups, job submission, cost
// estimation, credentials and the job event stream.
package workspace

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// StorageConfig configures the S3-compatible staging store used for
// input-data blobs. When Bucket is empty, input data is inlined into the
// job record instead.
type StorageConfig struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// Config holds workspace connection settings.
type Config struct {
	SubscriptionID string        `yaml:"subscription_id"`
	ResourceGroup  string        `yaml:"resource_group"`
	WorkspaceName  string        `yaml:"workspace_name"`
	Endpoint       string        `yaml:"endpoint"`
	APIKey         string        `yaml:"api_key"`
	Storage        StorageConfig `yaml:"storage"`
}

// Validate checks that the settings required to reach a workspace are present.
func (c Config) Validate() error {
	if c.WorkspaceName == "" {
		return fmt.Errorf("workspace name is required")
	}
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}
	return nil
}

// LoadConfig builds a Config from an optional YAML file plus the
// environment. A .env file in the working directory is loaded first if
// present; environment variables override file values.
func LoadConfig(path string) (Config, error) {
	// Best-effort: missing .env is fine
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	overlay := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	overlay(&cfg.SubscriptionID, "QCLOUD_SUBSCRIPTION_ID")
	overlay(&cfg.ResourceGroup, "QCLOUD_RESOURCE_GROUP")
	overlay(&cfg.WorkspaceName, "QCLOUD_WORKSPACE_NAME")
	overlay(&cfg.Endpoint, "QCLOUD_ENDPOINT")
	overlay(&cfg.APIKey, "QCLOUD_API_KEY")
	overlay(&cfg.Storage.Endpoint, "QCLOUD_STORAGE_ENDPOINT")
	overlay(&cfg.Storage.Region, "QCLOUD_STORAGE_REGION")
	overlay(&cfg.Storage.Bucket, "QCLOUD_STORAGE_BUCKET")
	overlay(&cfg.Storage.AccessKey, "QCLOUD_STORAGE_ACCESS_KEY")
	overlay(&cfg.Storage.SecretKey, "QCLOUD_STORAGE_SECRET_KEY")

	return cfg, nil
}

// ParseConnectionString parses the semicolon-delimited connection string
// issued by the workspace portal, e.g.
//
//	SubscriptionId=...;ResourceGroupName=...;WorkspaceName=...;ApiKey=...;QuantumEndpoint=...
func ParseConnectionString(cs string) (Config, error) {
	cfg := Config{}
	for _, part := range strings.Split(cs, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, found := strings.Cut(part, "=")
		if !found {
			return Config{}, fmt.Errorf("invalid connection string segment %q", part)
		}
		switch strings.ToLower(key) {
		case "subscriptionid":
			cfg.SubscriptionID = value
		case "resourcegroupname":
			cfg.ResourceGroup = value
		case "workspacename":
			cfg.WorkspaceName = value
		case "apikey":
			cfg.APIKey = value
		case "quantumendpoint":
			cfg.Endpoint = value
		default:
			return Config{}, fmt.Errorf("unrecognized connection string key %q", key)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("incomplete connection string: %w", err)
	}
	if cfg.APIKey == "" {
		return Config{}, fmt.Errorf("incomplete connection string: ApiKey is required")
	}
	return cfg, nil
}
