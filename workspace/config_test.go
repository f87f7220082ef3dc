package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConnectionString(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		cs := "SubscriptionId=sub-1;ResourceGroupName=rg-1;WorkspaceName=ws-1;" +
			"ApiKey=key-1;QuantumEndpoint=https://quantum.example.com"
		cfg, err := ParseConnectionString(cs)
		require.NoError(t, err)

		assert.Equal(t, "sub-1", cfg.SubscriptionID)
		assert.Equal(t, "rg-1", cfg.ResourceGroup)
		assert.Equal(t, "ws-1", cfg.WorkspaceName)
		assert.Equal(t, "key-1", cfg.APIKey)
		assert.Equal(t, "https://quantum.example.com", cfg.Endpoint)
	})

	t.Run("missing api key", func(t *testing.T) {
		cs := "WorkspaceName=ws-1;QuantumEndpoint=https://quantum.example.com"
		_, err := ParseConnectionString(cs)
		assert.ErrorContains(t, err, "ApiKey is required")
	})

	t.Run("missing workspace name", func(t *testing.T) {
		cs := "ApiKey=key-1;QuantumEndpoint=https://quantum.example.com"
		_, err := ParseConnectionString(cs)
		assert.ErrorContains(t, err, "workspace name is required")
	})

	t.Run("unrecognized key", func(t *testing.T) {
		_, err := ParseConnectionString("Bogus=1")
		assert.ErrorContains(t, err, "unrecognized connection string key")
	})

	t.Run("malformed segment", func(t *testing.T) {
		_, err := ParseConnectionString("no-equals-sign")
		assert.ErrorContains(t, err, "invalid connection string segment")
	})
}

func TestLoadConfig(t *testing.T) {
	t.Run("yaml file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := `
workspace_name: ws-from-file
endpoint: https://file.example.com
storage:
  bucket: staging-bucket
  region: eu-west-1
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "ws-from-file", cfg.WorkspaceName)
		assert.Equal(t, "https://file.example.com", cfg.Endpoint)
		assert.Equal(t, "staging-bucket", cfg.Storage.Bucket)
		assert.Equal(t, "eu-west-1", cfg.Storage.Region)
	})

	t.Run("env overrides file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("workspace_name: ws-from-file\n"), 0600))
		t.Setenv("QCLOUD_WORKSPACE_NAME", "ws-from-env")
		t.Setenv("QCLOUD_ENDPOINT", "https://env.example.com")

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "ws-from-env", cfg.WorkspaceName)
		assert.Equal(t, "https://env.example.com", cfg.Endpoint)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorContains(t, err, "failed to read config file")
	})
}

func TestConfigValidate(t *testing.T) {
	assert.Error(t, Config{}.Validate())
	assert.Error(t, Config{WorkspaceName: "ws"}.Validate())
	assert.NoError(t, Config{WorkspaceName: "ws", Endpoint: "https://quantum.example.com"}.Validate())
}
