package workspace

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTokenFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestTokenFileCredential_LocationNotSet(t *testing.T) {
	t.Setenv(EnvTokenFile, "")

	cred := &TokenFileCredential{}
	_, err := cred.GetToken(context.Background())

	var credErr *CredentialUnavailableError
	require.ErrorAs(t, err, &credErr)
	assert.Contains(t, credErr.Error(), "token file location not set")
}

func TestTokenFileCredential_FileDoesNotExist(t *testing.T) {
	t.Setenv(EnvTokenFile, "/nonexistent/token.json")

	cred := &TokenFileCredential{}
	_, err := cred.GetToken(context.Background())

	var credErr *CredentialUnavailableError
	require.ErrorAs(t, err, &credErr)
	assert.Contains(t, credErr.Error(), "token file at /nonexistent/token.json does not exist")
}

func TestTokenFileCredential_InvalidJSON(t *testing.T) {
	t.Setenv(EnvTokenFile, writeTokenFile(t, "not a json"))

	cred := &TokenFileCredential{}
	_, err := cred.GetToken(context.Background())

	var credErr *CredentialUnavailableError
	require.ErrorAs(t, err, &credErr)
	assert.Contains(t, credErr.Error(), "invalid JSON")
}

func TestTokenFileCredential_MissingExpiresOn(t *testing.T) {
	t.Setenv(EnvTokenFile, writeTokenFile(t, `{"access_token": "fake-token"}`))

	cred := &TokenFileCredential{}
	_, err := cred.GetToken(context.Background())

	var credErr *CredentialUnavailableError
	require.ErrorAs(t, err, &credErr)
	assert.Contains(t, credErr.Error(), "missing expected value 'expires_on'")
}

func TestTokenFileCredential_TokenExpired(t *testing.T) {
	content, err := json.Marshal(map[string]interface{}{
		"access_token": "fake-token",
		"expires_on":   1628543125086, // in the past
	})
	require.NoError(t, err)
	t.Setenv(EnvTokenFile, writeTokenFile(t, string(content)))

	cred := &TokenFileCredential{}
	_, err = cred.GetToken(context.Background())

	var credErr *CredentialUnavailableError
	require.ErrorAs(t, err, &credErr)
	assert.Contains(t, credErr.Error(), "token already expired")
}

func TestTokenFileCredential_ValidToken(t *testing.T) {
	oneHourAhead := time.Now().Add(time.Hour)
	content, err := json.Marshal(map[string]interface{}{
		"access_token": "fake-token",
		"expires_on":   oneHourAhead.UnixMilli(),
	})
	require.NoError(t, err)
	t.Setenv(EnvTokenFile, writeTokenFile(t, string(content)))

	cred := &TokenFileCredential{}
	token, err := cred.GetToken(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "fake-token", token.Token)
	assert.WithinDuration(t, oneHourAhead, token.ExpiresOn, time.Second)

	req, err := http.NewRequest(http.MethodGet, "http://example.invalid", nil)
	require.NoError(t, err)
	require.NoError(t, cred.Authorize(context.Background(), req))
	assert.Equal(t, "Bearer fake-token", req.Header.Get("Authorization"))
}

func TestStaticTokenCredential(t *testing.T) {
	t.Run("sets bearer header", func(t *testing.T) {
		cred := &StaticTokenCredential{Token: "abc"}
		req, err := http.NewRequest(http.MethodGet, "http://example.invalid", nil)
		require.NoError(t, err)
		require.NoError(t, cred.Authorize(context.Background(), req))
		assert.Equal(t, "Bearer abc", req.Header.Get("Authorization"))
	})

	t.Run("empty token is unavailable", func(t *testing.T) {
		cred := &StaticTokenCredential{}
		req, err := http.NewRequest(http.MethodGet, "http://example.invalid", nil)
		require.NoError(t, err)
		var credErr *CredentialUnavailableError
		assert.ErrorAs(t, cred.Authorize(context.Background(), req), &credErr)
	})
}

func TestAPIKeyCredential(t *testing.T) {
	cred := &APIKeyCredential{Key: "key-123"}
	req, err := http.NewRequest(http.MethodGet, "http://example.invalid", nil)
	require.NoError(t, err)
	require.NoError(t, cred.Authorize(context.Background(), req))
	assert.Equal(t, "key-123", req.Header.Get("x-api-key"))
}
