package workspace

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

// EnvTokenFile points at a JSON file holding a pre-fetched access token,
// written by an external login tool. Shape: {"access_token": "...",
// "expires_on": <unix epoch in milliseconds>}.
const EnvTokenFile = "QCLOUD_TOKEN_FILE"

// AccessToken is a bearer token with its expiry.
type AccessToken struct {
	Token     string
	ExpiresOn time.Time
}

// Credential authorizes outgoing requests to the service.
type Credential interface {
	Authorize(ctx context.Context, req *http.Request) error
}

// StaticTokenCredential authorizes with a fixed bearer token.
type StaticTokenCredential struct {
	Token string
}

func (c *StaticTokenCredential) Authorize(_ context.Context, req *http.Request) error {
	if c.Token == "" {
		return &CredentialUnavailableError{Reason: "no token configured"}
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	return nil
}

// APIKeyCredential authorizes with a workspace API key, typically taken
// from a connection string.
type APIKeyCredential struct {
	Key string
}

func (c *APIKeyCredential) Authorize(_ context.Context, req *http.Request) error {
	if c.Key == "" {
		return &CredentialUnavailableError{Reason: "no API key configured"}
	}
	req.Header.Set("x-api-key", c.Key)
	return nil
}

// TokenFileCredential reads a token from the file named by QCLOUD_TOKEN_FILE.
// The token is re-read on every request so an external refresher can rotate
// the file without restarting the client.
type TokenFileCredential struct{}

type tokenFileContent struct {
	AccessToken string   `json:"access_token"`
	ExpiresOn   *float64 `json:"expires_on"` // unix epoch, milliseconds
}

// GetToken loads and validates the token file.
func (c *TokenFileCredential) GetToken(_ context.Context) (AccessToken, error) {
	path := os.Getenv(EnvTokenFile)
	if path == "" {
		return AccessToken{}, &CredentialUnavailableError{Reason: "token file location not set"}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return AccessToken{}, &CredentialUnavailableError{
				Reason: fmt.Sprintf("token file at %s does not exist", path),
			}
		}
		return AccessToken{}, fmt.Errorf("failed to read token file: %w", err)
	}

	var content tokenFileContent
	if err := json.Unmarshal(data, &content); err != nil {
		return AccessToken{}, &CredentialUnavailableError{
			Reason: "failed to parse token file: invalid JSON",
		}
	}
	if content.ExpiresOn == nil {
		return AccessToken{}, &CredentialUnavailableError{
			Reason: "failed to parse token file: missing expected value 'expires_on'",
		}
	}

	expiresOn := time.UnixMilli(int64(*content.ExpiresOn))
	if !expiresOn.After(time.Now()) {
		return AccessToken{}, &CredentialUnavailableError{
			Reason: fmt.Sprintf("token already expired at %s", expiresOn.Format(time.ANSIC)),
		}
	}

	return AccessToken{Token: content.AccessToken, ExpiresOn: expiresOn}, nil
}

func (c *TokenFileCredential) Authorize(ctx context.Context, req *http.Request) error {
	token, err := c.GetToken(ctx)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token.Token)
	return nil
}
