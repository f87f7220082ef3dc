package workspace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	apiVersion     = "v1"
	requestTimeout = 30 * time.Second
)

// Client talks to the QuantaLeap Quantum REST API for a single workspace.
// It performs no retries; transient-failure handling is left to callers.
type Client struct {
	endpoint      string
	workspaceName string
	httpClient    *http.Client
	credential    Credential
	blobs         *BlobStore
	log           zerolog.Logger
}

// NewClient creates a workspace client. The credential may not be nil.
// A blob store is attached automatically when cfg.Storage names a bucket.
func NewClient(ctx context.Context, cfg Config, cred Credential, log zerolog.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid workspace config: %w", err)
	}
	if cred == nil {
		return nil, fmt.Errorf("credential is required")
	}

	c := &Client{
		endpoint:      strings.TrimRight(cfg.Endpoint, "/"),
		workspaceName: cfg.WorkspaceName,
		httpClient:    &http.Client{Timeout: requestTimeout},
		credential:    cred,
		log:           log.With().Str("client", "workspace").Str("workspace", cfg.WorkspaceName).Logger(),
	}

	if cfg.Storage.Bucket != "" {
		blobs, err := NewBlobStore(ctx, cfg.Storage, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize blob store: %w", err)
		}
		c.blobs = blobs
	}

	return c, nil
}

// FromConnectionString creates a client authenticated with the API key
// embedded in the connection string.
func FromConnectionString(ctx context.Context, cs string, log zerolog.Logger) (*Client, error) {
	cfg, err := ParseConnectionString(cs)
	if err != nil {
		return nil, err
	}
	return NewClient(ctx, cfg, &APIKeyCredential{Key: cfg.APIKey}, log)
}

// WorkspaceName returns the workspace this client is bound to.
func (c *Client) WorkspaceName() string {
	return c.workspaceName
}

// GetTargets lists the targets available in the workspace. Both filters
// are optional; an empty result for an explicit name is reported as
// ErrTargetNotFound.
func (c *Client) GetTargets(ctx context.Context, name, providerID string) ([]TargetStatus, error) {
	path := c.workspacePath("targets")
	query := url.Values{}
	if name != "" {
		query.Set("name", name)
	}
	if providerID != "" {
		query.Set("providerId", providerID)
	}
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var targets []TargetStatus
	if err := c.do(ctx, http.MethodGet, path, nil, &targets); err != nil {
		return nil, err
	}
	if name != "" && len(targets) == 0 {
		return nil, fmt.Errorf("no target matching name %q: %w", name, ErrTargetNotFound)
	}
	return targets, nil
}

// GetJob fetches the current details of a job.
func (c *Client) GetJob(ctx context.Context, jobID string) (*JobDetails, error) {
	var details JobDetails
	err := c.do(ctx, http.MethodGet, c.workspacePath("jobs", jobID), nil, &details)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("job %q: %w", jobID, ErrJobNotFound)
		}
		return nil, err
	}
	return &details, nil
}

// SubmitJob stages the input data and creates the job record. The
// returned details reflect the service's view of the new job.
func (c *Client) SubmitJob(ctx context.Context, sub JobSubmission) (*JobDetails, error) {
	details := JobDetails{
		ID:               sub.ID,
		Name:             sub.Name,
		Target:           sub.Target,
		ProviderID:       sub.ProviderID,
		ContentType:      sub.ContentType,
		InputDataFormat:  sub.InputDataFormat,
		OutputDataFormat: sub.OutputDataFormat,
		InputParams:      sub.InputParams,
		Metadata:         sub.Metadata,
	}

	if c.blobs != nil {
		key := fmt.Sprintf("jobs/%s/%s", sub.ID, sub.BlobName)
		uri, err := c.blobs.Upload(ctx, key, sub.ContentType, sub.InputData)
		if err != nil {
			return nil, fmt.Errorf("failed to stage input data: %w", err)
		}
		details.InputDataURI = uri
	} else {
		details.InputData = sub.InputData
	}

	c.log.Info().
		Str("job_id", sub.ID).
		Str("target", sub.Target).
		Str("input_data_format", sub.InputDataFormat).
		Msg("Submitting job")

	var created JobDetails
	err := c.do(ctx, http.MethodPut, c.workspacePath("jobs", sub.ID), details, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// GetJobResults downloads the raw result payload of a job. The bytes are
// returned untouched; decoding is keyed off the job's output data format.
func (c *Client) GetJobResults(ctx context.Context, jobID string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.workspacePath("jobs", jobID, "results"), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp.StatusCode, body)
	}
	return body, nil
}

// CancelJob requests cancellation of a job. The service may have already
// moved the job to a terminal state; that is not an error here.
func (c *Client) CancelJob(ctx context.Context, jobID string) error {
	return c.do(ctx, http.MethodPost, c.workspacePath("jobs", jobID, "cancel"), nil, nil)
}

type costEstimateRequest struct {
	InputDataFormat string `json:"inputDataFormat"`
	InputData       []byte `json:"inputData"`
	Shots           int    `json:"shots"`
}

// EstimateCost asks the service to price the given payload at a shot count.
func (c *Client) EstimateCost(ctx context.Context, targetName, inputDataFormat string, inputData []byte, shots int) (*CostEstimate, error) {
	body := costEstimateRequest{
		InputDataFormat: inputDataFormat,
		InputData:       inputData,
		Shots:           shots,
	}
	var estimate CostEstimate
	err := c.do(ctx, http.MethodPost, c.workspacePath("targets", targetName, "estimateCost"), body, &estimate)
	if err != nil {
		return nil, err
	}
	return &estimate, nil
}

func (c *Client) workspacePath(parts ...string) string {
	segments := append([]string{apiVersion, "workspaces", c.workspaceName}, parts...)
	return "/" + strings.Join(segments, "/")
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if err := c.credential.Authorize(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// do performs a JSON request/response round trip. A nil out discards the
// response body.
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(resp.StatusCode, respBody)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

func (c *Client) statusError(statusCode int, body []byte) error {
	message := strings.TrimSpace(string(body))
	if len(message) > 500 {
		message = message[:500] + "..."
	}
	// Prefer the structured error message when the service sent one
	var wireErr struct {
		Error *ErrorData `json:"error"`
	}
	if err := json.Unmarshal(body, &wireErr); err == nil && wireErr.Error != nil {
		message = wireErr.Error.Message
	}
	c.log.Error().
		Int("status_code", statusCode).
		Str("message", message).
		Msg("Service returned non-2xx status")
	return &APIError{StatusCode: statusCode, Message: message}
}
