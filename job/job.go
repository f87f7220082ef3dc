// Package job wraps a submitted job handle: non-blocking status reads
// and blocking, deadline-bounded result waits.
package job

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantaleap/qcloud/workspace"
)

// DefaultTimeout bounds Results when callers pass no explicit timeout.
const DefaultTimeout = 300 * time.Second

const defaultPollInterval = time.Second

// TimeoutError reports that the wait deadline elapsed before the job
// reached a terminal success state. The service-side job is left as-is;
// no cancellation is issued.
type TimeoutError struct {
	Timeout    time.Duration
	LastStatus workspace.JobStatus
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("the wait time has exceeded %v; job status: %q", e.Timeout, e.LastStatus)
}

// FailedError reports a service-side terminal failure, distinct from the
// client giving up waiting.
type FailedError struct {
	JobID   string
	Status  workspace.JobStatus
	Message string
}

func (e *FailedError) Error() string {
	msg := fmt.Sprintf("job %q finished with status %q", e.JobID, e.Status)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Job is a handle to one submission. State changes only through status
// transitions reported by the service.
type Job struct {
	client       *workspace.Client
	details      workspace.JobDetails
	pollInterval time.Duration
	log          zerolog.Logger
}

// New wraps freshly obtained job details.
func New(client *workspace.Client, details workspace.JobDetails, log zerolog.Logger) *Job {
	return &Job{
		client:       client,
		details:      details,
		pollInterval: defaultPollInterval,
		log:          log.With().Str("component", "job").Str("job_id", details.ID).Logger(),
	}
}

// Get fetches a job by ID and wraps it.
func Get(ctx context.Context, client *workspace.Client, jobID string, log zerolog.Logger) (*Job, error) {
	details, err := client.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return New(client, *details, log), nil
}

// ID returns the job identifier.
func (j *Job) ID() string {
	return j.details.ID
}

// Details returns the most recently observed job details.
func (j *Job) Details() workspace.JobDetails {
	return j.details
}

// Status refreshes and returns the current job status. Non-blocking
// point read.
func (j *Job) Status(ctx context.Context) (workspace.JobStatus, error) {
	details, err := j.client.GetJob(ctx, j.details.ID)
	if err != nil {
		return "", err
	}
	j.details = *details
	return details.Status, nil
}

// Watch opens a live status event stream for this job.
func (j *Job) Watch(ctx context.Context) (*workspace.JobEventStream, error) {
	return j.client.WatchJob(ctx, j.details.ID)
}

// Results blocks until the job succeeds, fails, or the timeout elapses,
// polling the service at a fixed interval. On success the raw payload is
// decoded according to the job's output data format. A timeout yields a
// *TimeoutError; a terminal failure yields a *FailedError.
func (j *Job) Results(ctx context.Context, timeout time.Duration) (*ResultPayload, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	deadline := time.Now().Add(timeout)

	status := j.details.Status
	for {
		var err error
		status, err = j.Status(ctx)
		if err != nil {
			return nil, err
		}
		if status.Terminal() {
			break
		}
		if time.Now().After(deadline) {
			j.log.Warn().Str("status", string(status)).Dur("timeout", timeout).Msg("Gave up waiting for job")
			return nil, &TimeoutError{Timeout: timeout, LastStatus: status}
		}

		wait := j.pollInterval
		if remaining := time.Until(deadline); remaining < wait {
			wait = remaining
		}
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if status != workspace.JobStatusSucceeded {
		failed := &FailedError{JobID: j.details.ID, Status: status}
		if j.details.ErrorData != nil {
			failed.Message = j.details.ErrorData.Message
		}
		return nil, failed
	}

	raw, err := j.client.GetJobResults(ctx, j.details.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch job results: %w", err)
	}
	return decodeResults(j.details.OutputDataFormat, raw)
}
