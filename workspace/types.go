package workspace

import "time"

// JobStatus is a job lifecycle state as reported by the service.
type JobStatus string

const (
	JobStatusWaiting   JobStatus = "Waiting"
	JobStatusExecuting JobStatus = "Executing"
	JobStatusSucceeded JobStatus = "Succeeded"
	JobStatusFailed    JobStatus = "Failed"
	JobStatusCancelled JobStatus = "Cancelled"
)

// Terminal reports whether no further status transition can occur.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobStatusSucceeded, JobStatusFailed, JobStatusCancelled:
		return true
	}
	return false
}

// TargetStatus is the service-side descriptor of a compute target.
type TargetStatus struct {
	Name                string `json:"id"`
	ProviderID          string `json:"providerId"`
	CurrentAvailability string `json:"currentAvailability"`
	AverageQueueTimeSec int64  `json:"averageQueueTime"`
	StatusPage          string `json:"statusPage,omitempty"`
}

// ErrorData carries the service-reported failure details for a job.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// JobDetails is the service-side record of a submitted job.
type JobDetails struct {
	ID               string                 `json:"id"`
	Name             string                 `json:"name"`
	Target           string                 `json:"target"`
	ProviderID       string                 `json:"providerId"`
	InputDataURI     string                 `json:"inputDataUri,omitempty"`
	InputData        []byte                 `json:"inputData,omitempty"`
	ContentType      string                 `json:"contentType"`
	InputDataFormat  string                 `json:"inputDataFormat"`
	OutputDataFormat string                 `json:"outputDataFormat"`
	InputParams      map[string]interface{} `json:"inputParams,omitempty"`
	Metadata         map[string]string      `json:"metadata,omitempty"`
	Status           JobStatus              `json:"status,omitempty"`
	ErrorData        *ErrorData             `json:"errorData,omitempty"`
	CreationTime     *time.Time             `json:"creationTime,omitempty"`
	BeginExecution   *time.Time             `json:"beginExecutionTime,omitempty"`
	EndExecution     *time.Time             `json:"endExecutionTime,omitempty"`
}

// JobSubmission is the client-side payload for creating a job.
// InputData is the serialized circuit; it is staged to the blob store
// (or inlined when no blob store is configured) before the job record
// is created.
type JobSubmission struct {
	ID               string
	Name             string
	Target           string
	BlobName         string
	ContentType      string
	ProviderID       string
	InputDataFormat  string
	OutputDataFormat string
	InputData        []byte
	InputParams      map[string]interface{}
	Metadata         map[string]string
}

// CostEstimate is the service's price quote for a payload at a shot count.
type CostEstimate struct {
	EstimatedTotal float64 `json:"estimatedTotal"`
	CurrencyCode   string  `json:"currencyCode"`
}

// JobEvent is one status transition delivered over the event stream.
type JobEvent struct {
	JobID     string    `json:"jobId"`
	Status    JobStatus `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
