// Package backend submits circuits to workspace targets. One Backend
// type serves every device variant; capability differences live in the
// target.Profile record it is constructed with.
package backend

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quantaleap/qcloud/circuit"
	"github.com/quantaleap/qcloud/job"
	"github.com/quantaleap/qcloud/target"
	"github.com/quantaleap/qcloud/workspace"
)

// DefaultJobName names submissions whose circuit carries no name.
const DefaultJobName = "qcloud-job"

// ErrMultiExperiment rejects batches of more than one circuit. Nothing
// is submitted when it is returned.
var ErrMultiExperiment = errors.New("multi-experiment jobs are not supported")

// Options are submission options keyed by input-param name. Keys the
// backend declares defaults for are merged into the job's input params;
// unrecognized keys pass through into the job metadata.
type Options map[string]interface{}

// Backend submits circuits to a single workspace target.
type Backend struct {
	profile  target.Profile
	client   *workspace.Client
	factory  *target.Factory
	defaults Options
	log      zerolog.Logger
}

// New creates a backend for the given capability profile. The factory is
// shared with the caller; it is only consulted for cost estimation.
func New(profile target.Profile, client *workspace.Client, factory *target.Factory, log zerolog.Logger) *Backend {
	return &Backend{
		profile: profile,
		client:  client,
		factory: factory,
		defaults: Options{
			"count": profile.DefaultShots,
		},
		log: log.With().Str("component", "backend").Str("backend", profile.Name).Logger(),
	}
}

// Name returns the target name this backend submits to.
func (b *Backend) Name() string {
	return b.profile.Name
}

// Profile returns the backend's capability descriptor.
func (b *Backend) Profile() target.Profile {
	return b.profile
}

// DefaultOptions returns a copy of the backend-declared option defaults.
func (b *Backend) DefaultOptions() Options {
	defaults := make(Options, len(b.defaults))
	for k, v := range b.defaults {
		defaults[k] = v
	}
	return defaults
}

// Run submits a batch of circuits for execution and returns the job
// handle without waiting for completion. Only single-circuit batches are
// accepted; larger batches fail before any network interaction.
func (b *Backend) Run(ctx context.Context, circuits []*circuit.Circuit, opts Options) (*job.Job, error) {
	if len(circuits) == 0 {
		return nil, fmt.Errorf("no circuits provided")
	}
	if len(circuits) > 1 {
		return nil, ErrMultiExperiment
	}
	return b.submit(ctx, circuits[0], opts)
}

// Bundle is the legacy pre-assembled submission shape: circuits plus an
// embedded shot count.
type Bundle struct {
	Circuits []*circuit.Circuit
	Shots    int
}

// RunBundle disassembles a legacy bundle into a single circuit plus its
// shot count and submits it. An explicit count option wins over the
// bundle's embedded shot count.
func (b *Backend) RunBundle(ctx context.Context, bundle Bundle, opts Options) (*job.Job, error) {
	if len(bundle.Circuits) == 0 {
		return nil, fmt.Errorf("no circuits provided")
	}
	if len(bundle.Circuits) > 1 {
		return nil, ErrMultiExperiment
	}
	if _, ok := opts["count"]; !ok && bundle.Shots > 0 {
		merged := make(Options, len(opts)+1)
		for k, v := range opts {
			merged[k] = v
		}
		merged["count"] = bundle.Shots
		opts = merged
	}
	return b.submit(ctx, bundle.Circuits[0], opts)
}

func (b *Backend) submit(ctx context.Context, circ *circuit.Circuit, opts Options) (*job.Job, error) {
	inputData, err := circ.QASM()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize circuit: %w", err)
	}

	inputParams, extra := b.mergeOptions(opts)

	metadata := map[string]string{
		"qubits": strconv.Itoa(circ.Qubits),
	}
	for k, v := range extra {
		metadata[k] = fmt.Sprint(v)
	}

	name := circ.Name
	if name == "" {
		name = DefaultJobName
	}

	b.log.Info().Str("circuit", name).Msg("Submitting new job")

	details, err := b.client.SubmitJob(ctx, workspace.JobSubmission{
		ID:               uuid.NewString(),
		Name:             name,
		Target:           b.profile.Name,
		BlobName:         "inputData",
		ContentType:      b.profile.ContentType,
		ProviderID:       b.profile.ProviderID,
		InputDataFormat:  b.profile.InputDataFormat,
		OutputDataFormat: b.profile.OutputDataFormat,
		InputData:        []byte(inputData),
		InputParams:      inputParams,
		Metadata:         metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to submit job: %w", err)
	}

	b.log.Info().Str("job_id", details.ID).Str("circuit", name).Msg("Submitted job")
	return job.New(b.client, *details, b.log), nil
}

// mergeOptions overlays caller options onto the backend defaults.
// Recognized keys (those with a declared default) land in the input
// params with the caller's value winning; the rest are returned for the
// job metadata untouched.
func (b *Backend) mergeOptions(opts Options) (params Options, extra Options) {
	params = b.DefaultOptions()
	extra = Options{}
	for k, v := range opts {
		if _, recognized := params[k]; recognized {
			params[k] = v
		} else {
			extra[k] = v
		}
	}
	return params, extra
}

// EstimateCost serializes the circuit, resolves the backend's target and
// asks it to price the payload at the given shot count.
func (b *Backend) EstimateCost(ctx context.Context, circ *circuit.Circuit, shots int) (*workspace.CostEstimate, error) {
	inputData, err := circ.QASM()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize circuit: %w", err)
	}
	t, err := b.factory.GetTarget(ctx, b.profile.Name)
	if err != nil {
		return nil, err
	}
	return t.EstimateCost(ctx, []byte(inputData), shots)
}
