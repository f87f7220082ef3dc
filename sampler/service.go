// Package sampler is the high-level facade for running circuits against
// a workspace: target resolution with a configurable default, job
// creation, and translation of raw results into per-shot measurement
// records.
package sampler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantaleap/qcloud/backend"
	"github.com/quantaleap/qcloud/circuit"
	"github.com/quantaleap/qcloud/job"
	"github.com/quantaleap/qcloud/target"
	"github.com/quantaleap/qcloud/workspace"
)

// ErrNoDefaultTarget is returned when an operation names no target and
// the service was constructed without a default. A configuration error:
// it surfaces before any network interaction.
var ErrNoDefaultTarget = errors.New("no default target specified for job")

// DefaultJobName names jobs whose spec carries no name.
const DefaultJobName = "sampler-job"

// Service runs circuits against workspace targets.
type Service struct {
	client        *workspace.Client
	factory       *target.Factory
	defaultTarget string
	log           zerolog.Logger
}

// NewService creates a sampler service. defaultTarget may be empty, in
// which case every operation must name a target explicitly. The target
// factory is constructed once here and shared across calls.
func NewService(client *workspace.Client, defaultTarget string, log zerolog.Logger) *Service {
	serviceLog := log.With().Str("component", "sampler").Logger()
	return &Service{
		client:        client,
		factory:       target.NewFactory(client, serviceLog),
		defaultTarget: defaultTarget,
		log:           serviceLog,
	}
}

// Targets lists workspace targets, optionally filtered by name and
// provider.
func (s *Service) Targets(ctx context.Context, name, providerID string) ([]*target.Target, error) {
	return s.factory.GetTargets(ctx, name, providerID)
}

// GetTarget resolves the unique target with the given name.
func (s *Service) GetTarget(ctx context.Context, name string) (*target.Target, error) {
	return s.factory.GetTarget(ctx, name)
}

// GetJob looks up a previously submitted job by ID.
func (s *Service) GetJob(ctx context.Context, jobID string) (*job.Job, error) {
	return job.Get(ctx, s.client, jobID, s.log)
}

// JobSpec describes one job creation request. Target falls back to the
// service default when empty.
type JobSpec struct {
	Circuit     *circuit.Circuit
	Repetitions int
	Name        string
	Target      string
}

// CreateJob submits the circuit and returns the job handle without
// blocking for completion.
func (s *Service) CreateJob(ctx context.Context, spec JobSpec) (*job.Job, error) {
	if spec.Circuit == nil {
		return nil, fmt.Errorf("circuit is required")
	}
	targetName, err := s.resolveTargetName(spec.Target)
	if err != nil {
		return nil, err
	}

	profile, ok := target.ProfileFor(targetName)
	if !ok {
		// Not a built-in profile: take the service's word for it
		resolved, err := s.factory.GetTarget(ctx, targetName)
		if err != nil {
			return nil, err
		}
		profile = resolved.Profile
	}

	circ := *spec.Circuit
	if spec.Name != "" {
		circ.Name = spec.Name
	} else if circ.Name == "" {
		circ.Name = DefaultJobName
	}

	opts := backend.Options{}
	if spec.Repetitions > 0 {
		opts["count"] = spec.Repetitions
	}

	b := backend.New(profile, s.client, s.factory, s.log)
	return b.Run(ctx, []*circuit.Circuit{&circ}, opts)
}

// RunSpec describes one blocking run. A zero Timeout uses job.DefaultTimeout.
type RunSpec struct {
	JobSpec
	Seed    uint64
	Timeout time.Duration
}

// Run submits the circuit, blocks for its results and translates them
// into per-shot measurement records.
func (s *Service) Run(ctx context.Context, spec RunSpec) (*Result, error) {
	j, err := s.CreateJob(ctx, spec.JobSpec)
	if err != nil {
		return nil, err
	}
	payload, err := j.Results(ctx, spec.Timeout)
	if err != nil {
		return nil, err
	}
	return ToResult(payload, j.ID(), spec.Repetitions, spec.Seed)
}

func (s *Service) resolveTargetName(name string) (string, error) {
	if name != "" {
		return name, nil
	}
	if s.defaultTarget == "" {
		return "", ErrNoDefaultTarget
	}
	return s.defaultTarget, nil
}
