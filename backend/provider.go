package backend

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/quantaleap/qcloud/job"
	"github.com/quantaleap/qcloud/target"
	"github.com/quantaleap/qcloud/workspace"
)

// Provider hands out backends for the built-in capability profiles of a
// workspace and looks up previously submitted jobs.
type Provider struct {
	client  *workspace.Client
	factory *target.Factory
	log     zerolog.Logger
}

// NewProvider creates a provider bound to a workspace client. The target
// factory is constructed here, once, and shared by every backend.
func NewProvider(client *workspace.Client, log zerolog.Logger) *Provider {
	return &Provider{
		client:  client,
		factory: target.NewFactory(client, log),
		log:     log.With().Str("component", "provider").Logger(),
	}
}

// Backends returns a backend per built-in capability profile.
func (p *Provider) Backends() []*Backend {
	profiles := target.Profiles()
	backends := make([]*Backend, 0, len(profiles))
	for _, profile := range profiles {
		backends = append(backends, New(profile, p.client, p.factory, p.log))
	}
	return backends
}

// Backend returns the backend for the named target.
func (p *Provider) Backend(name string) (*Backend, error) {
	profile, ok := target.ProfileFor(name)
	if !ok {
		return nil, fmt.Errorf("no backend for target %q: %w", name, workspace.ErrTargetNotFound)
	}
	return New(profile, p.client, p.factory, p.log), nil
}

// GetJob looks up a previously submitted job by ID.
func (p *Provider) GetJob(ctx context.Context, jobID string) (*job.Job, error) {
	return job.Get(ctx, p.client, jobID, p.log)
}
