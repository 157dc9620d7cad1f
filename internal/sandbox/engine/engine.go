// Package engine implements the Sandbox Driver's container engine: the
// process-isolation layer that actually runs a build or run step.
package engine

import (
	"context"

	"codejudge/internal/sandbox/result"
	"codejudge/internal/sandbox/security"
	"codejudge/internal/sandbox/spec"
)

// Engine executes a RunSpec inside an isolated sandbox.
type Engine interface {
	Run(ctx context.Context, runSpec spec.RunSpec) (result.RunResult, error)
	KillExecution(ctx context.Context, executionID string) error
}

// ProfileResolver resolves a profile name into an isolation profile.
type ProfileResolver interface {
	Resolve(profile string) (security.IsolationProfile, error)
}
