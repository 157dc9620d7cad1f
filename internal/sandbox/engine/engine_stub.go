//go:build !linux

package engine

import (
	"context"
	"fmt"

	"codejudge/internal/sandbox/result"
	"codejudge/internal/sandbox/spec"
)

type stubEngine struct{}

// NewEngine returns an engine that always fails; the real sandbox engine
// depends on Linux cgroups and namespaces and has no portable equivalent.
func NewEngine(cfg Config, resolver ProfileResolver) (Engine, error) {
	return &stubEngine{}, nil
}

func (s *stubEngine) Run(ctx context.Context, runSpec spec.RunSpec) (result.RunResult, error) {
	return result.RunResult{}, fmt.Errorf("sandbox engine is only supported on linux")
}

func (s *stubEngine) KillExecution(ctx context.Context, executionID string) error {
	return fmt.Errorf("sandbox engine is only supported on linux")
}
