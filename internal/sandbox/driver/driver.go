// Package driver implements the Sandbox Driver (C1): building an isolated
// artifact for one Execution and running it once under CPU-time and
// memory caps, collecting stdout, exit status, and resource-exhaustion
// signals for the Verdict Classifier.
package driver

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/shlex"

	"codejudge/internal/model"
	"codejudge/internal/sandbox/engine"
	sandboxspec "codejudge/internal/sandbox/spec"
	appErr "codejudge/pkg/errors"
)

const (
	containerWorkDir = "/work"
	defaultProfile   = "default"
	buildBudget      = 60 * time.Second
)

// BuildResult is the outcome of the build phase. OK=false with the
// captured log indicates a compilation failure.
type BuildResult struct {
	OK  bool
	Log string
}

// RunResult is the outcome of the run phase, in the Sandbox Driver's
// vocabulary (spec.md §4.3) rather than the engine's raw result shape.
type RunResult struct {
	ExitCode     int
	Stdout       string
	Stderr       string
	WallClockMs  int64
	MemoryKB     int64
	MemoryKilled bool
	TimedOut     bool
}

// Driver builds and runs one Execution's submitted program.
type Driver struct {
	eng engine.Engine
}

// New creates a Driver backed by a sandbox engine.
func New(eng engine.Engine) *Driver {
	return &Driver{eng: eng}
}

// Build constructs the submission's artifact. A no-op for interpreted
// languages: RequiresCompilation=false always returns OK.
func (d *Driver) Build(ctx context.Context, exec *model.Execution) (BuildResult, error) {
	if !exec.Policy.RequiresCompilation {
		return BuildResult{OK: true}, nil
	}

	cmd, err := expandCommand(exec.Policy.BuildTemplate, exec, nil)
	if err != nil {
		return BuildResult{}, err
	}

	buildCtx, cancel := context.WithTimeout(ctx, buildBudget)
	defer cancel()

	logHostPath := filepath.Join(exec.WorkspacePath, "compile.log")
	runSpec := sandboxspec.RunSpec{
		ExecutionID: exec.ID,
		Step:        "build",
		WorkDir:     containerWorkDir,
		Cmd:         cmd,
		Env:         exec.Policy.Env,
		StderrPath:  logHostPath,
		Profile:     defaultProfile,
		BindMounts: []sandboxspec.MountSpec{
			{Source: exec.WorkspacePath, Target: containerWorkDir, ReadOnly: false},
		},
	}

	runRes, err := d.eng.Run(buildCtx, runSpec)
	if err != nil {
		return BuildResult{}, appErr.Wrap(err, appErr.SandboxUnavailable)
	}

	if buildCtx.Err() != nil {
		return BuildResult{OK: false, Log: "build timed out"}, nil
	}
	return BuildResult{OK: runRes.ExitCode == 0, Log: readLog(logHostPath)}, nil
}

// Run executes the built (or interpreted) submission once, with stdin
// piped from the Execution's input file when present, under the
// Execution's time and memory limits.
func (d *Driver) Run(ctx context.Context, exec *model.Execution) (RunResult, error) {
	cmd, err := expandCommand(exec.Policy.RunCommand, exec, nil)
	if err != nil {
		return RunResult{}, err
	}

	stdoutHostPath := filepath.Join(exec.WorkspacePath, "stdout.txt")
	stderrHostPath := filepath.Join(exec.WorkspacePath, "stderr.txt")

	runSpec := sandboxspec.RunSpec{
		ExecutionID: exec.ID,
		Step:        "run",
		WorkDir:     containerWorkDir,
		Cmd:         cmd,
		Env:         exec.Policy.Env,
		StdoutPath:  stdoutHostPath,
		StderrPath:  stderrHostPath,
		Profile:     defaultProfile,
		Limits:      limitsFor(exec),
		BindMounts: []sandboxspec.MountSpec{
			{Source: exec.WorkspacePath, Target: containerWorkDir, ReadOnly: false},
		},
	}
	if exec.InputFile != "" {
		runSpec.StdinPath = exec.InputFile
	}

	runRes, err := d.eng.Run(ctx, runSpec)
	if err != nil {
		return RunResult{}, appErr.Wrap(err, appErr.SandboxUnavailable)
	}

	timedOut := runRes.ExitCode == -1
	memoryKilled := runRes.OomKilled || (runRes.ExitCode == 137 && !timedOut)

	return RunResult{
		ExitCode:     runRes.ExitCode,
		Stdout:       readLog(stdoutHostPath),
		Stderr:       readLog(stderrHostPath),
		WallClockMs:  runRes.WallTimeMs,
		MemoryKB:     runRes.MemoryKB,
		MemoryKilled: memoryKilled,
		TimedOut:     timedOut,
	}, nil
}

func limitsFor(exec *model.Execution) sandboxspec.ResourceLimit {
	pol := exec.Policy
	return sandboxspec.ResourceLimit{
		CPUTimeMs:  scaleLimit(int64(exec.TimeLimitSec)*1000, pol.TimeMultiplier),
		WallTimeMs: scaleLimit(int64(exec.TimeLimitSec)*1000, pol.TimeMultiplier),
		MemoryMB:   scaleLimit(int64(exec.MemoryLimitMB), pol.MemoryMultiplier),
		OutputMB:   1,
		PIDs:       64,
	}
}

func readLog(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(data)
}

func expandCommand(tpl string, exec *model.Execution, extraFlags []string) ([]string, error) {
	if strings.TrimSpace(tpl) == "" {
		return nil, appErr.New(appErr.InvalidParams).WithMessage("command template is required")
	}
	binPath := filepath.Join(containerWorkDir, "submission")
	srcBase := filepath.Base(exec.SourceFile)
	srcPath := filepath.Join(containerWorkDir, srcBase)
	className := strings.TrimSuffix(srcBase, filepath.Ext(srcBase))

	expanded := tpl
	expanded = strings.ReplaceAll(expanded, "{src}", srcPath)
	expanded = strings.ReplaceAll(expanded, "{bin}", binPath)
	expanded = strings.ReplaceAll(expanded, "{bindir}", containerWorkDir)
	expanded = strings.ReplaceAll(expanded, "{class}", className)
	if strings.Contains(expanded, "{extraFlags}") {
		expanded = strings.ReplaceAll(expanded, "{extraFlags}", strings.Join(extraFlags, " "))
	}

	fields, err := shlex.Split(expanded)
	if err != nil {
		return nil, appErr.Wrapf(err, appErr.InvalidParams, "parse command template failed")
	}
	if len(fields) == 0 {
		return nil, appErr.New(appErr.InvalidParams).WithMessage("command is empty after expansion")
	}
	return fields, nil
}

func scaleLimit(value int64, multiplier float64) int64 {
	if value <= 0 {
		return 0
	}
	if multiplier <= 0 {
		return value
	}
	return int64(math.Ceil(float64(value) * multiplier))
}
