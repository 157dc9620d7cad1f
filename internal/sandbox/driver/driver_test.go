package driver_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"codejudge/internal/model"
	"codejudge/internal/sandbox/driver"
	sandboxresult "codejudge/internal/sandbox/result"
	sandboxspec "codejudge/internal/sandbox/spec"
)

type fakeEngine struct {
	runFn func(ctx context.Context, spec sandboxspec.RunSpec) (sandboxresult.RunResult, error)
}

func (f *fakeEngine) Run(ctx context.Context, spec sandboxspec.RunSpec) (sandboxresult.RunResult, error) {
	return f.runFn(ctx, spec)
}

func (f *fakeEngine) KillExecution(ctx context.Context, executionID string) error {
	return nil
}

func newExec(t *testing.T, pol model.LanguagePolicy) *model.Execution {
	t.Helper()
	workspace := t.TempDir()
	sourceFile := filepath.Join(workspace, "main.py")
	if err := os.WriteFile(sourceFile, []byte("print('hi')"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return &model.Execution{
		ID:            "exec-1",
		Policy:        pol,
		WorkspacePath: workspace,
		SourceFile:    sourceFile,
		TimeLimitSec:  2,
		MemoryLimitMB: 128,
	}
}

func TestDriver_Build_NoopForInterpretedLanguage(t *testing.T) {
	eng := &fakeEngine{runFn: func(ctx context.Context, spec sandboxspec.RunSpec) (sandboxresult.RunResult, error) {
		t.Fatal("engine.Run should not be called for a non-compiled language")
		return sandboxresult.RunResult{}, nil
	}}
	d := driver.New(eng)
	exec := newExec(t, model.LanguagePolicy{RequiresCompilation: false})

	build, err := d.Build(context.Background(), exec)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if !build.OK {
		t.Error("expected Build to report OK for a no-op interpreted build")
	}
}

func TestDriver_Build_CompilationFailure(t *testing.T) {
	eng := &fakeEngine{runFn: func(ctx context.Context, spec sandboxspec.RunSpec) (sandboxresult.RunResult, error) {
		if err := os.WriteFile(spec.StderrPath, []byte("syntax error"), 0o644); err != nil {
			t.Fatalf("write compile log: %v", err)
		}
		return sandboxresult.RunResult{ExitCode: 1}, nil
	}}
	d := driver.New(eng)
	exec := newExec(t, model.LanguagePolicy{
		RequiresCompilation: true,
		BuildTemplate:       "gcc -o {bin} {src}",
	})

	build, err := d.Build(context.Background(), exec)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if build.OK {
		t.Error("expected Build to report failure on non-zero exit code")
	}
	if build.Log != "syntax error" {
		t.Errorf("expected compile log to be captured, got %q", build.Log)
	}
}

func TestDriver_Run_ReportsMemoryKilled(t *testing.T) {
	eng := &fakeEngine{runFn: func(ctx context.Context, spec sandboxspec.RunSpec) (sandboxresult.RunResult, error) {
		return sandboxresult.RunResult{ExitCode: 137, OomKilled: true}, nil
	}}
	d := driver.New(eng)
	exec := newExec(t, model.LanguagePolicy{RunCommand: "python3 {src}"})

	run, err := d.Run(context.Background(), exec)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !run.MemoryKilled {
		t.Error("expected MemoryKilled to be true when engine reports OomKilled")
	}
	if run.TimedOut {
		t.Error("expected TimedOut to be false for an OOM kill")
	}
}

func TestDriver_Run_ReportsTimeout(t *testing.T) {
	eng := &fakeEngine{runFn: func(ctx context.Context, spec sandboxspec.RunSpec) (sandboxresult.RunResult, error) {
		return sandboxresult.RunResult{ExitCode: -1}, nil
	}}
	d := driver.New(eng)
	exec := newExec(t, model.LanguagePolicy{RunCommand: "python3 {src}"})

	run, err := d.Run(context.Background(), exec)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !run.TimedOut {
		t.Error("expected TimedOut to be true for exit code -1")
	}
	if run.MemoryKilled {
		t.Error("expected MemoryKilled to be false for a timeout")
	}
}

func TestDriver_Run_PropagatesLimitsScaledByPolicy(t *testing.T) {
	var captured sandboxspec.ResourceLimit
	eng := &fakeEngine{runFn: func(ctx context.Context, spec sandboxspec.RunSpec) (sandboxresult.RunResult, error) {
		captured = spec.Limits
		return sandboxresult.RunResult{ExitCode: 0}, nil
	}}
	d := driver.New(eng)
	exec := newExec(t, model.LanguagePolicy{
		RunCommand:       "python3 {src}",
		TimeMultiplier:   3.0,
		MemoryMultiplier: 1.5,
	})
	exec.TimeLimitSec = 2
	exec.MemoryLimitMB = 100

	if _, err := d.Run(context.Background(), exec); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if captured.CPUTimeMs != 6000 {
		t.Errorf("expected CPUTimeMs 6000 (2000*3.0), got %d", captured.CPUTimeMs)
	}
	if captured.MemoryMB != 150 {
		t.Errorf("expected MemoryMB 150 (100*1.5), got %d", captured.MemoryMB)
	}
}

func TestDriver_Run_JavaUsesDeclaredClassName(t *testing.T) {
	var captured []string
	eng := &fakeEngine{runFn: func(ctx context.Context, spec sandboxspec.RunSpec) (sandboxresult.RunResult, error) {
		captured = spec.Cmd
		return sandboxresult.RunResult{ExitCode: 0}, nil
	}}
	d := driver.New(eng)

	workspace := t.TempDir()
	sourceFile := filepath.Join(workspace, "Solution.java")
	if err := os.WriteFile(sourceFile, []byte("class Solution {}"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	exec := &model.Execution{
		ID:            "exec-java",
		Policy:        model.LanguagePolicy{RunCommand: "java -cp {bindir} {class}"},
		WorkspacePath: workspace,
		SourceFile:    sourceFile,
		TimeLimitSec:  2,
		MemoryLimitMB: 128,
	}

	if _, err := d.Run(context.Background(), exec); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	found := false
	for _, arg := range captured {
		if arg == "Solution" {
			found = true
		}
		if arg == "Main" {
			t.Errorf("expected run command to reference the declared class, not Main; got %v", captured)
		}
	}
	if !found {
		t.Errorf("expected run command to include the declared class name Solution, got %v", captured)
	}
}

func TestDriver_Run_SandboxUnavailableWrapsEngineError(t *testing.T) {
	eng := &fakeEngine{runFn: func(ctx context.Context, spec sandboxspec.RunSpec) (sandboxresult.RunResult, error) {
		return sandboxresult.RunResult{}, os.ErrPermission
	}}
	d := driver.New(eng)
	exec := newExec(t, model.LanguagePolicy{RunCommand: "python3 {src}"})

	if _, err := d.Run(context.Background(), exec); err == nil {
		t.Fatal("expected an error when the engine fails")
	}
}
