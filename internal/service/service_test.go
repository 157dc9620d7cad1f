package service_test

import (
	"context"
	"os"
	"testing"

	"codejudge/internal/admission"
	"codejudge/internal/execution"
	"codejudge/internal/model"
	"codejudge/internal/policy"
	"codejudge/internal/sandbox/driver"
	sandboxresult "codejudge/internal/sandbox/result"
	sandboxspec "codejudge/internal/sandbox/spec"
	"codejudge/internal/service"
	"codejudge/internal/validator"
	appErr "codejudge/pkg/errors"
)

// writeOutputs writes stdout/stderr to the paths the driver will read the
// run's captured output back from, the way the real sandbox engine does.
func writeOutputs(t *testing.T, spec sandboxspec.RunSpec, stdout, stderr string) {
	t.Helper()
	if spec.StdoutPath != "" {
		if err := os.WriteFile(spec.StdoutPath, []byte(stdout), 0o644); err != nil {
			t.Fatalf("write stdout: %v", err)
		}
	}
	if spec.StderrPath != "" {
		if err := os.WriteFile(spec.StderrPath, []byte(stderr), 0o644); err != nil {
			t.Fatalf("write stderr: %v", err)
		}
	}
}

type fakeEngine struct {
	runFn func(ctx context.Context, spec sandboxspec.RunSpec) (sandboxresult.RunResult, error)
}

func (f *fakeEngine) Run(ctx context.Context, spec sandboxspec.RunSpec) (sandboxresult.RunResult, error) {
	return f.runFn(ctx, spec)
}

func (f *fakeEngine) KillExecution(ctx context.Context, executionID string) error {
	return nil
}

func newService(t *testing.T, eng *fakeEngine, maxRequests int) *service.Service {
	t.Helper()
	registry := policy.NewRegistry()
	registry.Register(model.LanguagePolicy{
		Language:       model.Python,
		RunCommand:     "python3 {src}",
		TimeMultiplier: 1,
	})

	store, err := execution.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	v := validator.New(validator.Bounds{MinTimeSec: 1, MaxTimeSec: 10, MinMemoryMB: 16, MaxMemoryMB: 512}, registry)

	return service.New(service.Config{
		Validator: v,
		Registry:  registry,
		Store:     store,
		Admission: admission.New(maxRequests),
		Driver:    driver.New(eng),
	})
}

func baseRequest() model.Request {
	return model.Request{
		Language:       model.Python,
		SourceCode:     []byte("print('hi')"),
		SourceFilename: "main.py",
		ExpectedOutput: []byte("hi\n"),
		TimeLimitSec:   5,
		MemoryLimitMB:  128,
	}
}

func TestJudge_Accepted(t *testing.T) {
	eng := &fakeEngine{runFn: func(ctx context.Context, spec sandboxspec.RunSpec) (sandboxresult.RunResult, error) {
		writeOutputs(t, spec, "hi\n", "")
		return sandboxresult.RunResult{ExitCode: 0}, nil
	}}
	svc := newService(t, eng, 4)

	resp, err := svc.Judge(context.Background(), baseRequest())
	if err != nil {
		t.Fatalf("Judge returned error: %v", err)
	}
	if resp.Status != string(model.Accepted) {
		t.Errorf("expected Accepted, got %q", resp.Status)
	}
	if resp.StatusCode != model.Accepted.StatusCode() {
		t.Errorf("expected StatusCode %d, got %d", model.Accepted.StatusCode(), resp.StatusCode)
	}
	if resp.Output != "hi\n" {
		t.Errorf("expected output hi\\n, got %q", resp.Output)
	}
	if resp.Error != "" {
		t.Errorf("expected empty error on Accepted, got %q", resp.Error)
	}
}

func TestJudge_WrongAnswer(t *testing.T) {
	eng := &fakeEngine{runFn: func(ctx context.Context, spec sandboxspec.RunSpec) (sandboxresult.RunResult, error) {
		writeOutputs(t, spec, "bye\n", "")
		return sandboxresult.RunResult{ExitCode: 0}, nil
	}}
	svc := newService(t, eng, 4)

	resp, err := svc.Judge(context.Background(), baseRequest())
	if err != nil {
		t.Fatalf("Judge returned error: %v", err)
	}
	if resp.Status != string(model.WrongAnswer) {
		t.Errorf("expected Wrong Answer, got %q", resp.Status)
	}
	if resp.Output != "bye\n" {
		t.Errorf("expected actual output bye\\n under Output, got %q", resp.Output)
	}
	if resp.Error != "" {
		t.Errorf("expected empty Error on Wrong Answer, got %q", resp.Error)
	}
}

func TestJudge_ValidationFailure(t *testing.T) {
	eng := &fakeEngine{runFn: func(ctx context.Context, spec sandboxspec.RunSpec) (sandboxresult.RunResult, error) {
		t.Fatal("engine should not run for an invalid request")
		return sandboxresult.RunResult{}, nil
	}}
	svc := newService(t, eng, 4)

	req := baseRequest()
	req.TimeLimitSec = 999

	_, err := svc.Judge(context.Background(), req)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if appErr.GetCode(err) != appErr.InvalidParams {
		t.Fatalf("expected InvalidParams, got %v", appErr.GetCode(err))
	}
}

func TestJudge_Throttled(t *testing.T) {
	eng := &fakeEngine{runFn: func(ctx context.Context, spec sandboxspec.RunSpec) (sandboxresult.RunResult, error) {
		writeOutputs(t, spec, "hi\n", "")
		return sandboxresult.RunResult{ExitCode: 0}, nil
	}}
	svc := newService(t, eng, 0)

	_, err := svc.Judge(context.Background(), baseRequest())
	if err == nil {
		t.Fatal("expected throttled error with a zero-capacity controller")
	}
	if appErr.GetCode(err) != appErr.JudgeQueueFull {
		t.Fatalf("expected JudgeQueueFull, got %v", appErr.GetCode(err))
	}
}

func TestJudge_RuntimeError(t *testing.T) {
	eng := &fakeEngine{runFn: func(ctx context.Context, spec sandboxspec.RunSpec) (sandboxresult.RunResult, error) {
		writeOutputs(t, spec, "", "boom")
		return sandboxresult.RunResult{ExitCode: 1}, nil
	}}
	svc := newService(t, eng, 4)

	resp, err := svc.Judge(context.Background(), baseRequest())
	if err != nil {
		t.Fatalf("Judge returned error: %v", err)
	}
	if resp.Status != string(model.RuntimeError) {
		t.Errorf("expected Runtime Error, got %q", resp.Status)
	}
	if resp.Error != "boom" {
		t.Errorf("expected error payload boom, got %q", resp.Error)
	}
}
