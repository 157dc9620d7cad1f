// Package service is the judging pipeline's composition root: it wires
// the Request Validator, Language Policy registry, Execution workspace
// store, Admission Controller, Sandbox Driver, and Verdict Classifier
// into one synchronous Judge call.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"codejudge/internal/admission"
	"codejudge/internal/audit"
	"codejudge/internal/classifier"
	"codejudge/internal/execution"
	"codejudge/internal/metrics"
	"codejudge/internal/model"
	"codejudge/internal/policy"
	"codejudge/internal/retention"
	"codejudge/internal/sandbox/driver"
	"codejudge/internal/validator"
	appErr "codejudge/pkg/errors"
	"codejudge/pkg/utils/logger"
)

// Response is the pipeline's terminal output, matching spec.md §6's HTTP
// JSON body one-to-one.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Status     string `json:"status"`
	Output     string `json:"output,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Config aggregates the pipeline's dependencies. Ceiling, Archiver and
// Auditor are optional: a nil value disables that enrichment without
// changing the core pipeline's behavior.
type Config struct {
	Validator *validator.Validator
	Registry  *policy.Registry
	Store     *execution.Store
	Admission *admission.Controller
	Ceiling   *admission.DistributedCeiling
	Driver    *driver.Driver
	Archiver  *retention.Archiver
	Auditor   *audit.Publisher
}

// Service runs one submission through the full judging pipeline.
type Service struct {
	cfg Config
}

// New builds a Service from its wired dependencies.
func New(cfg Config) *Service {
	return &Service{cfg: cfg}
}

// Judge validates req, admits it, builds and runs the submission, and
// classifies the outcome. It never returns a 5xx-worthy error for a
// submission-caused failure: those are folded into the Response as a
// non-Accepted verdict, per spec.md §7.
func (s *Service) Judge(ctx context.Context, req model.Request) (Response, error) {
	pol, err := s.cfg.Validator.Validate(req)
	if err != nil {
		return Response{}, err
	}

	if s.cfg.Ceiling != nil && !s.cfg.Ceiling.Allow(ctx) {
		return Response{}, admission.ErrThrottled()
	}
	release, ok := s.cfg.Admission.TryAcquire()
	if !ok {
		return Response{}, admission.ErrThrottled()
	}
	defer release()

	exec, err := s.cfg.Store.Create(generateID(), req, pol)
	if err != nil {
		return Response{}, appErr.Wrap(err, appErr.JudgeSystemError)
	}
	defer func() {
		if rmErr := s.cfg.Store.Destroy(exec); rmErr != nil {
			logger.Error(ctx, "service: destroy workspace failed", zap.String("executionID", exec.ID), zap.Error(rmErr))
		}
	}()

	start := time.Now()

	build, err := s.cfg.Driver.Build(ctx, exec)
	if err != nil {
		return Response{}, err
	}

	var run *driver.RunResult
	if build.OK {
		runRes, err := s.cfg.Driver.Run(ctx, exec)
		if err != nil {
			return Response{}, err
		}
		run = &runRes
	}

	verdict, payload := classifier.Classify(build, run, req.ExpectedOutput)
	durationMs := time.Since(start).Milliseconds()

	metrics.RecordJudgment(string(req.Language), string(verdict), time.Since(start).Seconds())
	if s.cfg.Auditor != nil {
		s.cfg.Auditor.Publish(ctx, audit.EventFromVerdict(exec.ID, req.Language, verdict, durationMs))
	}
	if s.cfg.Archiver != nil {
		var stdout, stderr string
		if run != nil {
			stdout, stderr = run.Stdout, run.Stderr
		}
		s.cfg.Archiver.Archive(ctx, exec.ID, []byte(build.Log), []byte(stdout), []byte(stderr))
	}

	resp := Response{StatusCode: verdict.StatusCode(), Status: string(verdict)}
	if verdict == model.Accepted || verdict == model.WrongAnswer {
		resp.Output = payload
	} else {
		resp.Error = payload
	}
	return resp, nil
}

func generateID() string {
	return uuid.NewString()
}
