// Package validator implements the Request Validator (C6): filename
// safety and resource-limit bounds checked before any sandbox work is
// done, so validation failures never consume an admission slot.
package validator

import (
	"regexp"

	"codejudge/internal/model"
	"codejudge/internal/policy"
	appErr "codejudge/pkg/errors"
)

var filenamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+$`)

// Bounds are the configured min/max for a submission's declared limits.
type Bounds struct {
	MinTimeSec    int
	MaxTimeSec    int
	MinMemoryMB   int
	MaxMemoryMB   int
}

// Validator checks a Request against filename, limit, and language rules.
type Validator struct {
	bounds   Bounds
	registry *policy.Registry
}

// New creates a Validator bound to the configured limits and language
// registry.
func New(bounds Bounds, registry *policy.Registry) *Validator {
	return &Validator{bounds: bounds, registry: registry}
}

// Validate returns a *errors.Error (HTTP 400) describing the first
// violation found, or nil if req is acceptable.
func (v *Validator) Validate(req model.Request) (model.LanguagePolicy, error) {
	if _, err := v.registry.Resolve(req.Language); err != nil {
		return model.LanguagePolicy{}, err
	}

	if err := checkFilename("sourceCode", req.SourceFilename); err != nil {
		return model.LanguagePolicy{}, err
	}

	if req.TimeLimitSec < v.bounds.MinTimeSec || req.TimeLimitSec > v.bounds.MaxTimeSec {
		return model.LanguagePolicy{}, appErr.Newf(appErr.InvalidParams,
			"timeLimit must be between %d and %d seconds", v.bounds.MinTimeSec, v.bounds.MaxTimeSec).
			WithDetail("field", "timeLimit")
	}
	if req.MemoryLimitMB < v.bounds.MinMemoryMB || req.MemoryLimitMB > v.bounds.MaxMemoryMB {
		return model.LanguagePolicy{}, appErr.Newf(appErr.InvalidParams,
			"memoryLimit must be between %d and %d MB", v.bounds.MinMemoryMB, v.bounds.MaxMemoryMB).
			WithDetail("field", "memoryLimit")
	}

	return v.registry.Resolve(req.Language)
}

func checkFilename(field, name string) error {
	if !filenamePattern.MatchString(name) {
		return appErr.New(appErr.InvalidParams).
			WithMessagef("%s has an invalid filename: %s", field, name).
			WithDetail("field", field)
	}
	return nil
}
