package policy

import (
	"codejudge/internal/sandbox/security"
	appErr "codejudge/pkg/errors"
)

// StaticProfileResolver resolves sandbox isolation profiles by name from a
// fixed in-memory table, the way the teacher's LocalRepository resolves
// task profiles — simplified here to one profile per name instead of one
// per (language, taskType) pair, since this judge has no subtasks.
type StaticProfileResolver struct {
	profiles map[string]security.IsolationProfile
}

// NewStaticProfileResolver builds a resolver from a name->profile table.
func NewStaticProfileResolver(profiles map[string]security.IsolationProfile) *StaticProfileResolver {
	return &StaticProfileResolver{profiles: profiles}
}

// Resolve implements engine.ProfileResolver.
func (r *StaticProfileResolver) Resolve(profile string) (security.IsolationProfile, error) {
	iso, ok := r.profiles[profile]
	if !ok {
		return security.IsolationProfile{}, appErr.New(appErr.NotFound).WithMessagef("sandbox profile not found: %s", profile)
	}
	return iso, nil
}
