package engine

import (
	"codejudge/internal/sandbox/security"
	"codejudge/internal/sandbox/spec"
)

// initRequest is the JSON contract the engine sends to the sandbox-init
// helper process over a stdin pipe.
type initRequest struct {
	RunSpec       spec.RunSpec
	Isolation     security.IsolationProfile
	EnableSeccomp bool
	EnableNs      bool
}
