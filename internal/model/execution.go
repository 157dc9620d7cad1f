package model

// Execution is the per-request unit owned for the duration of judging: a
// materialized workspace, resource limits, and the language binding it was
// created from. It is created on admission and torn down on every exit
// path (success, throttle, error, panic).
type Execution struct {
	ID   string
	Request Request
	Policy  LanguagePolicy

	WorkspacePath      string
	SourceFile         string
	ExpectedOutputFile string
	InputFile          string // empty when the request carries no stdin

	TimeLimitSec  int
	MemoryLimitMB int

	// ImageName identifies the built sandbox artifact; derived from ID and
	// Language so compiled artifacts from different executions never
	// collide, even if retained past the execution's lifetime.
	ImageName string
}
