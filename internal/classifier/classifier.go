// Package classifier implements the Verdict Classifier (C4): it turns a
// BuildResult, a RunResult, and the expected-output bytes into exactly one
// terminal Verdict, in a fixed decision order, and owns the output
// normalization contract that output comparison depends on.
package classifier

import (
	"strings"
	"unicode/utf8"

	"codejudge/internal/model"
	"codejudge/internal/sandbox/driver"
)

// Classify applies the fixed decision order (first match wins):
//  1. build failed -> Compilation Error
//  2. timed out -> Time Limit Exceeded
//  3. OOM-killed, or exit 137 without a timeout -> Out Of Memory
//  4. non-zero exit -> Runtime Error
//  5. normalized stdout equals normalized expected output -> Accepted
//  6. otherwise -> Wrong Answer
func Classify(build driver.BuildResult, run *driver.RunResult, expectedOutput []byte) (model.Verdict, string) {
	if !build.OK {
		return model.CompilationError, strings.TrimSpace(build.Log)
	}

	// run is nil only when the caller skipped the run phase, which never
	// happens once the build succeeds; kept defensive for callers that
	// short-circuit on build failure before constructing a RunResult.
	if run == nil {
		return model.CompilationError, strings.TrimSpace(build.Log)
	}

	if run.TimedOut {
		return model.TimeLimitExceeded, ""
	}
	if run.MemoryKilled || (run.ExitCode == 137 && !run.TimedOut) {
		return model.OutOfMemory, ""
	}
	if run.ExitCode != 0 {
		return model.RuntimeError, strings.TrimSpace(run.Stderr)
	}

	actual := Normalize(run.Stdout)
	expected := Normalize(string(expectedOutput))
	if actual == expected {
		return model.Accepted, run.Stdout
	}
	return model.WrongAnswer, run.Stdout
}

// Normalize applies the fixed output-normalization contract:
//   - decode as UTF-8, replacing invalid sequences with U+FFFD
//   - convert "\r\n" to "\n"
//   - strip a single trailing "\n", if present
//
// It never trims internal whitespace or collapses blank lines, and it is
// idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "�")
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.TrimSuffix(s, "\n")
	return s
}
