// Package execution implements the Execution Object (C3): materializing a
// validated Request's files into a per-submission workspace, applying the
// language's filename convention, and owning that workspace's lifetime.
package execution

import (
	"os"
	"path/filepath"

	"codejudge/internal/model"
	appErr "codejudge/pkg/errors"
)

const (
	inputFilename          = "input.txt"
	expectedOutputFilename = "expected_output.txt"
)

// Store creates and destroys per-Execution workspaces under a single root
// directory. Every Execution it creates owns a uniquely named
// subdirectory; nothing is shared across Executions.
type Store struct {
	root string
}

// NewStore creates a Store rooted at dir. The directory is created if
// missing.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, appErr.ValidationError("workspace_root", "required")
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, appErr.Wrapf(err, appErr.InternalServerError, "create workspace root failed")
	}
	return &Store{root: dir}, nil
}

// Root returns the configured workspace root, for the startup sweep.
func (s *Store) Root() string {
	return s.root
}

// Create materializes req's files into a fresh workspace and returns the
// bound Execution. The caller must call Destroy on every exit path.
func (s *Store) Create(id string, req model.Request, pol model.LanguagePolicy) (*model.Execution, error) {
	workspacePath := filepath.Join(s.root, id)
	if err := os.MkdirAll(workspacePath, 0750); err != nil {
		return nil, appErr.Wrapf(err, appErr.InternalServerError, "create workspace failed")
	}

	sourceName := pol.SourceFilename(classNameFromSource(req))
	if sourceName == "" {
		sourceName = filepath.Base(req.SourceFilename)
	}
	sourcePath := filepath.Join(workspacePath, sourceName)
	if err := os.WriteFile(sourcePath, req.SourceCode, 0640); err != nil {
		os.RemoveAll(workspacePath)
		return nil, appErr.Wrapf(err, appErr.InternalServerError, "write source failed")
	}

	expectedPath := filepath.Join(workspacePath, expectedOutputFilename)
	if err := os.WriteFile(expectedPath, req.ExpectedOutput, 0640); err != nil {
		os.RemoveAll(workspacePath)
		return nil, appErr.Wrapf(err, appErr.InternalServerError, "write expected output failed")
	}

	inputPath := ""
	if req.HasInput {
		inputPath = filepath.Join(workspacePath, inputFilename)
		if err := os.WriteFile(inputPath, req.Input, 0640); err != nil {
			os.RemoveAll(workspacePath)
			return nil, appErr.Wrapf(err, appErr.InternalServerError, "write input failed")
		}
	}

	return &model.Execution{
		ID:                 id,
		Request:            req,
		Policy:             pol,
		WorkspacePath:       workspacePath,
		SourceFile:          sourcePath,
		ExpectedOutputFile:  expectedPath,
		InputFile:           inputPath,
		TimeLimitSec:        req.TimeLimitSec,
		MemoryLimitMB:       req.MemoryLimitMB,
		ImageName:           string(pol.Language) + "-" + id,
	}, nil
}

// Destroy recursively removes the Execution's workspace. Safe to call
// more than once; safe to call on a partially created workspace.
func (s *Store) Destroy(exec *model.Execution) error {
	if exec == nil || exec.WorkspacePath == "" {
		return nil
	}
	return os.RemoveAll(exec.WorkspacePath)
}

// classNameFromSource sniffs a Java public class name out of the request's
// declared source filename so Main.java-style renaming still works when a
// caller uploads e.g. "Solution.java". Falls back to the policy's default
// when nothing usable is present.
func classNameFromSource(req model.Request) string {
	if req.Language != model.Java {
		return ""
	}
	base := filepath.Base(req.SourceFilename)
	ext := filepath.Ext(base)
	if ext == "" {
		return ""
	}
	return base[:len(base)-len(ext)]
}
