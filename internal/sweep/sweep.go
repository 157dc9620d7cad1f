// Package sweep implements the startup workspace sweep: on boot, remove
// any workspace subdirectory left over from a prior process that isn't a
// currently-registered in-flight execution. Pure filesystem walk, no
// persistence.
package sweep

import (
	"context"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"codejudge/pkg/utils/logger"
)

// Run walks root and removes every immediate subdirectory whose name is
// not in keep. It is safe to call against a root that does not exist yet.
func Run(ctx context.Context, root string, keep map[string]struct{}) error {
	entries, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return os.MkdirAll(root, 0o755)
	}
	if err != nil {
		return err
	}

	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, ok := keep[entry.Name()]; ok {
			continue
		}
		path := filepath.Join(root, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			logger.Error(ctx, "sweep: remove stale workspace failed", zap.String("path", path), zap.Error(err))
			continue
		}
		removed++
	}
	logger.Info(ctx, "sweep: workspace root cleaned", zap.String("root", root), zap.Int("removed", removed))
	return nil
}
