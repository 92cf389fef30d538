package blob

import (
	"errors"
	"io/fs"
	"log/slog"
)

// BestEffort records the outcome of an operation whose failure must not
// reach the caller. A missing file is logged at debug, anything else at warn.
func BestEffort(logger *slog.Logger, op, path string, err error) {
	if err == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debug(op+" skipped", "path", path, "error", err)
		return
	}
	logger.Warn(op+" failed", "path", path, "error", err)
}
