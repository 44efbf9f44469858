package lock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
)

const dirMode = 0o755

// FileRunLockRepository implements repositories.RunLockRepository with an
// advisory file lock, so two processes never drive the same workspace.
type FileRunLockRepository struct{}

// NewFileRunLockRepository creates the file-lock based run lock.
func NewFileRunLockRepository() *FileRunLockRepository {
	return &FileRunLockRepository{}
}

func (it *FileRunLockRepository) Acquire(path string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), dirMode); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	fileLock := flock.New(path)
	locked, err := fileLock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire run lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w (lock held on %s)", entities.ErrRunInProgress, path)
	}

	logger.Debugf("Run lock acquired: %s", path)
	return func() {
		if unlockErr := fileLock.Unlock(); unlockErr != nil {
			logger.Warnf("Failed to release run lock %s: %v", path, unlockErr)
			return
		}
		logger.Debugf("Run lock released: %s", path)
	}, nil
}
