//go:build unit

package lock_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
	"github.com/rios0rios0/upstreamsync/internal/infrastructure/repositories/lock"
)

func TestFileRunLockRepository(t *testing.T) {
	t.Parallel()

	t.Run("should refuse a second run while the lock is held", func(t *testing.T) {
		t.Parallel()

		// given
		path := filepath.Join(t.TempDir(), "nested", ".upstreamsync.lock")
		repo := lock.NewFileRunLockRepository()
		release, err := repo.Acquire(path)
		require.NoError(t, err)
		t.Cleanup(release)

		// when
		_, err = repo.Acquire(path)

		// then
		require.ErrorIs(t, err, entities.ErrRunInProgress)
		assert.Contains(t, err.Error(), path)
	})

	t.Run("should allow a new run once the lock is released", func(t *testing.T) {
		t.Parallel()

		// given
		path := filepath.Join(t.TempDir(), ".upstreamsync.lock")
		repo := lock.NewFileRunLockRepository()
		release, err := repo.Acquire(path)
		require.NoError(t, err)
		release()

		// when
		again, err := repo.Acquire(path)

		// then
		require.NoError(t, err)
		again()
	})
}
