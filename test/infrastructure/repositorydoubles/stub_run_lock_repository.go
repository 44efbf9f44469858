//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/rios0rios0/upstreamsync/internal/domain/repositories"
)

// StubRunLockRepository is a stub implementation of repositories.RunLockRepository.
type StubRunLockRepository struct {
	AcquireErr    error
	AcquiredPaths []string
	ReleaseCount  int
}

var _ repositories.RunLockRepository = (*StubRunLockRepository)(nil)

func (s *StubRunLockRepository) Acquire(path string) (func(), error) {
	s.AcquiredPaths = append(s.AcquiredPaths, path)
	if s.AcquireErr != nil {
		return nil, s.AcquireErr
	}
	return func() { s.ReleaseCount++ }, nil
}
