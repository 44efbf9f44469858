package repositories

// RunLockRepository guarantees a single synchronization run per workspace.
type RunLockRepository interface {
	// Acquire takes the lock at path without blocking and returns the function
	// releasing it. A lock held by another process yields entities.ErrRunInProgress.
	Acquire(path string) (func(), error)
}
