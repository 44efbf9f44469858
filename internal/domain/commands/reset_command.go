package commands

import (
	"context"
	"fmt"
	"path/filepath"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
	"github.com/rios0rios0/upstreamsync/internal/domain/repositories"
)

// Reset is the interface for the reset command.
type Reset interface {
	Execute(ctx context.Context, opts ResetOptions) error
}

// ResetOptions holds runtime options for the reset command.
type ResetOptions struct {
	WorkspaceDir string
	LockFile     string // defaults to the lock file next to the workspace
}

// ResetCommand runs the cleanup path on a workspace left behind by an
// interrupted run: abort the merge in progress, hard reset and clean.
type ResetCommand struct {
	vcs     repositories.VersionControlRepository
	runLock repositories.RunLockRepository
}

// NewResetCommand creates a new ResetCommand.
func NewResetCommand(
	vcs repositories.VersionControlRepository,
	runLock repositories.RunLockRepository,
) *ResetCommand {
	return &ResetCommand{vcs: vcs, runLock: runLock}
}

// Execute refuses to touch a workspace while a run holds its lock.
func (it *ResetCommand) Execute(ctx context.Context, opts ResetOptions) error {
	lockFile := opts.LockFile
	if lockFile == "" {
		lockFile = filepath.Join(filepath.Dir(filepath.Clean(opts.WorkspaceDir)), entities.DefaultLockFile)
	}

	release, err := it.runLock.Acquire(lockFile)
	if err != nil {
		return err
	}
	defer release()

	ws, err := it.vcs.Open(ctx, opts.WorkspaceDir)
	if err != nil {
		return fmt.Errorf("failed to open workspace: %w", err)
	}

	logger.Infof("Resetting workspace %s (branch %q)", ws.Path, ws.Branch)
	if err = cleanWorkspace(ctx, it.vcs, ws); err != nil {
		return err
	}

	logger.Infof("Workspace %s is clean", ws.Path)
	return nil
}
