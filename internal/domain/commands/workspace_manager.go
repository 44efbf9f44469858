package commands

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
	"github.com/rios0rios0/upstreamsync/internal/domain/repositories"
)

// WorkspaceManager owns the single local clone shared by every pair of a run.
type WorkspaceManager struct {
	vcs repositories.VersionControlRepository
}

// NewWorkspaceManager creates a WorkspaceManager on top of the given adapter.
func NewWorkspaceManager(vcs repositories.VersionControlRepository) *WorkspaceManager {
	return &WorkspaceManager{vcs: vcs}
}

// Prepare clones or opens the downstream repository under root, named after the
// upstream repository, and registers the upstream remote. Leftovers of an
// interrupted run are cleaned up first. Every error is fatal for the run.
func (it *WorkspaceManager) Prepare(
	ctx context.Context,
	root string,
	downstream, upstream entities.RepositoryRef,
) (*entities.Workspace, error) {
	path := filepath.Join(root, upstream.Name)

	ws, err := it.vcs.CloneOrOpen(ctx, downstream.CloneURL, path)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare workspace: %w", err)
	}

	if cleanErr := cleanWorkspace(ctx, it.vcs, ws); cleanErr != nil {
		logger.Warnf("Failed to clean up workspace %s: %v", ws.Path, cleanErr)
	}

	if err = it.vcs.Fetch(ctx, ws, entities.OriginRemote); err != nil {
		return nil, fmt.Errorf("failed to prepare workspace: %w", err)
	}
	if err = it.vcs.EnsureRemote(ctx, ws, entities.UpstreamRemote, upstream.CloneURL); err != nil {
		return nil, fmt.Errorf("failed to prepare workspace: %w", err)
	}

	logger.Infof("Workspace ready at %s", ws.Path)
	return ws, nil
}

// cleanWorkspace aborts any merge in progress and discards every local change.
// Both steps always run; callers decide whether the joined error matters.
func cleanWorkspace(ctx context.Context, vcs repositories.VersionControlRepository, ws *entities.Workspace) error {
	var errs []error
	if err := vcs.AbortMergeIfAny(ctx, ws); err != nil {
		errs = append(errs, fmt.Errorf("failed to abort merge: %w", err))
	}
	if err := vcs.HardResetAndClean(ctx, ws); err != nil {
		errs = append(errs, fmt.Errorf("failed to reset workspace: %w", err))
	}
	return errors.Join(errs...)
}
