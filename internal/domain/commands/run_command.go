package commands

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
	"github.com/rios0rios0/upstreamsync/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/upstreamsync/internal/infrastructure/repositories"
)

// Run is the interface for the run command.
type Run interface {
	Execute(ctx context.Context, settings *entities.Settings, opts RunOptions) error
}

// RunOptions holds runtime options for a single run.
type RunOptions struct {
	Verbose bool
}

// RunCommand orchestrates a synchronization run:
// lock -> resolve repositories -> prepare workspace -> synchronize every pair in order.
type RunCommand struct {
	hostingRegistry *infraRepos.HostingRegistry
	vcs             repositories.VersionControlRepository
	regenerator     repositories.ArtifactRegeneratorRepository
	runLock         repositories.RunLockRepository
}

// NewRunCommand creates a new RunCommand.
func NewRunCommand(
	hostingRegistry *infraRepos.HostingRegistry,
	vcs repositories.VersionControlRepository,
	regenerator repositories.ArtifactRegeneratorRepository,
	runLock repositories.RunLockRepository,
) *RunCommand {
	return &RunCommand{
		hostingRegistry: hostingRegistry,
		vcs:             vcs,
		regenerator:     regenerator,
		runLock:         runLock,
	}
}

// Execute runs every configured pair. Setup failures abort the run; a failed
// pair only aborts it when settings.ExitOnError is set. Cancelling ctx stops the
// run between pairs, never in the middle of one.
func (it *RunCommand) Execute(ctx context.Context, settings *entities.Settings, opts RunOptions) error {
	if opts.Verbose {
		logger.SetLevel(logger.DebugLevel)
	}

	release, err := it.runLock.Acquire(settings.LockFile)
	if err != nil {
		return err
	}
	defer release()

	hosting, err := it.hostingRegistry.Get(settings.Provider, settings.Token, settings.BaseURL, settings.CloneProtocol)
	if err != nil {
		return fmt.Errorf("failed to initialize provider %q: %w", settings.Provider, err)
	}

	upstream, err := hosting.GetRepository(ctx, settings.Upstream)
	if err != nil {
		return fmt.Errorf("failed to resolve upstream repository %q: %w", settings.Upstream, err)
	}
	downstream, err := hosting.GetRepository(ctx, settings.Downstream)
	if err != nil {
		return fmt.Errorf("failed to resolve downstream repository %q: %w", settings.Downstream, err)
	}
	logger.Infof("Synchronizing %s into %s on %s", upstream.FullName, downstream.FullName, hosting.Name())

	ws, err := NewWorkspaceManager(it.vcs).Prepare(ctx, settings.WorkspaceRoot, downstream, upstream)
	if err != nil {
		return err
	}

	synchronizer := NewBranchSynchronizer(
		it.vcs, it.regenerator, NewFailureReporter(hosting, it.vcs), settings, upstream, downstream,
	)

	processed, pushed, failed := 0, 0, 0
	for _, pair := range settings.Branches {
		if ctx.Err() != nil {
			logger.Warnf("Run interrupted, %d of %d pairs left unprocessed", len(settings.Branches)-processed, len(settings.Branches))
			return fmt.Errorf("run interrupted: %w", context.Cause(ctx))
		}

		result := synchronizer.Sync(context.WithoutCancel(ctx), ws, pair)
		processed++
		if result.Pushes > 0 {
			pushed++
		}
		if result.Failed() {
			failed++
			if settings.ExitOnError {
				return fmt.Errorf("failed to synchronize %s: %w", pair, result.Err)
			}
		}
	}

	logger.Infof("Run complete: %d pairs processed, %d pushed, %d failed", processed, pushed, failed)
	return nil
}
