package commands

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
	"github.com/rios0rios0/upstreamsync/internal/domain/repositories"
)

const sentinelContent = "True"

// BranchSynchronizer drives one branch pair through the synchronization states:
// ACQUIRE_BRANCH, OVERLAY, PUSH_OVERLAY, UPSTREAM_MERGE, PUSH_UPSTREAM and DONE,
// with FAILED reachable from any of them.
type BranchSynchronizer struct {
	vcs         repositories.VersionControlRepository
	regenerator repositories.ArtifactRegeneratorRepository
	reporter    *FailureReporter
	settings    *entities.Settings
	upstream    entities.RepositoryRef
	downstream  entities.RepositoryRef
}

// NewBranchSynchronizer creates a synchronizer for the given repositories.
// The reporter is only used when settings.NoIssue is false and may be nil otherwise.
func NewBranchSynchronizer(
	vcs repositories.VersionControlRepository,
	regenerator repositories.ArtifactRegeneratorRepository,
	reporter *FailureReporter,
	settings *entities.Settings,
	upstream, downstream entities.RepositoryRef,
) *BranchSynchronizer {
	return &BranchSynchronizer{
		vcs:         vcs,
		regenerator: regenerator,
		reporter:    reporter,
		settings:    settings,
		upstream:    upstream,
		downstream:  downstream,
	}
}

// Sync runs the pair to completion and never returns an error: a failure is
// reported, the workspace is cleaned up and the result is marked failed.
func (it *BranchSynchronizer) Sync(
	ctx context.Context,
	ws *entities.Workspace,
	pair entities.BranchPair,
) *entities.PairResult {
	result := &entities.PairResult{Pair: pair}

	if err := it.run(ctx, ws, result); err != nil {
		it.fail(ctx, ws, result, err)
	}

	it.enter(result, entities.StateDone)
	return result
}

func (it *BranchSynchronizer) run(ctx context.Context, ws *entities.Workspace, result *entities.PairResult) error {
	it.enter(result, entities.StateAcquireBranch)
	if err := it.acquireBranch(ctx, ws, result.Pair); err != nil {
		return err
	}

	if it.settings.OverlayBranch != "" {
		it.enter(result, entities.StateOverlay)
		committed, err := it.mergeOverlay(ctx, ws, result)
		if err != nil {
			return err
		}
		if committed {
			it.enter(result, entities.StatePushOverlay)
			if err = it.push(ctx, ws, result); err != nil {
				return err
			}
		}
	}

	it.enter(result, entities.StateUpstreamMerge)
	committed, err := it.mergeUpstream(ctx, ws, result)
	if err != nil || !committed {
		return err
	}

	it.enter(result, entities.StatePushUpstream)
	return it.push(ctx, ws, result)
}

func (it *BranchSynchronizer) enter(result *entities.PairResult, state entities.SyncState) {
	result.Visit(state)
	logger.Infof("[%s] %s", result.Pair, state)
}

// acquireBranch checks out the downstream branch. A branch missing locally is
// tracked from origin when it exists there and started from upstream otherwise.
func (it *BranchSynchronizer) acquireBranch(
	ctx context.Context,
	ws *entities.Workspace,
	pair entities.BranchPair,
) error {
	exists, err := it.vcs.BranchExists(ws, pair.Downstream)
	if err != nil {
		return fmt.Errorf("failed to acquire branch %q: %w", pair.Downstream, err)
	}
	if exists {
		if err = it.vcs.Checkout(ctx, ws, pair.Downstream); err != nil {
			return fmt.Errorf("failed to acquire branch %q: %w", pair.Downstream, err)
		}
		return nil
	}

	startPoint := entities.UpstreamRemote + "/" + pair.Upstream
	onOrigin, err := it.vcs.RemoteBranchExists(ws, entities.OriginRemote, pair.Downstream)
	if err != nil {
		return fmt.Errorf("failed to acquire branch %q: %w", pair.Downstream, err)
	}
	if onOrigin {
		startPoint = entities.OriginRemote + "/" + pair.Downstream
	}

	logger.Infof("Creating branch %s from %s", pair.Downstream, startPoint)
	if err = it.vcs.CheckoutNewBranch(ctx, ws, pair.Downstream, startPoint); err != nil {
		return fmt.Errorf("failed to acquire branch %q: %w", pair.Downstream, err)
	}
	return nil
}

// mergeOverlay squash-merges the overlay branch with its side winning every
// conflict, then records the sentinel in the same commit. It reports whether a
// commit was made.
func (it *BranchSynchronizer) mergeOverlay(
	ctx context.Context,
	ws *entities.Workspace,
	result *entities.PairResult,
) (bool, error) {
	pair := result.Pair
	overlayRef := entities.OriginRemote + "/" + it.settings.OverlayBranch
	sentinel := it.settings.SentinelName()

	if it.vcs.FileExists(ws, sentinel) && !it.settings.ForceOverlay(pair.Downstream) {
		logger.Infof("%s already merged into %s, skipping", overlayRef, pair.Downstream)
		noOp := entities.NoOp()
		result.OverlayOutcome = &noOp
		return false, nil
	}

	outcome, err := it.vcs.Merge(ctx, ws, overlayRef, entities.MergeOptions{
		AllowUnrelatedHistories: true,
		Squash:                  true,
		Strategy:                "recursive",
		StrategyOption:          "theirs",
	})
	if err != nil {
		return false, fmt.Errorf("failed to merge %s: %w", overlayRef, err)
	}
	result.OverlayOutcome = &outcome

	switch outcome.Status {
	case entities.MergeConflict:
		return false, fmt.Errorf("%w merging %s: %w", entities.ErrMergeConflict, overlayRef, outcome.Failure)
	case entities.MergeNoOp:
		logger.Infof("Nothing to do, %s has no changes not present in %s", overlayRef, pair.Downstream)
		return false, nil
	case entities.MergeApplied:
	}

	if err = it.vcs.WriteFile(ws, sentinel, sentinelContent); err != nil {
		return false, err
	}
	if err = it.vcs.AddAll(ctx, ws); err != nil {
		return false, fmt.Errorf("failed to stage overlay merge: %w", err)
	}

	message := fmt.Sprintf("Merged %s and added sentinel", overlayRef)
	committed, err := it.vcs.Commit(ctx, ws, message)
	if err != nil {
		return false, fmt.Errorf("failed to commit overlay merge: %w", err)
	}
	if committed {
		logger.Info(message)
	}
	return committed, nil
}

// mergeUpstream merges the upstream branch without committing, regenerates the
// artifacts and restores the downstream-owned paths so everything lands in a
// single merge commit. It reports whether a commit was made.
func (it *BranchSynchronizer) mergeUpstream(
	ctx context.Context,
	ws *entities.Workspace,
	result *entities.PairResult,
) (bool, error) {
	pair := result.Pair
	upstreamRef := entities.UpstreamRemote + "/" + pair.Upstream

	outcome, err := it.vcs.Merge(ctx, ws, upstreamRef, entities.MergeOptions{NoCommit: true, NoFastForward: true})
	if err != nil {
		return false, fmt.Errorf("failed to merge %s: %w", upstreamRef, err)
	}
	result.UpstreamOutcome = &outcome

	switch outcome.Status {
	case entities.MergeConflict:
		return false, fmt.Errorf("%w merging %s: %w", entities.ErrMergeConflict, upstreamRef, outcome.Failure)
	case entities.MergeNoOp:
		logger.Infof("Nothing to do, %s has no changes not present in %s", upstreamRef, pair.Downstream)
		return false, nil
	case entities.MergeApplied:
	}

	if commands := it.settings.RegenerateCommands(); len(commands) > 0 {
		if err = it.regenerator.Regenerate(ctx, ws, commands); err != nil {
			return false, fmt.Errorf("%w while regenerating artifacts: %w", entities.ErrMergeConflict, err)
		}
	}

	if it.settings.RestoreFrom != "" && len(it.settings.RestorePaths) > 0 {
		if err = it.vcs.CheckoutPaths(ctx, ws, it.settings.RestoreFrom, it.settings.RestorePaths); err != nil {
			return false, fmt.Errorf("failed to restore %v from %s: %w", it.settings.RestorePaths, it.settings.RestoreFrom, err)
		}
	}

	if err = it.vcs.AddAll(ctx, ws); err != nil {
		return false, fmt.Errorf("failed to stage upstream merge: %w", err)
	}

	message := fmt.Sprintf("Merge remote-tracking branch '%s' into %s", upstreamRef, pair.Downstream)
	committed, err := it.vcs.Commit(ctx, ws, message)
	if err != nil {
		return false, fmt.Errorf("failed to commit upstream merge: %w", err)
	}
	if !committed {
		logger.Infof("Nothing to do, merging %s left %s unchanged", upstreamRef, pair.Downstream)
		return false, nil
	}
	logger.Info(message)
	return true, nil
}

func (it *BranchSynchronizer) push(ctx context.Context, ws *entities.Workspace, result *entities.PairResult) error {
	branch := result.Pair.Downstream
	if it.settings.NoPush {
		logger.Infof("Not pushing %s (push disabled)", branch)
		return nil
	}

	if err := it.vcs.Push(ctx, ws, entities.OriginRemote, branch); err != nil {
		return fmt.Errorf("failed to push %q: %w", branch, err)
	}
	result.Pushes++
	logger.Infof("Successfully pushed %s to %s", branch, it.downstream.TreeURL(branch))
	return nil
}

// fail reports the error and restores a clean workspace for the next pair.
// Neither step can make the pair fail harder, so their errors are only logged.
func (it *BranchSynchronizer) fail(
	ctx context.Context,
	ws *entities.Workspace,
	result *entities.PairResult,
	err error,
) {
	result.Err = err
	it.enter(result, entities.StateFailed)
	logger.Errorf("[%s] %v", result.Pair, err)

	if it.settings.NoIssue || it.reporter == nil {
		logger.Infof("Not filing an issue for %s (issue filing disabled)", result.Pair)
	} else {
		report, reportErr := it.reporter.Report(ctx, FailureReport{
			Err:        err,
			Workspace:  ws,
			Upstream:   it.upstream,
			Downstream: it.downstream,
			Pair:       result.Pair,
			Assignees:  it.settings.Assignees,
		})
		if reportErr != nil {
			logger.Errorf("Failed to file an issue for %s: %v", result.Pair, reportErr)
		} else {
			result.IssueURL = report.URL
		}
	}

	if cleanErr := cleanWorkspace(ctx, it.vcs, ws); cleanErr != nil {
		logger.Warnf("Failed to clean up workspace %s: %v", ws.Path, cleanErr)
	}
}
