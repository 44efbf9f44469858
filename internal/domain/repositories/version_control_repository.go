package repositories

import (
	"context"

	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
)

// VersionControlRepository is the capability surface of the local working copy.
// It is the only place that interprets raw git output: merge results come back
// as entities.MergeOutcome and command failures as *entities.CommandError.
type VersionControlRepository interface {
	// CloneOrOpen clones remoteURL into localPath when the path is absent or
	// empty and opens the existing clone otherwise.
	CloneOrOpen(ctx context.Context, remoteURL, localPath string) (*entities.Workspace, error)

	// Open opens an existing clone and fails when localPath is not a repository.
	Open(ctx context.Context, localPath string) (*entities.Workspace, error)

	// EnsureRemote registers the remote when missing, then fetches it.
	EnsureRemote(ctx context.Context, ws *entities.Workspace, name, url string) error

	// Fetch refreshes an already registered remote.
	Fetch(ctx context.Context, ws *entities.Workspace, remote string) error

	BranchExists(ws *entities.Workspace, name string) (bool, error)
	RemoteBranchExists(ws *entities.Workspace, remote, name string) (bool, error)
	Checkout(ctx context.Context, ws *entities.Workspace, ref string) error
	CheckoutNewBranch(ctx context.Context, ws *entities.Workspace, name, startPoint string) error

	// CheckoutPaths restores the given paths from ref into the index and tree.
	CheckoutPaths(ctx context.Context, ws *entities.Workspace, ref string, paths []string) error

	// Merge never returns a Conflict as an error; the error is reserved for
	// failures to run the merge at all.
	Merge(
		ctx context.Context,
		ws *entities.Workspace,
		ref string,
		opts entities.MergeOptions,
	) (entities.MergeOutcome, error)

	AddAll(ctx context.Context, ws *entities.Workspace) error

	// Commit returns false when there was nothing to commit.
	Commit(ctx context.Context, ws *entities.Workspace, message string) (bool, error)

	Push(ctx context.Context, ws *entities.Workspace, remote, branch string) error

	// AbortMergeIfAny and HardResetAndClean are best-effort: callers log the
	// returned error and carry on.
	AbortMergeIfAny(ctx context.Context, ws *entities.Workspace) error
	HardResetAndClean(ctx context.Context, ws *entities.Workspace) error

	FileExists(ws *entities.Workspace, name string) bool
	WriteFile(ws *entities.Workspace, name, content string) error

	// Diagnostics captures status, file listing and diff for failure reports.
	Diagnostics(ctx context.Context, ws *entities.Workspace) entities.WorkspaceDiagnostics
}
