package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
	"github.com/rios0rios0/upstreamsync/internal/infrastructure/repositories/shell"
)

const (
	dirMode  = 0o755
	fileMode = 0o644

	botName  = "upstreamsync[bot]"
	botEmail = "upstreamsync[bot]@users.noreply.github.com"
)

// noOpMarkers are the phrases git prints when a merge or commit has nothing to do.
// Some of them come with a non-zero exit status.
var noOpMarkers = []string{ //nolint:gochecknoglobals // read-only table
	"Already up to date",
	"Already up-to-date",
	"nothing to commit",
}

// GitVersionControlRepository implements repositories.VersionControlRepository.
// Repository inspection goes through go-git; everything that mutates the tree or
// talks to a remote shells out to git so the user's credential setup applies.
type GitVersionControlRepository struct {
	runner shell.Runner
}

// NewGitVersionControlRepository creates the adapter backed by the git binary.
func NewGitVersionControlRepository() *GitVersionControlRepository {
	return NewGitVersionControlRepositoryWithRunner(shell.NewExecRunner("GIT_TERMINAL_PROMPT=0"))
}

// NewGitVersionControlRepositoryWithRunner creates the adapter with a custom runner.
func NewGitVersionControlRepositoryWithRunner(runner shell.Runner) *GitVersionControlRepository {
	return &GitVersionControlRepository{runner: runner}
}

func (it *GitVersionControlRepository) git(
	ctx context.Context,
	ws *entities.Workspace,
	args ...string,
) (shell.RunResult, error) {
	return it.runner.Run(ctx, ws.Path, append([]string{"git"}, args...)...)
}

func (it *GitVersionControlRepository) CloneOrOpen(
	ctx context.Context,
	remoteURL, localPath string,
) (*entities.Workspace, error) {
	path, err := filepath.Abs(localPath)
	if err != nil {
		return nil, fmt.Errorf("invalid workspace path %q: %w", localPath, err)
	}

	empty, err := isAbsentOrEmpty(path)
	if err != nil {
		return nil, err
	}

	if empty {
		logger.Infof("Cloning %s into %s", remoteURL, path)
		if mkErr := os.MkdirAll(filepath.Dir(path), dirMode); mkErr != nil {
			return nil, fmt.Errorf("failed to create %s: %w", filepath.Dir(path), mkErr)
		}
		if _, cloneErr := it.runner.Run(ctx, filepath.Dir(path), "git", "clone", remoteURL, path); cloneErr != nil {
			return nil, fmt.Errorf("failed to clone %s: %w", remoteURL, cloneErr)
		}
	} else {
		logger.Infof("Using existing clone at %s", path)
	}

	return it.Open(ctx, path)
}

func (it *GitVersionControlRepository) Open(ctx context.Context, localPath string) (*entities.Workspace, error) {
	path, err := filepath.Abs(localPath)
	if err != nil {
		return nil, fmt.Errorf("invalid workspace path %q: %w", localPath, err)
	}

	repo, err := gogit.PlainOpen(path)
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%s is not a git repository", path)
		}
		return nil, fmt.Errorf("failed to open repository at %s: %w", path, err)
	}

	ws := &entities.Workspace{Path: path, Branch: currentBranch(repo)}
	it.ensureIdentity(ctx, ws)
	return ws, nil
}

// ensureIdentity sets a bot identity on the clone when git has none configured,
// otherwise every commit would fail.
func (it *GitVersionControlRepository) ensureIdentity(ctx context.Context, ws *entities.Workspace) {
	for key, value := range map[string]string{"user.name": botName, "user.email": botEmail} {
		if _, err := it.git(ctx, ws, "config", key); err == nil {
			continue
		}
		if _, err := it.git(ctx, ws, "config", key, value); err != nil {
			logger.Warnf("Failed to set %s on %s: %v", key, ws.Path, err)
		}
	}
}

func (it *GitVersionControlRepository) EnsureRemote(
	ctx context.Context,
	ws *entities.Workspace,
	name, url string,
) error {
	repo, err := gogit.PlainOpen(ws.Path)
	if err != nil {
		return fmt.Errorf("failed to open repository at %s: %w", ws.Path, err)
	}

	_, err = repo.Remote(name)
	switch {
	case errors.Is(err, gogit.ErrRemoteNotFound):
		logger.Infof("Adding remote %q (%s)", name, url)
		//nolint:exhaustruct // go-git fills in the default fetch refspec
		if _, createErr := repo.CreateRemote(&config.RemoteConfig{Name: name, URLs: []string{url}}); createErr != nil {
			return fmt.Errorf("failed to add remote %q: %w", name, createErr)
		}
	case err != nil:
		return fmt.Errorf("failed to look up remote %q: %w", name, err)
	}

	return it.Fetch(ctx, ws, name)
}

func (it *GitVersionControlRepository) Fetch(ctx context.Context, ws *entities.Workspace, remote string) error {
	logger.Infof("Fetching %s", remote)
	if _, err := it.git(ctx, ws, "fetch", "--prune", remote); err != nil {
		return fmt.Errorf("failed to fetch %q: %w", remote, err)
	}
	return nil
}

func (it *GitVersionControlRepository) BranchExists(ws *entities.Workspace, name string) (bool, error) {
	return referenceExists(ws, plumbing.NewBranchReferenceName(name))
}

func (it *GitVersionControlRepository) RemoteBranchExists(
	ws *entities.Workspace,
	remote, name string,
) (bool, error) {
	return referenceExists(ws, plumbing.NewRemoteReferenceName(remote, name))
}

func referenceExists(ws *entities.Workspace, name plumbing.ReferenceName) (bool, error) {
	repo, err := gogit.PlainOpen(ws.Path)
	if err != nil {
		return false, fmt.Errorf("failed to open repository at %s: %w", ws.Path, err)
	}

	_, err = repo.Reference(name, false)
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up %q: %w", name.Short(), err)
	}
	return true, nil
}

func (it *GitVersionControlRepository) Checkout(ctx context.Context, ws *entities.Workspace, ref string) error {
	if _, err := it.git(ctx, ws, "checkout", ref); err != nil {
		return err
	}
	ws.Branch = ""
	if repo, err := gogit.PlainOpen(ws.Path); err == nil {
		ws.Branch = currentBranch(repo)
	}
	return nil
}

func (it *GitVersionControlRepository) CheckoutNewBranch(
	ctx context.Context,
	ws *entities.Workspace,
	name, startPoint string,
) error {
	if _, err := it.git(ctx, ws, "checkout", "-b", name, startPoint); err != nil {
		return err
	}
	ws.Branch = name
	return nil
}

func (it *GitVersionControlRepository) CheckoutPaths(
	ctx context.Context,
	ws *entities.Workspace,
	ref string,
	paths []string,
) error {
	args := append([]string{"checkout", ref, "--"}, paths...)
	_, err := it.git(ctx, ws, args...)
	return err
}

func (it *GitVersionControlRepository) Merge(
	ctx context.Context,
	ws *entities.Workspace,
	ref string,
	opts entities.MergeOptions,
) (entities.MergeOutcome, error) {
	result, err := it.git(ctx, ws, mergeArgs(ref, opts)...)
	if err != nil {
		if !shell.Started(err) {
			return entities.MergeOutcome{}, fmt.Errorf("failed to run merge of %s: %w", ref, err)
		}
		var cmdErr *entities.CommandError
		errors.As(err, &cmdErr)
		return classifyMerge(cmdErr.Stdout+cmdErr.Stderr, cmdErr), nil
	}
	return classifyMerge(result.Stdout, nil), nil
}

// mergeArgs builds the argument list of `git merge`.
func mergeArgs(ref string, opts entities.MergeOptions) []string {
	args := []string{"merge", ref}
	if opts.AllowUnrelatedHistories {
		args = append(args, "--allow-unrelated-histories")
	}
	if opts.Squash {
		args = append(args, "--squash")
	}
	if opts.Strategy != "" {
		args = append(args, "--strategy", opts.Strategy)
	}
	if opts.StrategyOption != "" {
		args = append(args, "-X", opts.StrategyOption)
	}
	if opts.NoCommit {
		args = append(args, "--no-commit")
	}
	if opts.NoFastForward {
		args = append(args, "--no-ff")
	}
	return args
}

// classifyMerge turns merge output into an outcome. A failure whose output says
// there was nothing to do is still a NoOp.
func classifyMerge(output string, failure *entities.CommandError) entities.MergeOutcome {
	if isNoOp(output) {
		return entities.NoOp()
	}
	if failure != nil {
		return entities.Conflict(failure)
	}
	return entities.Applied()
}

func isNoOp(output string) bool {
	for _, marker := range noOpMarkers {
		if strings.Contains(output, marker) {
			return true
		}
	}
	return false
}

func (it *GitVersionControlRepository) AddAll(ctx context.Context, ws *entities.Workspace) error {
	_, err := it.git(ctx, ws, "add", "--all")
	return err
}

func (it *GitVersionControlRepository) Commit(
	ctx context.Context,
	ws *entities.Workspace,
	message string,
) (bool, error) {
	if _, err := it.git(ctx, ws, "commit", "-m", message); err != nil {
		var cmdErr *entities.CommandError
		if errors.As(err, &cmdErr) && isNoOp(cmdErr.Stdout+cmdErr.Stderr) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (it *GitVersionControlRepository) Push(
	ctx context.Context,
	ws *entities.Workspace,
	remote, branch string,
) error {
	_, err := it.git(ctx, ws, "push", remote, branch)
	return err
}

func (it *GitVersionControlRepository) AbortMergeIfAny(ctx context.Context, ws *entities.Workspace) error {
	if _, err := os.Stat(filepath.Join(ws.Path, ".git", "MERGE_HEAD")); err != nil {
		return nil //nolint:nilerr // no merge in progress
	}
	_, err := it.git(ctx, ws, "merge", "--abort")
	return err
}

func (it *GitVersionControlRepository) HardResetAndClean(ctx context.Context, ws *entities.Workspace) error {
	_, resetErr := it.git(ctx, ws, "reset", "--hard", "HEAD")
	_, cleanErr := it.git(ctx, ws, "clean", "-fd")
	return errors.Join(resetErr, cleanErr)
}

func (it *GitVersionControlRepository) FileExists(ws *entities.Workspace, name string) bool {
	_, err := os.Stat(filepath.Join(ws.Path, name))
	return err == nil
}

func (it *GitVersionControlRepository) WriteFile(ws *entities.Workspace, name, content string) error {
	if err := os.WriteFile(filepath.Join(ws.Path, name), []byte(content), fileMode); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

func (it *GitVersionControlRepository) Diagnostics(
	ctx context.Context,
	ws *entities.Workspace,
) entities.WorkspaceDiagnostics {
	capture := func(argv ...string) string {
		result, err := it.runner.Run(ctx, ws.Path, argv...)
		if err != nil {
			return err.Error()
		}
		return strings.TrimSpace(result.Stdout)
	}
	return entities.WorkspaceDiagnostics{
		Status:  capture("git", "status"),
		Listing: capture("ls", "-lah"),
		Diff:    capture("git", "diff"),
	}
}

func currentBranch(repo *gogit.Repository) string {
	head, err := repo.Head()
	if err != nil || !head.Name().IsBranch() {
		return ""
	}
	return head.Name().Short()
}

func isAbsentOrEmpty(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if errors.Is(err, os.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return len(entries) == 0, nil
}
