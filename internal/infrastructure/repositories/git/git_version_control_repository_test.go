//go:build unit

package git_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
	gitRepo "github.com/rios0rios0/upstreamsync/internal/infrastructure/repositories/git"
	"github.com/rios0rios0/upstreamsync/internal/infrastructure/repositories/shell"
	doubles "github.com/rios0rios0/upstreamsync/test/infrastructure/repositorydoubles"
)

func commandError(argv []string, exitStatus int, stdout, stderr string) *entities.CommandError {
	return &entities.CommandError{
		Command:    argv,
		ExitStatus: exitStatus,
		Stdout:     stdout,
		Stderr:     stderr,
		Err:        errors.New("exit status"),
	}
}

func TestMergeArgs(t *testing.T) {
	t.Parallel()

	t.Run("should build the overlay squash merge", func(t *testing.T) {
		t.Parallel()

		// given
		opts := entities.MergeOptions{
			AllowUnrelatedHistories: true,
			Squash:                  true,
			Strategy:                "recursive",
			StrategyOption:          "theirs",
		}

		// when
		args := gitRepo.MergeArgs("origin/downstream-changes", opts)

		// then
		assert.Equal(t, []string{
			"merge", "origin/downstream-changes",
			"--allow-unrelated-histories", "--squash", "--strategy", "recursive", "-X", "theirs",
		}, args)
	})

	t.Run("should build the upstream merge", func(t *testing.T) {
		t.Parallel()

		// given
		opts := entities.MergeOptions{NoCommit: true, NoFastForward: true}

		// when
		args := gitRepo.MergeArgs("upstream/main", opts)

		// then
		assert.Equal(t, []string{"merge", "upstream/main", "--no-commit", "--no-ff"}, args)
	})
}

func TestClassifyMerge(t *testing.T) {
	t.Parallel()

	t.Run("should classify a successful merge as applied", func(t *testing.T) {
		t.Parallel()

		// given
		output := "Automatic merge went well; stopped before committing as requested\n"

		// when
		outcome := gitRepo.ClassifyMerge(output, nil)

		// then
		assert.Equal(t, entities.MergeApplied, outcome.Status)
	})

	t.Run("should classify an up to date merge as a no-op", func(t *testing.T) {
		t.Parallel()

		// given
		output := "Already up to date.\n"

		// when
		outcome := gitRepo.ClassifyMerge(output, nil)

		// then
		assert.Equal(t, entities.MergeNoOp, outcome.Status)
	})

	t.Run("should classify a failed merge with nothing to commit as a no-op", func(t *testing.T) {
		t.Parallel()

		// given
		failure := commandError([]string{"git", "merge"}, 1, "nothing to commit, working tree clean", "")

		// when
		outcome := gitRepo.ClassifyMerge(failure.Stdout, failure)

		// then
		assert.Equal(t, entities.MergeNoOp, outcome.Status)
		assert.Nil(t, outcome.Failure)
	})

	t.Run("should classify any other failure as a conflict", func(t *testing.T) {
		t.Parallel()

		// given
		failure := commandError(
			[]string{"git", "merge"}, 1,
			"CONFLICT (content): Merge conflict in go.mod", "Automatic merge failed",
		)

		// when
		outcome := gitRepo.ClassifyMerge(failure.Stdout+failure.Stderr, failure)

		// then
		assert.Equal(t, entities.MergeConflict, outcome.Status)
		assert.Same(t, failure, outcome.Failure)
	})

	t.Run("should accept the older up-to-date spelling", func(t *testing.T) {
		t.Parallel()

		// given
		output := "Already up-to-date.\n"

		// when
		outcome := gitRepo.ClassifyMerge(output, nil)

		// then
		assert.Equal(t, entities.MergeNoOp, outcome.Status)
	})
}

func TestGitVersionControlRepositoryWithRunner(t *testing.T) {
	t.Parallel()

	ws := func() *entities.Workspace { return &entities.Workspace{Path: "/srv/sync/project"} }

	t.Run("should report a conflict from the merge output", func(t *testing.T) {
		t.Parallel()

		// given
		argv := []string{"git", "merge", "upstream/main", "--no-commit", "--no-ff"}
		runner := &doubles.StubRunner{Responses: map[string]doubles.StubRunnerResponse{
			"git merge upstream/main --no-commit --no-ff": {
				Err: commandError(argv, 1, "CONFLICT (modify/delete): vendor/modules.txt", ""),
			},
		}}
		repo := gitRepo.NewGitVersionControlRepositoryWithRunner(runner)

		// when
		outcome, err := repo.Merge(
			context.Background(), ws(), "upstream/main",
			entities.MergeOptions{NoCommit: true, NoFastForward: true},
		)

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.MergeConflict, outcome.Status)
		require.NotNil(t, outcome.Failure)
		assert.Equal(t, 1, outcome.Failure.ExitStatus)
		assert.Equal(t, []string{"/srv/sync/project"}, runner.Dirs)
	})

	t.Run("should report a no-op when git exits non-zero with nothing to commit", func(t *testing.T) {
		t.Parallel()

		// given
		argv := []string{"git", "merge", "upstream/main", "--no-commit", "--no-ff"}
		runner := &doubles.StubRunner{Responses: map[string]doubles.StubRunnerResponse{
			"git merge upstream/main --no-commit --no-ff": {
				Err: commandError(argv, 1, "", "nothing to commit"),
			},
		}}
		repo := gitRepo.NewGitVersionControlRepositoryWithRunner(runner)

		// when
		outcome, err := repo.Merge(
			context.Background(), ws(), "upstream/main",
			entities.MergeOptions{NoCommit: true, NoFastForward: true},
		)

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.MergeNoOp, outcome.Status)
	})

	t.Run("should return an error when git cannot be started", func(t *testing.T) {
		t.Parallel()

		// given
		runner := &doubles.StubRunner{Responses: map[string]doubles.StubRunnerResponse{
			"git merge upstream/main": {
				Err: commandError([]string{"git"}, -1, "", ""),
			},
		}}
		repo := gitRepo.NewGitVersionControlRepositoryWithRunner(runner)

		// when
		_, err := repo.Merge(context.Background(), ws(), "upstream/main", entities.MergeOptions{})

		// then
		require.Error(t, err)
	})

	t.Run("should report nothing committed without an error", func(t *testing.T) {
		t.Parallel()

		// given
		runner := &doubles.StubRunner{Responses: map[string]doubles.StubRunnerResponse{
			"git commit -m sync": {
				Err: commandError([]string{"git", "commit"}, 1, "nothing to commit, working tree clean", ""),
			},
		}}
		repo := gitRepo.NewGitVersionControlRepositoryWithRunner(runner)

		// when
		committed, err := repo.Commit(context.Background(), ws(), "sync")

		// then
		require.NoError(t, err)
		assert.False(t, committed)
	})

	t.Run("should return any other commit failure", func(t *testing.T) {
		t.Parallel()

		// given
		runner := &doubles.StubRunner{Responses: map[string]doubles.StubRunnerResponse{
			"git commit -m sync": {
				Err: commandError([]string{"git", "commit"}, 128, "", "Please tell me who you are."),
			},
		}}
		repo := gitRepo.NewGitVersionControlRepositoryWithRunner(runner)

		// when
		committed, err := repo.Commit(context.Background(), ws(), "sync")

		// then
		require.Error(t, err)
		assert.False(t, committed)
	})

	t.Run("should reset and clean even when the reset fails", func(t *testing.T) {
		t.Parallel()

		// given
		runner := &doubles.StubRunner{Responses: map[string]doubles.StubRunnerResponse{
			"git reset --hard HEAD": {Err: commandError([]string{"git", "reset"}, 128, "", "index.lock exists")},
		}}
		repo := gitRepo.NewGitVersionControlRepositoryWithRunner(runner)

		// when
		err := repo.HardResetAndClean(context.Background(), ws())

		// then
		require.Error(t, err)
		assert.Equal(t, []string{"git reset --hard HEAD", "git clean -fd"}, runner.Calls)
	})

	t.Run("should push the branch to the remote", func(t *testing.T) {
		t.Parallel()

		// given
		runner := &doubles.StubRunner{}
		repo := gitRepo.NewGitVersionControlRepositoryWithRunner(runner)

		// when
		err := repo.Push(context.Background(), ws(), "origin", "downstream-main")

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"git push origin downstream-main"}, runner.Calls)
	})

	t.Run("should capture the diagnostics and keep going when a command fails", func(t *testing.T) {
		t.Parallel()

		// given
		runner := &doubles.StubRunner{Responses: map[string]doubles.StubRunnerResponse{
			"git status": {Result: shellResult("On branch downstream-main\nYou have unmerged paths.\n")},
			"ls -lah":    {Err: commandError([]string{"ls", "-lah"}, 2, "", "no such file")},
			"git diff":   {Result: shellResult("diff --cc go.mod\n")},
		}}
		repo := gitRepo.NewGitVersionControlRepositoryWithRunner(runner)

		// when
		diagnostics := repo.Diagnostics(context.Background(), ws())

		// then
		assert.Equal(t, "On branch downstream-main\nYou have unmerged paths.", diagnostics.Status)
		assert.Contains(t, diagnostics.Listing, "no such file")
		assert.Equal(t, "diff --cc go.mod", diagnostics.Diff)
	})
}

func shellResult(stdout string) shell.RunResult {
	return shell.RunResult{Stdout: stdout}
}
