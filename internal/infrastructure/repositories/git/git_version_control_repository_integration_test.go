//go:build integration

package git_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
	gitRepo "github.com/rios0rios0/upstreamsync/internal/infrastructure/repositories/git"
)

func git(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", append([]string{"-c", "user.name=test", "-c", "user.email=test@example.com"}, args...)...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %s: %s", strings.Join(args, " "), out)
	return string(out)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

// newRemote creates a bare repository seeded with one commit on main.
func newRemote(t *testing.T, root, name string, files map[string]string) string {
	t.Helper()
	work := filepath.Join(root, name+"-work")
	require.NoError(t, os.MkdirAll(work, 0o755))
	git(t, work, "init", "-q", "-b", "main")
	for file, content := range files {
		writeFile(t, work, file, content)
	}
	git(t, work, "add", "--all")
	git(t, work, "commit", "-q", "-m", "initial")

	bare := filepath.Join(root, name+".git")
	git(t, root, "clone", "-q", "--bare", work, bare)
	return bare
}

func TestGitVersionControlRepositoryIntegration(t *testing.T) {
	t.Parallel()

	t.Run("should clone, register upstream and see its branches", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		downstream := newRemote(t, root, "downstream", map[string]string{"README.md": "downstream\n"})
		upstream := newRemote(t, root, "upstream", map[string]string{"README.md": "upstream\n"})
		repo := gitRepo.NewGitVersionControlRepository()
		ctx := context.Background()

		// when
		ws, err := repo.CloneOrOpen(ctx, downstream, filepath.Join(root, "workspace"))
		require.NoError(t, err)
		err = repo.EnsureRemote(ctx, ws, entities.UpstreamRemote, upstream)

		// then
		require.NoError(t, err)
		assert.Equal(t, "main", ws.Branch)
		exists, err := repo.BranchExists(ws, "main")
		require.NoError(t, err)
		assert.True(t, exists)
		onUpstream, err := repo.RemoteBranchExists(ws, entities.UpstreamRemote, "main")
		require.NoError(t, err)
		assert.True(t, onUpstream)
		missing, err := repo.BranchExists(ws, "downstream-main")
		require.NoError(t, err)
		assert.False(t, missing)
	})

	t.Run("should reopen an existing clone without cloning again", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		downstream := newRemote(t, root, "downstream", map[string]string{"README.md": "downstream\n"})
		repo := gitRepo.NewGitVersionControlRepository()
		ctx := context.Background()
		first, err := repo.CloneOrOpen(ctx, downstream, filepath.Join(root, "workspace"))
		require.NoError(t, err)
		writeFile(t, first.Path, "local.txt", "kept")

		// when
		second, err := repo.CloneOrOpen(ctx, "/does/not/exist", filepath.Join(root, "workspace"))

		// then
		require.NoError(t, err)
		assert.Equal(t, first.Path, second.Path)
		assert.True(t, repo.FileExists(second, "local.txt"))
	})

	t.Run("should classify clean, no-op and conflicting merges", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		upstream := newRemote(t, root, "upstream", map[string]string{"README.md": "one\n"})
		repo := gitRepo.NewGitVersionControlRepository()
		ctx := context.Background()
		ws, err := repo.CloneOrOpen(ctx, upstream, filepath.Join(root, "workspace"))
		require.NoError(t, err)
		require.NoError(t, repo.CheckoutNewBranch(ctx, ws, "downstream-main", "origin/main"))

		// when a merge has nothing new
		noOp, err := repo.Merge(ctx, ws, "origin/main", entities.MergeOptions{NoCommit: true, NoFastForward: true})

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.MergeNoOp, noOp.Status)

		// given diverging edits of the same line
		writeFile(t, ws.Path, "README.md", "downstream\n")
		require.NoError(t, repo.AddAll(ctx, ws))
		committed, err := repo.Commit(ctx, ws, "downstream edit")
		require.NoError(t, err)
		require.True(t, committed)
		require.NoError(t, repo.Checkout(ctx, ws, "main"))
		writeFile(t, ws.Path, "README.md", "upstream\n")
		require.NoError(t, repo.AddAll(ctx, ws))
		_, err = repo.Commit(ctx, ws, "upstream edit")
		require.NoError(t, err)
		require.NoError(t, repo.Checkout(ctx, ws, "downstream-main"))

		// when
		conflict, err := repo.Merge(ctx, ws, "main", entities.MergeOptions{NoCommit: true, NoFastForward: true})

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.MergeConflict, conflict.Status)
		require.NotNil(t, conflict.Failure)
		assert.NotZero(t, conflict.Failure.ExitStatus)
		assert.Contains(t, conflict.Failure.Stdout, "CONFLICT")

		// when the workspace is cleaned up
		require.NoError(t, repo.AbortMergeIfAny(ctx, ws))
		require.NoError(t, repo.HardResetAndClean(ctx, ws))

		// then
		status := git(t, ws.Path, "status", "--porcelain")
		assert.Empty(t, strings.TrimSpace(status))
		assert.NoFileExists(t, filepath.Join(ws.Path, ".git", "MERGE_HEAD"))
	})

	t.Run("should leave a non fast-forward merge open for regeneration", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		upstream := newRemote(t, root, "upstream", map[string]string{"README.md": "one\n"})
		repo := gitRepo.NewGitVersionControlRepository()
		ctx := context.Background()
		ws, err := repo.CloneOrOpen(ctx, upstream, filepath.Join(root, "workspace"))
		require.NoError(t, err)
		require.NoError(t, repo.CheckoutNewBranch(ctx, ws, "downstream-main", "origin/main"))
		require.NoError(t, repo.Checkout(ctx, ws, "main"))
		writeFile(t, ws.Path, "NEW.md", "new upstream file\n")
		require.NoError(t, repo.AddAll(ctx, ws))
		_, err = repo.Commit(ctx, ws, "upstream change")
		require.NoError(t, err)
		require.NoError(t, repo.Checkout(ctx, ws, "downstream-main"))

		// when
		outcome, err := repo.Merge(ctx, ws, "main", entities.MergeOptions{NoCommit: true, NoFastForward: true})

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.MergeApplied, outcome.Status)
		assert.FileExists(t, filepath.Join(ws.Path, ".git", "MERGE_HEAD"))
		committed, err := repo.Commit(ctx, ws, "Merge remote-tracking branch 'upstream/main' into downstream-main")
		require.NoError(t, err)
		assert.True(t, committed)
	})

	t.Run("should report nothing to commit on a clean tree", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		upstream := newRemote(t, root, "upstream", map[string]string{"README.md": "one\n"})
		repo := gitRepo.NewGitVersionControlRepository()
		ctx := context.Background()
		ws, err := repo.CloneOrOpen(ctx, upstream, filepath.Join(root, "workspace"))
		require.NoError(t, err)

		// when
		committed, err := repo.Commit(ctx, ws, "nothing")

		// then
		require.NoError(t, err)
		assert.False(t, committed)
	})

	t.Run("should write the sentinel and restore paths from another ref", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		upstream := newRemote(t, root, "upstream", map[string]string{".gitignore": "bin/\n"})
		repo := gitRepo.NewGitVersionControlRepository()
		ctx := context.Background()
		ws, err := repo.CloneOrOpen(ctx, upstream, filepath.Join(root, "workspace"))
		require.NoError(t, err)
		writeFile(t, ws.Path, ".gitignore", "changed\n")

		// when
		require.NoError(t, repo.WriteFile(ws, ".downstream-changes_merged", "True"))
		err = repo.CheckoutPaths(ctx, ws, "origin/main", []string{".gitignore"})

		// then
		require.NoError(t, err)
		assert.True(t, repo.FileExists(ws, ".downstream-changes_merged"))
		content, readErr := os.ReadFile(filepath.Join(ws.Path, ".gitignore"))
		require.NoError(t, readErr)
		assert.Equal(t, "bin/\n", string(content))
	})

	t.Run("should fail to open a directory that is not a repository", func(t *testing.T) {
		t.Parallel()

		// given
		repo := gitRepo.NewGitVersionControlRepository()

		// when
		_, err := repo.Open(context.Background(), t.TempDir())

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a git repository")
	})
}
