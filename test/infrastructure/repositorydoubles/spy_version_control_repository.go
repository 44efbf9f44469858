//go:build integration || unit || test

// Package repositorydoubles provides test doubles (spies, stubs, dummies) for
// repository interfaces. These are hand-crafted implementations, no mock frameworks.
package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"fmt"
	"strings"

	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
	"github.com/rios0rios0/upstreamsync/internal/domain/repositories"
)

// MergeCall records one Merge invocation.
type MergeCall struct {
	Branch string
	Ref    string
	Opts   entities.MergeOptions
}

// SpyVersionControlRepository implements repositories.VersionControlRepository
// in memory. Files are tracked per branch so a sentinel written on one branch
// is not visible from another. Every mutating call is appended to Calls.
type SpyVersionControlRepository struct {
	Calls []string

	// --- CloneOrOpen / Open ---
	CloneErr      error
	OpenErr       error
	ClonedURLs    []string
	OpenedPaths   []string
	InitialBranch string

	// --- EnsureRemote / Fetch ---
	EnsureRemoteErr error
	FetchErr        error
	Remotes         map[string]string

	// --- branches ---
	LocalBranches   map[string]bool
	RemoteBranches  map[string]bool // keyed by "remote/branch"
	BranchExistsErr error
	CheckoutErrs    map[string]error // keyed by ref

	// --- CheckoutPaths ---
	CheckoutPathsErr error
	RestoredPaths    []string

	// --- Merge ---
	MergeOutcomes map[string]entities.MergeOutcome // keyed by ref, Applied when absent
	MergeErr      error
	MergeCalls    []MergeCall

	// --- AddAll / Commit ---
	AddAllErr       error
	NothingToCommit bool
	CommitErr       error
	Commits         []string

	// --- Push ---
	PushErrs map[string]error // keyed by branch
	Pushes   []string

	// --- cleanup ---
	AbortErr   error
	ResetErr   error
	AbortCount int
	ResetCount int

	// --- files ---
	Files        map[string]map[string]string // branch -> name -> content
	WriteFileErr error

	// --- Diagnostics ---
	DiagnosticsResult entities.WorkspaceDiagnostics
	DiagnosticsCount  int
}

var _ repositories.VersionControlRepository = (*SpyVersionControlRepository)(nil)

func (s *SpyVersionControlRepository) record(format string, args ...any) {
	s.Calls = append(s.Calls, fmt.Sprintf(format, args...))
}

func (s *SpyVersionControlRepository) CloneOrOpen(
	_ context.Context,
	remoteURL, localPath string,
) (*entities.Workspace, error) {
	s.record("clone %s %s", remoteURL, localPath)
	s.ClonedURLs = append(s.ClonedURLs, remoteURL)
	if s.CloneErr != nil {
		return nil, s.CloneErr
	}
	return &entities.Workspace{Path: localPath, Branch: s.InitialBranch}, nil
}

func (s *SpyVersionControlRepository) Open(_ context.Context, localPath string) (*entities.Workspace, error) {
	s.record("open %s", localPath)
	s.OpenedPaths = append(s.OpenedPaths, localPath)
	if s.OpenErr != nil {
		return nil, s.OpenErr
	}
	return &entities.Workspace{Path: localPath, Branch: s.InitialBranch}, nil
}

func (s *SpyVersionControlRepository) EnsureRemote(_ context.Context, _ *entities.Workspace, name, url string) error {
	s.record("remote %s %s", name, url)
	if s.EnsureRemoteErr != nil {
		return s.EnsureRemoteErr
	}
	if s.Remotes == nil {
		s.Remotes = map[string]string{}
	}
	s.Remotes[name] = url
	return nil
}

func (s *SpyVersionControlRepository) Fetch(_ context.Context, _ *entities.Workspace, remote string) error {
	s.record("fetch %s", remote)
	return s.FetchErr
}

func (s *SpyVersionControlRepository) BranchExists(_ *entities.Workspace, name string) (bool, error) {
	return s.LocalBranches[name], s.BranchExistsErr
}

func (s *SpyVersionControlRepository) RemoteBranchExists(_ *entities.Workspace, remote, name string) (bool, error) {
	return s.RemoteBranches[remote+"/"+name], s.BranchExistsErr
}

func (s *SpyVersionControlRepository) Checkout(_ context.Context, ws *entities.Workspace, ref string) error {
	s.record("checkout %s", ref)
	if err := s.CheckoutErrs[ref]; err != nil {
		return err
	}
	ws.Branch = ref
	return nil
}

func (s *SpyVersionControlRepository) CheckoutNewBranch(
	_ context.Context,
	ws *entities.Workspace,
	name, startPoint string,
) error {
	s.record("checkout -b %s %s", name, startPoint)
	if err := s.CheckoutErrs[name]; err != nil {
		return err
	}
	if s.LocalBranches == nil {
		s.LocalBranches = map[string]bool{}
	}
	s.LocalBranches[name] = true
	ws.Branch = name
	return nil
}

func (s *SpyVersionControlRepository) CheckoutPaths(
	_ context.Context,
	_ *entities.Workspace,
	ref string,
	paths []string,
) error {
	s.record("checkout %s -- %s", ref, strings.Join(paths, " "))
	if s.CheckoutPathsErr != nil {
		return s.CheckoutPathsErr
	}
	s.RestoredPaths = append(s.RestoredPaths, paths...)
	return nil
}

func (s *SpyVersionControlRepository) Merge(
	_ context.Context,
	ws *entities.Workspace,
	ref string,
	opts entities.MergeOptions,
) (entities.MergeOutcome, error) {
	s.record("merge %s", ref)
	s.MergeCalls = append(s.MergeCalls, MergeCall{Branch: ws.Branch, Ref: ref, Opts: opts})
	if s.MergeErr != nil {
		return entities.MergeOutcome{}, s.MergeErr
	}
	if outcome, ok := s.MergeOutcomes[ref]; ok {
		return outcome, nil
	}
	return entities.Applied(), nil
}

func (s *SpyVersionControlRepository) AddAll(_ context.Context, _ *entities.Workspace) error {
	s.record("add --all")
	return s.AddAllErr
}

func (s *SpyVersionControlRepository) Commit(_ context.Context, _ *entities.Workspace, message string) (bool, error) {
	s.record("commit %s", message)
	if s.CommitErr != nil {
		return false, s.CommitErr
	}
	if s.NothingToCommit {
		return false, nil
	}
	s.Commits = append(s.Commits, message)
	return true, nil
}

func (s *SpyVersionControlRepository) Push(_ context.Context, _ *entities.Workspace, remote, branch string) error {
	s.record("push %s %s", remote, branch)
	if err := s.PushErrs[branch]; err != nil {
		return err
	}
	s.Pushes = append(s.Pushes, branch)
	return nil
}

func (s *SpyVersionControlRepository) AbortMergeIfAny(_ context.Context, _ *entities.Workspace) error {
	s.record("merge --abort")
	s.AbortCount++
	return s.AbortErr
}

func (s *SpyVersionControlRepository) HardResetAndClean(_ context.Context, _ *entities.Workspace) error {
	s.record("reset --hard")
	s.ResetCount++
	return s.ResetErr
}

func (s *SpyVersionControlRepository) FileExists(ws *entities.Workspace, name string) bool {
	_, ok := s.Files[ws.Branch][name]
	return ok
}

func (s *SpyVersionControlRepository) WriteFile(ws *entities.Workspace, name, content string) error {
	s.record("write %s", name)
	if s.WriteFileErr != nil {
		return s.WriteFileErr
	}
	if s.Files == nil {
		s.Files = map[string]map[string]string{}
	}
	if s.Files[ws.Branch] == nil {
		s.Files[ws.Branch] = map[string]string{}
	}
	s.Files[ws.Branch][name] = content
	return nil
}

func (s *SpyVersionControlRepository) Diagnostics(
	_ context.Context,
	_ *entities.Workspace,
) entities.WorkspaceDiagnostics {
	s.DiagnosticsCount++
	return s.DiagnosticsResult
}
