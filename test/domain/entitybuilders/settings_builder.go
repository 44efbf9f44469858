//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	testkit "github.com/rios0rios0/testkit/pkg/test"

	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
)

// SettingsBuilder helps create validated test settings with a fluent interface.
type SettingsBuilder struct {
	*testkit.BaseBuilder
	upstream      string
	downstream    string
	branches      entities.BranchMapping
	overlayBranch string
	alwaysOverlay []string
	exitOnError   bool
	noPush        bool
	noIssue       bool
	assignees     []string
	regenerate    []string
	restoreFrom   string
	restorePaths  []string
	workspaceRoot string
	lockFile      string
}

// NewSettingsBuilder creates a new settings builder with a single
// main -> downstream-main pair and no overlay.
func NewSettingsBuilder() *SettingsBuilder {
	b := &SettingsBuilder{BaseBuilder: testkit.NewBaseBuilder()}
	b.defaults()
	return b
}

func (b *SettingsBuilder) defaults() {
	b.upstream = "upstream-org/project"
	b.downstream = "downstream-org/project"
	b.branches = entities.BranchMapping{{Upstream: "main", Downstream: "downstream-main"}}
	b.overlayBranch = ""
	b.alwaysOverlay = nil
	b.exitOnError = false
	b.noPush = false
	b.noIssue = false
	b.assignees = nil
	b.regenerate = nil
	b.restoreFrom = ""
	b.restorePaths = nil
	b.workspaceRoot = "/tmp/upstreamsync"
	b.lockFile = "/tmp/upstreamsync/.upstreamsync.lock"
}

// WithRepositories sets the upstream and downstream repository names.
func (b *SettingsBuilder) WithRepositories(upstream, downstream string) *SettingsBuilder {
	b.upstream = upstream
	b.downstream = downstream
	return b
}

// WithBranches replaces the branch mapping.
func (b *SettingsBuilder) WithBranches(pairs ...entities.BranchPair) *SettingsBuilder {
	b.branches = pairs
	return b
}

// WithOverlay sets the overlay branch and the branches it is always merged into.
// The restore source defaults to the overlay branch like a loaded configuration.
func (b *SettingsBuilder) WithOverlay(branch string, always ...string) *SettingsBuilder {
	b.overlayBranch = branch
	b.alwaysOverlay = always
	if b.restoreFrom == "" {
		b.restoreFrom = entities.OriginRemote + "/" + branch
		b.restorePaths = []string{".gitignore"}
	}
	return b
}

// WithRestore sets where the downstream-owned paths are restored from.
func (b *SettingsBuilder) WithRestore(from string, paths ...string) *SettingsBuilder {
	b.restoreFrom = from
	b.restorePaths = paths
	return b
}

// WithExitOnError sets the exit-on-error flag.
func (b *SettingsBuilder) WithExitOnError(exitOnError bool) *SettingsBuilder {
	b.exitOnError = exitOnError
	return b
}

// WithNoPush sets the no-push flag.
func (b *SettingsBuilder) WithNoPush(noPush bool) *SettingsBuilder {
	b.noPush = noPush
	return b
}

// WithNoIssue sets the no-issue flag.
func (b *SettingsBuilder) WithNoIssue(noIssue bool) *SettingsBuilder {
	b.noIssue = noIssue
	return b
}

// WithAssignees sets the issue assignees.
func (b *SettingsBuilder) WithAssignees(assignees ...string) *SettingsBuilder {
	b.assignees = assignees
	return b
}

// WithRegenerate sets the regeneration hook commands.
func (b *SettingsBuilder) WithRegenerate(commands ...string) *SettingsBuilder {
	b.regenerate = commands
	return b
}

// WithWorkspaceRoot sets the workspace root and the lock file under it.
func (b *SettingsBuilder) WithWorkspaceRoot(root string) *SettingsBuilder {
	b.workspaceRoot = root
	b.lockFile = root + "/" + entities.DefaultLockFile
	return b
}

// Build creates the settings (satisfies testkit.Builder interface).
func (b *SettingsBuilder) Build() interface{} {
	return b.BuildSettings()
}

// BuildSettings creates validated settings with a concrete return type.
// It panics when the builder holds an invalid combination.
func (b *SettingsBuilder) BuildSettings() *entities.Settings {
	settings := &entities.Settings{
		Upstream:      b.upstream,
		Downstream:    b.downstream,
		Branches:      append(entities.BranchMapping(nil), b.branches...),
		OverlayBranch: b.overlayBranch,
		AlwaysOverlay: b.alwaysOverlay,
		ExitOnError:   b.exitOnError,
		NoPush:        b.noPush,
		NoIssue:       b.noIssue,
		Assignees:     b.assignees,
		Provider:      entities.ProviderGitHub,
		CloneProtocol: entities.CloneProtocolSSH,
		WorkspaceRoot: b.workspaceRoot,
		LockFile:      b.lockFile,
		Regenerate:    b.regenerate,
		RestoreFrom:   b.restoreFrom,
		RestorePaths:  b.restorePaths,
	}
	if err := entities.Validate(settings); err != nil {
		panic(err)
	}
	return settings
}

// Reset clears the builder state, allowing it to be reused.
func (b *SettingsBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.defaults()
	return b
}

// Clone creates a deep copy of the SettingsBuilder.
func (b *SettingsBuilder) Clone() testkit.Builder {
	return &SettingsBuilder{
		BaseBuilder:   b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		upstream:      b.upstream,
		downstream:    b.downstream,
		branches:      append(entities.BranchMapping(nil), b.branches...),
		overlayBranch: b.overlayBranch,
		alwaysOverlay: append([]string(nil), b.alwaysOverlay...),
		exitOnError:   b.exitOnError,
		noPush:        b.noPush,
		noIssue:       b.noIssue,
		assignees:     append([]string(nil), b.assignees...),
		regenerate:    append([]string(nil), b.regenerate...),
		restoreFrom:   b.restoreFrom,
		restorePaths:  append([]string(nil), b.restorePaths...),
		workspaceRoot: b.workspaceRoot,
		lockFile:      b.lockFile,
	}
}
