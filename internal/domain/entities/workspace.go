package entities

import "errors"

// Workspace is the single local working copy of the downstream repository,
// reused by every branch pair of a run. It is owned exclusively by the running
// process; concurrent runs against the same path are prevented by the run lock.
type Workspace struct {
	Path   string
	Branch string // currently checked-out branch, empty when detached
}

// WorkspaceDiagnostics is the supplementary state captured for failure reports.
type WorkspaceDiagnostics struct {
	Status  string
	Listing string
	Diff    string
}

// ErrRunInProgress is returned when another process holds the run lock.
var ErrRunInProgress = errors.New("another synchronization run is in progress")
