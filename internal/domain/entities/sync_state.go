package entities

// SyncState is a state of the branch synchronization machine.
type SyncState string

const (
	StateAcquireBranch SyncState = "ACQUIRE_BRANCH"
	StateOverlay       SyncState = "OVERLAY"
	StatePushOverlay   SyncState = "PUSH_OVERLAY"
	StateUpstreamMerge SyncState = "UPSTREAM_MERGE"
	StatePushUpstream  SyncState = "PUSH_UPSTREAM"
	StateFailed        SyncState = "FAILED"
	StateDone          SyncState = "DONE"
)

// PairResult records what happened to one branch pair.
type PairResult struct {
	Pair            BranchPair
	States          []SyncState
	OverlayOutcome  *MergeOutcome // nil when the overlay step did not merge
	UpstreamOutcome *MergeOutcome // nil when the upstream merge was not reached
	Pushes          int
	Err             error
	IssueURL        string
}

// Failed reports whether the pair ended in the FAILED state.
func (r *PairResult) Failed() bool {
	return r.Err != nil
}

// Visit appends a state to the trace.
func (r *PairResult) Visit(state SyncState) {
	r.States = append(r.States, state)
}
