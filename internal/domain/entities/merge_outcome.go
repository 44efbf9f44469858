package entities

import "errors"

// ErrMergeConflict marks a pair that stopped on a merge conflict.
var ErrMergeConflict = errors.New("merge conflict")

// MergeStatus classifies the result of a merge attempt.
type MergeStatus int

const (
	// MergeApplied means the merge produced changes that must be committed.
	MergeApplied MergeStatus = iota
	// MergeNoOp means the tree was already up to date; nothing is committed or pushed.
	MergeNoOp
	// MergeConflict means the merge failed; Failure carries the command details.
	MergeConflict
)

func (s MergeStatus) String() string {
	switch s {
	case MergeApplied:
		return "Applied"
	case MergeNoOp:
		return "NoOp"
	case MergeConflict:
		return "Conflict"
	default:
		return "Unknown"
	}
}

// MergeOutcome is produced by the version-control adapter only. Nothing else
// inspects raw merge output.
type MergeOutcome struct {
	Status  MergeStatus
	Failure *CommandError
}

// Applied returns an Applied outcome.
func Applied() MergeOutcome { return MergeOutcome{Status: MergeApplied} }

// NoOp returns a NoOp outcome.
func NoOp() MergeOutcome { return MergeOutcome{Status: MergeNoOp} }

// Conflict returns a Conflict outcome carrying the failed command.
func Conflict(failure *CommandError) MergeOutcome {
	return MergeOutcome{Status: MergeConflict, Failure: failure}
}

// MergeOptions are the knobs of a single merge invocation.
type MergeOptions struct {
	AllowUnrelatedHistories bool
	Squash                  bool
	Strategy                string
	StrategyOption          string
	NoCommit                bool
	NoFastForward           bool
}
