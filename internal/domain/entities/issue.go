package entities

import "fmt"

// IssueRecord is an issue to be filed on the downstream tracker.
type IssueRecord struct {
	Title     string
	Body      string
	Assignees []string
}

// Issue is an issue as listed by the hosting platform.
type Issue struct {
	Title string
	URL   string
}

// IssueTitle is deterministic per pair and doubles as the deduplication key.
func IssueTitle(pair BranchPair) string {
	return fmt.Sprintf("Error merging upstream/%s into %s", pair.Upstream, pair.Downstream)
}
