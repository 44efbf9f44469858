package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
	"github.com/rios0rios0/upstreamsync/internal/domain/repositories"
)

// maxOutputLength bounds every captured output embedded in an issue body.
const maxOutputLength = 8000

// FailureReport carries everything known about a failed pair.
type FailureReport struct {
	Err        error
	Workspace  *entities.Workspace
	Upstream   entities.RepositoryRef
	Downstream entities.RepositoryRef
	Pair       entities.BranchPair
	Assignees  []string
}

// ReportResult tells which issue tracks the failure.
type ReportResult struct {
	URL      string
	Existing bool // an open issue with the same title was found, nothing was created
}

// FailureReporter files one issue per failing pair on the downstream tracker.
type FailureReporter struct {
	hosting repositories.HostingRepository
	vcs     repositories.VersionControlRepository
}

// NewFailureReporter creates a FailureReporter.
func NewFailureReporter(
	hosting repositories.HostingRepository,
	vcs repositories.VersionControlRepository,
) *FailureReporter {
	return &FailureReporter{hosting: hosting, vcs: vcs}
}

// Report files an issue for the failure unless an open issue with the same title
// already exists. It must be called before the workspace is cleaned up, so the
// diagnostics still show the failed state.
func (it *FailureReporter) Report(ctx context.Context, report FailureReport) (ReportResult, error) {
	title := entities.IssueTitle(report.Pair)

	issues, err := it.hosting.ListOpenIssues(ctx, report.Downstream)
	if err != nil {
		return ReportResult{}, fmt.Errorf("failed to list open issues of %s: %w", report.Downstream.FullName, err)
	}
	for _, issue := range issues {
		if issue.Title == title {
			logger.Infof("Issue %q already open at %s, not filing another one", title, issue.URL)
			return ReportResult{URL: issue.URL, Existing: true}, nil
		}
	}

	var diagnostics entities.WorkspaceDiagnostics
	if report.Workspace != nil {
		diagnostics = it.vcs.Diagnostics(ctx, report.Workspace)
	}

	issue, err := it.hosting.CreateIssue(ctx, report.Downstream, entities.IssueRecord{
		Title:     title,
		Body:      buildIssueBody(report, diagnostics),
		Assignees: report.Assignees,
	})
	if err != nil {
		return ReportResult{}, fmt.Errorf("failed to create issue on %s: %w", report.Downstream.FullName, err)
	}

	logger.Infof(
		"Merging upstream/%s to downstream/%s failed - created issue %s",
		report.Pair.Upstream, report.Pair.Downstream, issue.URL,
	)
	return ReportResult{URL: issue.URL}, nil
}

func buildIssueBody(report FailureReport, diagnostics entities.WorkspaceDiagnostics) string {
	command := "n/a"
	status := "n/a"
	var stdout, stderr string

	var cmdErr *entities.CommandError
	if errors.As(report.Err, &cmdErr) {
		command = cmdErr.CommandLine()
		status = strconv.Itoa(cmdErr.ExitStatus)
		stdout = cmdErr.Stdout
		stderr = cmdErr.Stderr
	}

	b := new(strings.Builder)
	fmt.Fprintf(b, "Merging `upstream/%s` into `%s` failed.\n\n", report.Pair.Upstream, report.Pair.Downstream)
	fmt.Fprintf(b, "- upstream: %s\n", report.Upstream.TreeURL(report.Pair.Upstream))
	fmt.Fprintf(b, "- downstream: %s\n", report.Downstream.TreeURL(report.Pair.Downstream))
	fmt.Fprintf(b, "- command: `%s`\n", command)
	fmt.Fprintf(b, "- exit status: `%s`\n", status)
	if report.Err != nil {
		fmt.Fprintf(b, "- error: %s\n", truncate(report.Err.Error()))
	}

	writeBlock(b, "stdout", stdout)
	writeBlock(b, "stderr", stderr)

	b.WriteString("\n## Additional debug\n")
	writeBlock(b, "git status", diagnostics.Status)
	writeBlock(b, "ls -lah", diagnostics.Listing)
	writeBlock(b, "git diff", diagnostics.Diff)

	return b.String()
}

func writeBlock(b *strings.Builder, label, content string) {
	content = strings.TrimSpace(content)
	if content == "" {
		return
	}
	fmt.Fprintf(b, "\n%s:\n```\n%s\n```\n", label, truncate(content))
}

func truncate(s string) string {
	if len(s) <= maxOutputLength {
		return s
	}
	return fmt.Sprintf("%s\n... (%d bytes truncated)", s[:maxOutputLength], len(s)-maxOutputLength)
}
