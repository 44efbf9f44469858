//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"fmt"

	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
	"github.com/rios0rios0/upstreamsync/internal/domain/repositories"
)

// SpyHostingRepository implements repositories.HostingRepository as a configurable spy.
// Created issues are added to OpenIssues, so a second failure of the same pair
// finds the first issue.
type SpyHostingRepository struct {
	// --- identity ---
	ProviderName string

	// --- GetRepository ---
	Repositories          map[string]entities.RepositoryRef // synthesized from the name when absent
	GetRepositoryErrs     map[string]error
	RequestedRepositories []string

	// --- ListOpenIssues ---
	OpenIssues    []entities.Issue
	ListIssuesErr error
	ListedRepos   []string

	// --- CreateIssue ---
	CreateIssueErr error
	IssueRecords   []entities.IssueRecord
	IssueRepos     []string
}

var _ repositories.HostingRepository = (*SpyHostingRepository)(nil)

func (s *SpyHostingRepository) Name() string {
	if s.ProviderName == "" {
		return entities.ProviderGitHub
	}
	return s.ProviderName
}

func (s *SpyHostingRepository) GetRepository(_ context.Context, fullName string) (entities.RepositoryRef, error) {
	s.RequestedRepositories = append(s.RequestedRepositories, fullName)
	if err := s.GetRepositoryErrs[fullName]; err != nil {
		return entities.RepositoryRef{}, err
	}
	if ref, ok := s.Repositories[fullName]; ok {
		return ref, nil
	}
	return RepositoryRefFor(fullName), nil
}

func (s *SpyHostingRepository) ListOpenIssues(
	_ context.Context,
	repo entities.RepositoryRef,
) ([]entities.Issue, error) {
	s.ListedRepos = append(s.ListedRepos, repo.FullName)
	if s.ListIssuesErr != nil {
		return nil, s.ListIssuesErr
	}
	return s.OpenIssues, nil
}

func (s *SpyHostingRepository) CreateIssue(
	_ context.Context,
	repo entities.RepositoryRef,
	record entities.IssueRecord,
) (entities.Issue, error) {
	s.IssueRepos = append(s.IssueRepos, repo.FullName)
	s.IssueRecords = append(s.IssueRecords, record)
	if s.CreateIssueErr != nil {
		return entities.Issue{}, s.CreateIssueErr
	}
	issue := entities.Issue{
		Title: record.Title,
		URL:   fmt.Sprintf("%s/issues/%d", repo.WebURL, len(s.IssueRecords)),
	}
	s.OpenIssues = append(s.OpenIssues, issue)
	return issue, nil
}

// RepositoryRefFor builds the reference the spy returns for fullName.
func RepositoryRefFor(fullName string) entities.RepositoryRef {
	return entities.RepositoryRef{
		FullName: fullName,
		Name:     entities.ShortName(fullName),
		CloneURL: "git@example.com:" + fullName + ".git",
		SSHURL:   "git@example.com:" + fullName + ".git",
		HTTPSURL: "https://example.com/" + fullName + ".git",
		WebURL:   "https://example.com/" + fullName,
	}
}
