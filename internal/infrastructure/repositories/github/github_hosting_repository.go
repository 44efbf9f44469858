package github

import (
	"context"
	"fmt"

	gh "github.com/google/go-github/v66/github"

	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
	"github.com/rios0rios0/upstreamsync/internal/domain/repositories"
)

const (
	providerName = "github"
	perPage      = 100
	stateOpen    = "open"
)

// GitHubHostingRepository implements repositories.HostingRepository for GitHub.
type GitHubHostingRepository struct {
	client        *gh.Client
	cloneProtocol string
}

// NewGitHubHostingRepository creates a GitHub client. An empty token gives an
// anonymous client; a non-empty baseURL targets GitHub Enterprise.
func NewGitHubHostingRepository(token, baseURL, cloneProtocol string) (repositories.HostingRepository, error) {
	client := gh.NewClient(nil)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	if baseURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub base URL %q: %w", baseURL, err)
		}
	}
	return NewGitHubHostingRepositoryWithClient(client, cloneProtocol), nil
}

// NewGitHubHostingRepositoryWithClient wraps an existing go-github client.
func NewGitHubHostingRepositoryWithClient(client *gh.Client, cloneProtocol string) *GitHubHostingRepository {
	return &GitHubHostingRepository{client: client, cloneProtocol: cloneProtocol}
}

func (p *GitHubHostingRepository) Name() string { return providerName }

func (p *GitHubHostingRepository) GetRepository(
	ctx context.Context,
	fullName string,
) (entities.RepositoryRef, error) {
	owner, name, err := entities.SplitFullName(fullName)
	if err != nil {
		return entities.RepositoryRef{}, err
	}

	repo, _, err := p.client.Repositories.Get(ctx, owner, name)
	if err != nil {
		return entities.RepositoryRef{}, fmt.Errorf("failed to get repository %q: %w", fullName, err)
	}

	ref := entities.RepositoryRef{
		FullName: repo.GetFullName(),
		Name:     repo.GetName(),
		SSHURL:   repo.GetSSHURL(),
		HTTPSURL: repo.GetCloneURL(),
		WebURL:   repo.GetHTMLURL(),
	}
	ref.CloneURL = ref.SSHURL
	if p.cloneProtocol == entities.CloneProtocolHTTPS {
		ref.CloneURL = ref.HTTPSURL
	}
	return ref, nil
}

// ListOpenIssues lists the open issues of the repository. The issues endpoint
// also returns pull requests; those are skipped.
func (p *GitHubHostingRepository) ListOpenIssues(
	ctx context.Context,
	repo entities.RepositoryRef,
) ([]entities.Issue, error) {
	owner, name, err := entities.SplitFullName(repo.FullName)
	if err != nil {
		return nil, err
	}

	var all []entities.Issue
	opts := &gh.IssueListByRepoOptions{
		State:       stateOpen,
		ListOptions: gh.ListOptions{PerPage: perPage},
	}

	for {
		issues, resp, listErr := p.client.Issues.ListByRepo(ctx, owner, name, opts)
		if listErr != nil {
			return nil, fmt.Errorf("failed to list issues of %q: %w", repo.FullName, listErr)
		}

		for _, issue := range issues {
			if issue.IsPullRequest() {
				continue
			}
			all = append(all, entities.Issue{
				Title: issue.GetTitle(),
				URL:   issue.GetHTMLURL(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

func (p *GitHubHostingRepository) CreateIssue(
	ctx context.Context,
	repo entities.RepositoryRef,
	record entities.IssueRecord,
) (entities.Issue, error) {
	owner, name, err := entities.SplitFullName(repo.FullName)
	if err != nil {
		return entities.Issue{}, err
	}

	request := &gh.IssueRequest{
		Title: &record.Title,
		Body:  &record.Body,
	}
	if len(record.Assignees) > 0 {
		assignees := append([]string(nil), record.Assignees...)
		request.Assignees = &assignees
	}

	issue, _, err := p.client.Issues.Create(ctx, owner, name, request)
	if err != nil {
		return entities.Issue{}, fmt.Errorf("failed to create issue on %q: %w", repo.FullName, err)
	}

	return entities.Issue{
		Title: issue.GetTitle(),
		URL:   issue.GetHTMLURL(),
	}, nil
}
