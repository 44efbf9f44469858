package gitlab

import (
	"context"
	"errors"
	"fmt"

	logger "github.com/sirupsen/logrus"
	gl "gitlab.com/gitlab-org/api/client-go"

	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
	"github.com/rios0rios0/upstreamsync/internal/domain/repositories"
)

const (
	providerName = "gitlab"
	perPage      = 100
	stateOpened  = "opened"
)

var errClientNotInitialized = errors.New("gitlab client not initialized")

// GitLabHostingRepository implements repositories.HostingRepository for GitLab.
type GitLabHostingRepository struct {
	client        *gl.Client
	cloneProtocol string
}

// NewGitLabHostingRepository creates a GitLab client; baseURL targets a self-hosted instance.
func NewGitLabHostingRepository(token, baseURL, cloneProtocol string) (repositories.HostingRepository, error) {
	var options []gl.ClientOptionFunc
	if baseURL != "" {
		options = append(options, gl.WithBaseURL(baseURL))
	}
	client, err := gl.NewClient(token, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitLab client: %w", err)
	}
	return NewGitLabHostingRepositoryWithClient(client, cloneProtocol), nil
}

// NewGitLabHostingRepositoryWithClient wraps an existing client-go client.
func NewGitLabHostingRepositoryWithClient(client *gl.Client, cloneProtocol string) *GitLabHostingRepository {
	return &GitLabHostingRepository{client: client, cloneProtocol: cloneProtocol}
}

func (p *GitLabHostingRepository) Name() string { return providerName }

func (p *GitLabHostingRepository) GetRepository(
	ctx context.Context,
	fullName string,
) (entities.RepositoryRef, error) {
	if p.client == nil {
		return entities.RepositoryRef{}, errClientNotInitialized
	}

	//nolint:exhaustruct // default project view
	project, _, err := p.client.Projects.GetProject(fullName, &gl.GetProjectOptions{}, gl.WithContext(ctx))
	if err != nil {
		return entities.RepositoryRef{}, fmt.Errorf("failed to get project %q: %w", fullName, err)
	}

	ref := entities.RepositoryRef{
		FullName: project.PathWithNamespace,
		Name:     project.Path,
		SSHURL:   project.SSHURLToRepo,
		HTTPSURL: project.HTTPURLToRepo,
		WebURL:   project.WebURL,
	}
	ref.CloneURL = ref.SSHURL
	if p.cloneProtocol == entities.CloneProtocolHTTPS {
		ref.CloneURL = ref.HTTPSURL
	}
	return ref, nil
}

func (p *GitLabHostingRepository) ListOpenIssues(
	ctx context.Context,
	repo entities.RepositoryRef,
) ([]entities.Issue, error) {
	if p.client == nil {
		return nil, errClientNotInitialized
	}

	var all []entities.Issue
	opts := &gl.ListProjectIssuesOptions{
		ListOptions: gl.ListOptions{PerPage: perPage},
		State:       gl.Ptr(stateOpened),
	}

	for {
		issues, resp, err := p.client.Issues.ListProjectIssues(repo.FullName, opts, gl.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to list issues of %q: %w", repo.FullName, err)
		}

		for _, issue := range issues {
			all = append(all, entities.Issue{
				Title: issue.Title,
				URL:   issue.WebURL,
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

func (p *GitLabHostingRepository) CreateIssue(
	ctx context.Context,
	repo entities.RepositoryRef,
	record entities.IssueRecord,
) (entities.Issue, error) {
	if p.client == nil {
		return entities.Issue{}, errClientNotInitialized
	}

	opts := &gl.CreateIssueOptions{
		Title:       gl.Ptr(record.Title),
		Description: gl.Ptr(record.Body),
	}
	if ids := p.resolveAssignees(ctx, record.Assignees); len(ids) > 0 {
		opts.AssigneeIDs = &ids
	}

	issue, _, err := p.client.Issues.CreateIssue(repo.FullName, opts, gl.WithContext(ctx))
	if err != nil {
		return entities.Issue{}, fmt.Errorf("failed to create issue on %q: %w", repo.FullName, err)
	}

	return entities.Issue{
		Title: issue.Title,
		URL:   issue.WebURL,
	}, nil
}

// resolveAssignees maps usernames to user IDs. Unknown users are skipped so a
// typo in the configuration does not prevent the issue from being filed.
func (p *GitLabHostingRepository) resolveAssignees(ctx context.Context, usernames []string) []int64 {
	ids := make([]int64, 0, len(usernames))
	for _, username := range usernames {
		users, _, err := p.client.Users.ListUsers(
			&gl.ListUsersOptions{Username: gl.Ptr(username)},
			gl.WithContext(ctx),
		)
		if err != nil || len(users) == 0 {
			logger.Warnf("Cannot resolve GitLab user %q, not assigning: %v", username, err)
			continue
		}
		ids = append(ids, users[0].ID)
	}
	return ids
}
