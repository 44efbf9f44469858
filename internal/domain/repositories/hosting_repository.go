package repositories

import (
	"context"

	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
)

// HostingRepository abstracts the platform hosting the repositories and the
// downstream issue tracker (GitHub, GitLab).
type HostingRepository interface {
	// Name returns the provider identifier (e.g. "github").
	Name() string

	GetRepository(ctx context.Context, fullName string) (entities.RepositoryRef, error)
	ListOpenIssues(ctx context.Context, repo entities.RepositoryRef) ([]entities.Issue, error)
	CreateIssue(ctx context.Context, repo entities.RepositoryRef, record entities.IssueRecord) (entities.Issue, error)
}
