package repositories

import (
	"go.uber.org/dig"

	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
	domainRepos "github.com/rios0rios0/upstreamsync/internal/domain/repositories"
	gitRepo "github.com/rios0rios0/upstreamsync/internal/infrastructure/repositories/git"
	ghRepo "github.com/rios0rios0/upstreamsync/internal/infrastructure/repositories/github"
	glRepo "github.com/rios0rios0/upstreamsync/internal/infrastructure/repositories/gitlab"
	lockRepo "github.com/rios0rios0/upstreamsync/internal/infrastructure/repositories/lock"
	regenRepo "github.com/rios0rios0/upstreamsync/internal/infrastructure/repositories/regenerator"
)

// RegisterProviders registers all repository providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Hosting platforms are built per run, once the token is known
	if err := container.Provide(func() *HostingRegistry {
		reg := NewHostingRegistry()
		reg.Register(entities.ProviderGitHub, ghRepo.NewGitHubHostingRepository)
		reg.Register(entities.ProviderGitLab, glRepo.NewGitLabHostingRepository)
		return reg
	}); err != nil {
		return err
	}

	if err := container.Provide(func() domainRepos.VersionControlRepository {
		return gitRepo.NewGitVersionControlRepository()
	}); err != nil {
		return err
	}
	if err := container.Provide(func() domainRepos.ArtifactRegeneratorRepository {
		return regenRepo.NewCommandRegeneratorRepository()
	}); err != nil {
		return err
	}
	if err := container.Provide(func() domainRepos.RunLockRepository {
		return lockRepo.NewFileRunLockRepository()
	}); err != nil {
		return err
	}

	return nil
}
