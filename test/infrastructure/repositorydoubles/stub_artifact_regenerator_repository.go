//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
	"github.com/rios0rios0/upstreamsync/internal/domain/repositories"
)

// StubArtifactRegeneratorRepository is a stub implementation of
// repositories.ArtifactRegeneratorRepository.
type StubArtifactRegeneratorRepository struct {
	RegenerateErr error
	CallCount     int
	LastCommands  [][]string
	LastWorkspace *entities.Workspace
}

var _ repositories.ArtifactRegeneratorRepository = (*StubArtifactRegeneratorRepository)(nil)

func (s *StubArtifactRegeneratorRepository) Regenerate(
	_ context.Context,
	ws *entities.Workspace,
	commands [][]string,
) error {
	s.CallCount++
	s.LastCommands = commands
	s.LastWorkspace = ws
	return s.RegenerateErr
}
