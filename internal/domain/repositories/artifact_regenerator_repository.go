package repositories

import (
	"context"

	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
)

// ArtifactRegeneratorRepository refreshes generated and vendored files after
// an upstream merge, with the merge still uncommitted.
type ArtifactRegeneratorRepository interface {
	// Regenerate runs every command in the workspace and stops at the first
	// failure, returned as *entities.CommandError.
	Regenerate(ctx context.Context, ws *entities.Workspace, commands [][]string) error
}
