package regenerator

import (
	"context"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
	"github.com/rios0rios0/upstreamsync/internal/infrastructure/repositories/shell"
)

// CommandRegeneratorRepository implements repositories.ArtifactRegeneratorRepository
// by running hook commands (e.g. `go mod vendor`) inside the workspace.
type CommandRegeneratorRepository struct {
	runner shell.Runner
}

// NewCommandRegeneratorRepository creates a regenerator backed by os/exec.
func NewCommandRegeneratorRepository() *CommandRegeneratorRepository {
	return NewCommandRegeneratorRepositoryWithRunner(shell.NewExecRunner())
}

// NewCommandRegeneratorRepositoryWithRunner creates a regenerator with a custom runner.
func NewCommandRegeneratorRepositoryWithRunner(runner shell.Runner) *CommandRegeneratorRepository {
	return &CommandRegeneratorRepository{runner: runner}
}

func (it *CommandRegeneratorRepository) Regenerate(
	ctx context.Context,
	ws *entities.Workspace,
	commands [][]string,
) error {
	for _, argv := range commands {
		logger.Infof("Regenerating artifacts: %s", strings.Join(argv, " "))
		if _, err := it.runner.Run(ctx, ws.Path, argv...); err != nil {
			return err
		}
	}
	return nil
}
