package controllers

import (
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/upstreamsync/internal/domain/commands"
	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
)

// ResetController handles the "reset" subcommand.
type ResetController struct {
	command commands.Reset
}

// NewResetController creates a new ResetController.
func NewResetController(command commands.Reset) *ResetController {
	return &ResetController{command: command}
}

// GetBind returns the Cobra command metadata for the reset controller.
func (it *ResetController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "reset [path]",
		Short: "Clean up a workspace left behind by an interrupted run",
		Long: `Abort any merge in progress, hard reset and clean the given workspace.

Use it after a run was killed in the middle of a branch. The next
run does the same cleanup on its own, so this is only needed to
inspect or reuse the clone by hand.`,
		Args: cobra.MaximumNArgs(1),
	}
}

// AddFlags adds the reset-specific flags to the given Cobra command.
func (it *ResetController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().String("lock-file", "", "Run lock file (default: .upstreamsync.lock next to the workspace)")
}

// Execute runs the cleanup path on the workspace.
func (it *ResetController) Execute(cmd *cobra.Command, args []string) error {
	lockFile, _ := cmd.Flags().GetString("lock-file")

	workspaceDir := "."
	if len(args) > 0 {
		workspaceDir = args[0]
	}

	if err := it.command.Execute(cmd.Context(), commands.ResetOptions{
		WorkspaceDir: workspaceDir,
		LockFile:     lockFile,
	}); err != nil {
		logger.Errorf("Reset failed: %v", err)
		return err
	}
	return nil
}
