package controllers

import (
	"fmt"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/upstreamsync/internal/domain/commands"
	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
)

// RunController handles the "run" subcommand.
type RunController struct {
	command commands.Run
}

// NewRunController creates a new RunController.
func NewRunController(command commands.Run) *RunController {
	return &RunController{command: command}
}

// GetBind returns the Cobra command metadata for the run controller.
func (it *RunController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "run",
		Short: "Synchronize the downstream branches with upstream",
		Long: `Merge every configured upstream branch into its downstream branch.

This is the main command intended to be used in a cronjob.
It reads the configuration file, clones or opens the downstream
repository, squash-merges the overlay branch once per branch,
merges upstream and pushes the result. A failing pair is reported
as an issue on the downstream repository and the run moves on.`,
		Args: cobra.NoArgs,
	}
}

// AddFlags adds the run-specific flags to the given Cobra command.
func (it *RunController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("upstream", "u", "", "Upstream repository (owner/name)")
	cmd.Flags().StringP("downstream", "d", "", "Downstream repository (owner/name)")
	cmd.Flags().StringP("upstream-branch", "U", "",
		"Upstream branch to merge, replaces the configured branches (requires --downstream-branch)")
	cmd.Flags().StringP("downstream-branch", "D", "",
		"Downstream branch to merge into, replaces the configured branches (requires --upstream-branch)")
	cmd.Flags().StringP("overlay-branch", "o", "", "Downstream branch squash-merged once into every branch")
	cmd.Flags().StringSliceP("always-overlay", "a", nil,
		"Downstream branches that always get the overlay merged, even when already merged")
	cmd.Flags().BoolP("exit-on-error", "e", false, "Stop the run at the first failing branch")
	cmd.Flags().Bool("no-push", false, "Do not push the merged branches")
	cmd.Flags().Bool("no-issue", false, "Do not file issues for failing branches")
}

// Execute loads the configuration and runs the synchronization.
func (it *RunController) Execute(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")

	overrides := entities.SettingsOverrides{}
	overrides.Upstream, _ = cmd.Flags().GetString("upstream")
	overrides.Downstream, _ = cmd.Flags().GetString("downstream")
	overrides.UpstreamBranch, _ = cmd.Flags().GetString("upstream-branch")
	overrides.DownstreamBranch, _ = cmd.Flags().GetString("downstream-branch")
	overrides.OverlayBranch, _ = cmd.Flags().GetString("overlay-branch")
	overrides.AlwaysOverlay, _ = cmd.Flags().GetStringSlice("always-overlay")
	overrides.ExitOnError, _ = cmd.Flags().GetBool("exit-on-error")
	overrides.NoPush, _ = cmd.Flags().GetBool("no-push")
	overrides.NoIssue, _ = cmd.Flags().GetBool("no-issue")

	// Load configuration
	cfgPath := configPath
	if cfgPath == "" {
		var err error
		cfgPath, err = entities.FindConfigFile()
		if err != nil {
			return fmt.Errorf("no config file found: %w\nSpecify one with --config or create upstreamsync.yaml", err)
		}
	}

	logger.Infof("Using config file: %s", cfgPath)

	settings, err := entities.NewSettings(cfgPath, overrides)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.Info("Starting upstreamsync run...")

	if runErr := it.command.Execute(cmd.Context(), settings, commands.RunOptions{Verbose: verbose}); runErr != nil {
		logger.Errorf("Run failed: %v", runErr)
		return runErr
	}
	return nil
}
