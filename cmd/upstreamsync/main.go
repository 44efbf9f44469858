package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/upstreamsync/internal"
)

func buildRootCommand() *cobra.Command {
	//nolint:exhaustruct // Minimal Command initialization with required fields only
	cmd := &cobra.Command{
		Use:   "upstreamsync",
		Short: "Keep a downstream fork in sync with its upstream repository",
		Long: `A bot that merges upstream branches into the matching branches of a
downstream fork, keeping the fork's own changes on top.

For every configured branch pair it squash-merges the overlay branch
once, merges upstream, regenerates artifacts and pushes. Failures are
filed as issues on the downstream repository.

Supports GitHub and GitLab as hosting providers.

Usage modes:
  upstreamsync run            Synchronize using a config file (cronjob)
  upstreamsync reset [path]   Clean up after an interrupted run`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global persistent flags
	cmd.PersistentFlags().StringP("config", "c", "",
		"Path to config file (default: auto-detect)")
	cmd.PersistentFlags().BoolP("verbose", "v", false,
		"Enable verbose output")

	return cmd
}

func addSubcommands(rootCmd *cobra.Command, appContext *internal.AppInternal) {
	for _, controller := range appContext.GetControllers() {
		bind := controller.GetBind()
		//nolint:exhaustruct // Minimal Command initialization with required fields only
		subCmd := &cobra.Command{
			Use:   bind.Use,
			Short: bind.Short,
			Long:  bind.Long,
			Args:  bind.Args,
			RunE:  controller.Execute,
		}

		// Add controller-specific flags
		controller.AddFlags(subCmd)

		rootCmd.AddCommand(subCmd)
	}
}

func main() {
	//nolint:exhaustruct // Minimal TextFormatter initialization with required fields only
	logger.SetFormatter(&logger.TextFormatter{
		ForceColors:   true,
		FullTimestamp: true,
	})
	if os.Getenv("DEBUG") == "true" {
		logger.SetLevel(logger.DebugLevel)
	}

	// A signal stops the run between branch pairs
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cobraRoot := buildRootCommand()

	// Inject controllers via DIG
	appContext := injectAppContext()
	addSubcommands(cobraRoot, appContext)

	if err := cobraRoot.ExecuteContext(ctx); err != nil {
		stop()
		logger.Fatalf("Error executing 'upstreamsync': %s", err)
	}
}
