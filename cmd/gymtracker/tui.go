package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/2beens/gymtracker/internal/app"
	"github.com/2beens/gymtracker/internal/config"
	"github.com/2beens/gymtracker/internal/logging"
	"github.com/2beens/gymtracker/internal/ui"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var errStartup = errors.New("gymtracker could not start")

func tuiCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the interactive terminal client",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), flags)
		},
	}
}

func runTUI(ctx context.Context, flags *rootFlags) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(flags.env, flags.configPath)
	if err != nil {
		return showStartupError(ctx, "Configuration error", err)
	}
	secrets, err := config.LoadSecrets(flags.envFile)
	if err != nil {
		return showStartupError(ctx, "Configuration error", err)
	}

	// the screen belongs to the ui, logs only go to the file
	logging.Setup(logging.LoggerSetupParams{
		LogFileName:      cfg.LogsPath,
		LogToStdout:      cfg.LogToStdout,
		LogLevel:         cfg.LogLevel,
		LogFormatJSON:    cfg.LogFormatJSON,
		Environment:      cfg.Environment,
		SentryEnabled:    cfg.SentryEnabled,
		SentryDSN:        secrets.SentryDSN,
		SentryServerName: "gymtracker-tui",
		Quiet:            true,
	})
	log.Warnf("---->> running in [%s] environment", cfg.Environment)

	application, err := app.New(ctx, app.Params{
		Config:      cfg,
		Secrets:     secrets,
		VersionInfo: versionInfo(),
	})
	if err != nil {
		log.Errorf("new app: %s", err)
		return showStartupError(ctx, "Could not connect to the backend", err)
	}
	defer application.Close()

	return application.Run(ctx)
}

type noCommands struct{}

func (noCommands) Execute(context.Context, string) {}

// showStartupError replaces the sign in view with the error until the user
// quits, and always fails the command.
func showStartupError(ctx context.Context, title string, err error) error {
	screen := ui.NewScreen(0)
	screen.ShowStatic(ui.ErrorView(title, err.Error()+"\n\nType quit or press ctrl+c to exit."))
	if runErr := screen.Run(ctx, noCommands{}); runErr != nil {
		fmt.Fprintln(os.Stderr, ui.ErrorView(title, err.Error()))
	}
	return fmt.Errorf("%w: %w", errStartup, err)
}
