package cli

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"topic-quiz-service/internal/app"
	"topic-quiz-service/internal/logger"
	"topic-quiz-service/internal/ui/tui"
)

// NewPlayCmd runs a single quiz session in the terminal.
func NewPlayCmd(configPath, envFile *string) *cobra.Command {
	var (
		logFile string
		noColor bool
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a quiz in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd.Context(), cmd.OutOrStdout(), *configPath, *envFile, logFile, noColor)
		},
	}
	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file (logs are discarded otherwise)")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colors")
	return cmd
}

func runPlay(ctx context.Context, out io.Writer, configPath, envFile, logFile string, noColor bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(configPath, envFile)
	if err != nil {
		return err
	}
	// The terminal belongs to the UI, so logs only go to a file.
	log := logger.Nop()
	if logFile != "" {
		if log, err = logger.NewWithOutput(cfg.Log.Mode, logFile); err != nil {
			return err
		}
	}

	d, err := buildDeps(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer d.Close()

	ctrl := app.NewController(uuid.NewString(), d.source, d.controllerOptions())
	defer ctrl.Close()
	return tui.Run(ctx, ctrl, out, tui.Options{NoColor: noColor})
}
