package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	port       string
	configPath string
	envFile    string
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	envPort := os.Getenv("PORT")
	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}

	cmd := &cobra.Command{
		Use:           "topic-quiz",
		Short:         "Topic quiz generated on demand, played in the browser or the terminal",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVar(&port, "port", envPort, "port to listen on (overrides server.port)")
	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "path to YAML config")
	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with provider credentials")
	cmd.AddCommand(NewStartCmd(&configPath, &envFile, &port))
	cmd.AddCommand(NewPlayCmd(&configPath, &envFile))
	cmd.AddCommand(NewMigrateCmd(&configPath))
	return cmd
}
