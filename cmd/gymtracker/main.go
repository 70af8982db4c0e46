package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

type rootFlags struct {
	env        string
	configPath string
	envFile    string
}

func main() {
	flags := &rootFlags{}
	rootCmd := &cobra.Command{
		Use:           "gymtracker",
		Short:         "Track workouts, personal records and goals from the terminal",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVar(&flags.env, "env", "development", "environment [prod | production | dev | development]")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "./config.toml", "path for the TOML config file")
	rootCmd.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "optional file with secrets, already set env vars win")

	rootCmd.AddCommand(tuiCmd(flags))
	rootCmd.AddCommand(routinesCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
