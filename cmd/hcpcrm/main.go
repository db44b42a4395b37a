package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Shahin2512/HCP-Module/internal/config"
)

var version = "dev"

var (
	noColor bool
	appCfg  config.Config
)

var rootCmd = &cobra.Command{
	Use:           "hcpcrm",
	Short:         "Log healthcare-provider interactions from a form or chat",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setColor(noColor)

		cfg, err := config.Load()
		if err != nil {
			// config set/unset must still work on a broken file.
			if isConfigCmd(cmd) {
				printWarning("config: %v", err)
				return nil
			}
			return err
		}
		appCfg = cfg

		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))
		return nil
	},
}

func isConfigCmd(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c == configCmd {
			return true
		}
	}
	return false
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable coloured output")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(hcpsCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
