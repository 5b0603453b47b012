package main

import (
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vsarchitect/vsa/internal/config"
)

// Global flag values.
var (
	configPath string
	noColor    bool
)

// rootCmd is the base command for vsa.
var rootCmd = &cobra.Command{
	Use:   "vsa",
	Short: "Virtual Service Architect AI gateway",
	Long: `vsa serves the Virtual Service Architect API: a thin gateway in front of
an OpenRouter-compatible chat-completion service, plus the stored settings and
prompt templates used to generate project summaries, call preparation and scopes.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if noColor {
			color.NoColor = true
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "path to config.toml (or set CONFIG_PATH)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(versionCmd)
}

func defaultConfigPath() string {
	if value := strings.TrimSpace(os.Getenv("CONFIG_PATH")); value != "" {
		return value
	}
	return config.DefaultConfigPath
}
