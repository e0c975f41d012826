// Package cmd implements the command-line interface for the veracity
// service. It provides the root command plus subcommands for running the
// HTTP server and for one-shot analysis.
package cmd

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/nordlys-media/veracity/internal/bootstrap"
	"github.com/nordlys-media/veracity/internal/config"
)

// version is overridden at build time via -ldflags.
var version = "dev"

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// debug enables debug mode for all commands.
	debug bool

	rootCmd = &cobra.Command{
		Use:   "veracity",
		Short: "A fake news analysis service",
		Long: `Veracity classifies news text as likely real or likely fake, corroborates
the claim against recent headlines, and generates a plain-text rationale.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	// Load .env file early so environment variables are available
	_ = godotenv.Load()

	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yml or CONFIG_PATH)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug mode")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(*cobra.Command, []string) {
			fmt.Printf("veracity version %s\n", version)
		},
	})

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(analyzeCmd)
}

// loadConfig loads configuration honoring the --config and --debug flags.
func loadConfig() (*config.Config, error) {
	cfg, err := bootstrap.LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}
	if debug {
		cfg.Service.Debug = true
	}
	cfg.Service.Version = version
	return cfg, nil
}
