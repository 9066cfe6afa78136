// Package cmd provides the prerender command-line interface.
//
// Configuration System:
//
//	Configuration is read from several sources with clear precedence:
//	1. Command-line flags (--config, --log-level, ...) - highest priority
//	2. PRERENDER_CONFIG_FILE environment variable - custom config file path
//	3. Individual environment variables (PRERENDER_RENDER_SLOT_FALLBACK, ...)
//	4. Configuration file (.prerender.yml) - lowest priority
//
// Environment Variables:
//
//	PRERENDER_CONFIG_FILE: Path to custom configuration file
//	PRERENDER_RENDER_MAX_DEPTH: Override the nesting bound
//	PRERENDER_SESSION_LOCALE: Override the message locale
//	And the rest following the PRERENDER_<SECTION>_<OPTION> pattern
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/prerender/internal/config"
	"github.com/conneroisu/prerender/internal/logging"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "prerender",
	Short: "Render custom-element component trees to static HTML",
	Long: `Prerender expands custom-element components into static HTML with
scoped CSS, ready to serve before any script runs.

Components are declared in a YAML manifest: tag, properties, markup and
style templates, and the other components they use.

Quick Start:
  prerender list components.yml                 List declared components
  prerender render components.yml x-card        Render one element
  prerender render components.yml x-card -w     Re-render on every change

Command Aliases (for faster typing):
  render (r), list (l)`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .prerender.yml, can also use PRERENDER_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// initConfig points viper at the config file and environment. A missing
// config file is not an error; defaults apply.
func initConfig() {
	config.Bind(viper.GetViper(), cfgFile)

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig loads the configuration and builds the command's logger.
func loadConfig(cmd *cobra.Command) (*config.Config, logging.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:     logging.ParseLevel(cfg.Log.Level),
		Format:    cfg.Log.Format,
		Output:    cmd.ErrOrStderr(),
		Component: "cli",
	})
	return cfg, logger, nil
}
