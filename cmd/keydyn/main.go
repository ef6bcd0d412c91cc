// Package main provides the CLI entrypoint for keydyn.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/keydyn/internal/config"
	"github.com/verte-zerg/keydyn/internal/logging"
)

var (
	configPath string
	logLevel   string

	fileCfg config.FileConfig
	logger  = zap.NewNop()
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	rootCmd := newRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if serr := logger.Sync(); serr != nil {
		// Best-effort flush; stderr sync fails on some terminals.
		_ = serr
	}
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "keydyn",
		Short:             "Extract typing dynamics from keystroke logs",
		SilenceUsage:      true,
		SilenceErrors:     false,
		PersistentPreRunE: setup,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/keydyn/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(newExtractCmd())
	rootCmd.AddCommand(newFilterCmd())
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newBrowseCmd())
	rootCmd.AddCommand(newSynthCmd())
	rootCmd.AddCommand(newRecordCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func setup(cmd *cobra.Command, _ []string) error {
	if configPath == "" {
		configPath = config.DefaultConfigPath()
	}
	// The config command must work even when the file does not parse.
	if cmd.Name() != "config" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		fileCfg = loaded
	}

	logCfg := logging.DefaultConfig()
	applyPtr(&logCfg.Level, fileCfg.Log.Level)
	applyPtr(&logCfg.Format, fileCfg.Log.Format)
	applyPtr(&logCfg.File, fileCfg.Log.File)
	applyPtr(&logCfg.MaxSizeMB, fileCfg.Log.MaxSizeMB)
	applyPtr(&logCfg.MaxBackups, fileCfg.Log.MaxBackups)
	applyPtr(&logCfg.MaxAgeDays, fileCfg.Log.MaxAgeDays)
	applyPtr(&logCfg.Compress, fileCfg.Log.Compress)
	if logLevel != "" {
		logCfg.Level = logLevel
	}

	built, err := logging.New(logCfg)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	logger = built
	logger.Debug("configuration loaded", zap.String("config", configPath), zap.String("command", cmd.Name()))
	return nil
}

func applyPtr[T any](target *T, value *T) {
	if value == nil {
		return
	}
	*target = *value
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyStringSliceConfig(cmd *cobra.Command, name string, target *[]string, value []string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = append([]string(nil), value...)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
