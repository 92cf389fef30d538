// Package cli implements the inventario command line.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/erazemk/inventario/internal/app"
	"github.com/erazemk/inventario/internal/config"
	"github.com/erazemk/inventario/internal/logging"
)

var (
	configPath string
	dataDir    string
	logLevel   string

	addrOverride string
)

var rootCmd = &cobra.Command{
	Use:           "inventario",
	Short:         "Inventario - local inventory of items, quantities and photos",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default <data dir>/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig layers flags over the file and environment.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		if dataDir != "" {
			path = filepath.Join(dataDir, config.FileName)
		} else {
			path = config.DefaultPath()
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if addrOverride != "" {
		cfg.Addr = addrOverride
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openApp loads config, installs the logger and opens the application state.
// The returned func releases everything.
func openApp(ctx context.Context, stderrOnly bool) (*app.App, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	cleanupLog, err := logging.Setup(logging.Options{
		Level:      cfg.LogLevel,
		Path:       cfg.LogPath,
		StderrOnly: stderrOnly,
	})
	if err != nil {
		return nil, nil, err
	}

	a, err := app.Open(ctx, cfg, nil)
	if err != nil {
		cleanupLog()
		return nil, nil, fmt.Errorf("initializing: %w", err)
	}
	return a, func() {
		a.Close()
		cleanupLog()
	}, nil
}
