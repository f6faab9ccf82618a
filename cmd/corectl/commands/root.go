// Copyright 2026 CoreDev Systems, Inc. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package commands implements the corectl CLI commands: a package-level
// rootCmd with persistent flags synced in PersistentPreRunE, one file per
// command group.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coredev/corecomm/envelope"
	"github.com/coredev/corecomm/internal/corelog"
	"github.com/coredev/corecomm/pkg/config"
)

var (
	// Version and Commit are injected at build time by main.
	Version = "dev"
	Commit  = "none"

	cfg        *config.Config
	configPath string
)

var rootCmd = &cobra.Command{
	Use:           "corectl",
	Short:         "Control and drive a device core over its host communications link",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded

		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			cfg.Logging.Level = level
		}
		if addr, _ := cmd.Flags().GetString("device"); addr != "" {
			cfg.Device.Address = addr
		}

		return corelog.Init(corelog.Config{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
			Output: cfg.Logging.Output,
		})
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default: "+config.GetDefaultConfigPath()+")")
	rootCmd.PersistentFlags().String("device", "", "device address or socket path (overrides config)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: DEBUG, INFO, WARN, ERROR (overrides config)")

	rootCmd.AddCommand(identCmd)
	rootCmd.AddCommand(clockCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(flashCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(consoleCmd)
	rootCmd.AddCommand(serveMetricsCmd)
	rootCmd.AddCommand(versionCmd)
}

// openChannel builds the Channel configured by cfg.Device.
func openChannel() (envelope.Channel, error) {
	switch cfg.Device.Transport {
	case "unix":
		return envelope.NewUnixChannel(cfg.Device.Address), nil
	case "tcp", "":
		return envelope.NewTCPChannel(cfg.Device.Address), nil
	default:
		return nil, fmt.Errorf("unsupported transport %q", cfg.Device.Transport)
	}
}
