// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Neurotap Labs

package cmd

import (
	"fmt"

	"github.com/neurotap/mindstat/internal/config"
	"github.com/spf13/cobra"
)

var (
	// Serial connection flags
	portName string
	baudRate int

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// Configuration file flag
	configPath string

	// fileConfig holds the loaded configuration file, nil when --config
	// was not given. Flags the user set explicitly always win over it.
	fileConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "mindstat",
	Short: "NeuroSky ThinkGear EEG Monitor",
	Long: `Mindstat - A CLI tool for decoding and monitoring ThinkGear EEG telemetry
from NeuroSky headsets (MindWave, MindFlex and similar devices).

Provides live monitoring in diagnostic and plot form, raw frame watching,
connectivity probing, session capture and a synthetic headset simulator.

Connection modes:
  Serial:    --port /dev/ttyUSB0 [--baud 57600]
  WebSocket: --url ws://host/path [--username user]

For WebSocket authentication, the password is read from the MINDSTAT_PASSWORD
environment variable, or prompted interactively if not set. The --password
flag is intentionally not provided to avoid leaking credentials in shell history.`,
	Version:           "1.0.0",
	PersistentPreRunE: loadConfigFile,
}

func init() {
	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 57600, "Baud rate (serial only)")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	// Configuration file flag
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML configuration file")
}

// loadConfigFile reads --config and fills in connection settings for
// flags the user left at their defaults. Monitor settings are applied by
// the commands that declare the corresponding flags.
func loadConfigFile(cmd *cobra.Command, args []string) error {
	if configPath == "" {
		return nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("config %s: %w", configPath, err)
	}
	config.Normalize(cfg)

	flags := cmd.Flags()
	if !flags.Changed("port") && cfg.Connection.Port != "" {
		portName = cfg.Connection.Port
	}
	if !flags.Changed("baud") && cfg.Connection.Baud != 0 {
		baudRate = cfg.Connection.Baud
	}
	if !flags.Changed("url") && cfg.Connection.URL != "" {
		wsURL = cfg.Connection.URL
	}
	if !flags.Changed("username") && cfg.Connection.Username != "" {
		wsUsername = cfg.Connection.Username
	}
	if !flags.Changed("no-ssl-verify") && cfg.Connection.NoSSLVerify {
		wsNoSSLVerify = true
	}

	fileConfig = cfg
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
