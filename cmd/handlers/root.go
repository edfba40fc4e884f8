/*
Copyright © 2025 Your Name

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package handlers

import (
	"fmt"
	"os"

	"podbrief/internal/config"
	"podbrief/internal/logger"

	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string
)

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "podbrief",
		Short: "Summarize pod meetings from their Gemini notes",
		Long: `podbrief - Pod Leader meeting automation

Finds recent pod meetings on the calendar, locates their transcript
documents, summarizes them with Gemini and distributes the results:
  • a concise summary inserted into the weekly summary document
  • the raw transcript appended to the archive document
  • an HTML summary email to the pod

Examples:
  # Process new meetings once
  podbrief run

  # Run the daily schedule and the HTTP trigger
  podbrief serve

  # Check configuration and document access
  podbrief doctor`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./.podbrief.yaml or $HOME/.podbrief.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")

	rootCmd.AddCommand(NewRunCmd())
	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewProcessedCmd())
	rootCmd.AddCommand(NewResetCmd())
	rootCmd.AddCommand(NewDoctorCmd())
	rootCmd.AddCommand(NewMatchCmd())
	rootCmd.AddCommand(NewExtractCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads configuration and configures the logger from it.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.Logging.Level
	if cfg.App.Debug {
		level = "debug"
	}
	if logLevel != "" {
		level = logLevel
	}
	logger.Configure(level, cfg.Logging.Format, os.Stderr)

	return cfg, nil
}

// loadValidConfig is loadConfig followed by validation. Warnings are logged.
func loadValidConfig() (config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return config.Config{}, err
	}

	warnings, err := cfg.Validate()
	for _, w := range warnings {
		logger.Warn(w)
	}
	if err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
