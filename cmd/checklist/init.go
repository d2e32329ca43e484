package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mark-chris/checklist/internal/config"
)

func newInitCmd() *cobra.Command {
	var serverURL string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration",
		Long:  "Create the configuration file for the checklist CLI",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath := config.GetConfigPath()

			// Check if config already exists
			if _, err := os.Stat(configPath); err == nil {
				return fmt.Errorf("configuration already exists at %s\n\nTo reconfigure, either:\n  1. Edit the file directly, or\n  2. Delete it and run 'checklist init' again, or\n  3. Use 'checklist config set <key> <value>' to update specific values", configPath)
			}

			cfg := config.Default()
			if serverURL != "" {
				cfg.Server.URL = serverURL
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			if err := cfg.Save(); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			cmd.Printf("Configuration initialized at %s\n", config.GetConfigDir())
			return nil
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", "", "Backend URL (default "+config.DefaultServerURL+")")
	return cmd
}
