package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark-chris/checklist/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  "View and update checklist CLI configuration settings",
	}
	cmd.AddCommand(newConfigShowCmd(), newConfigSetCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long:  "Display the current effective configuration including environment variable overrides",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			cmd.Printf("Server:\n")
			cmd.Printf("  URL: %s\n", cfg.Server.URL)
			cmd.Printf("\n")
			cmd.Printf("Logging:\n")
			cmd.Printf("  Level: %s\n", cfg.Logging.Level)
			cmd.Printf("\n")
			cmd.Printf("UI:\n")
			cmd.Printf("  Language: %s\n", cfg.UI.Language)
			if cfg.Telemetry.Endpoint != "" && !cfg.Telemetry.Disabled {
				cmd.Printf("\n")
				cmd.Printf("Telemetry:\n")
				cmd.Printf("  Endpoint: %s\n", cfg.Telemetry.Endpoint)
			}

			if cfg.IsInsecure() {
				cmd.Printf("\nWarning: %s uses plain http\n", cfg.Server.URL)
			}
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "set <key> <value>",
		Short:             "Update configuration value",
		Long:              "Update a configuration value in the config file. Example: checklist config set server.url https://checklist.example.com",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: configKeyCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := args[1]

			cfg, err := config.LoadFile()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			section, field, ok := strings.Cut(key, ".")
			if !ok || strings.Contains(field, ".") {
				return fmt.Errorf("invalid key format. Expected format: section.field (e.g., server.url)")
			}

			switch section {
			case "server":
				switch field {
				case "url":
					cfg.Server.URL = value
				default:
					return fmt.Errorf("unknown server field: %s", field)
				}
			case "logging":
				switch field {
				case "level":
					cfg.Logging.Level = value
				default:
					return fmt.Errorf("unknown logging field: %s", field)
				}
			case "ui":
				switch field {
				case "language":
					cfg.UI.Language = value
				default:
					return fmt.Errorf("unknown ui field: %s", field)
				}
			case "telemetry":
				switch field {
				case "endpoint":
					cfg.Telemetry.Endpoint = value
				default:
					return fmt.Errorf("unknown telemetry field: %s", field)
				}
			default:
				return fmt.Errorf("unknown config section: %s", section)
			}

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			if err := cfg.Save(); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			cmd.Printf("Updated %s to: %s\n", key, value)
			return nil
		},
	}
}

// configKeyCompletion provides tab completion for config keys
func configKeyCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	switch len(args) {
	case 0:
		return []string{
			"server.url\tURL of the checklist backend",
			"logging.level\tLogging level (debug, info, warn, error)",
			"ui.language\tLanguage of messages (de, en)",
			"telemetry.endpoint\tOTLP/HTTP collector URL (empty disables tracing)",
		}, cobra.ShellCompDirectiveNoFileComp
	case 1:
		switch args[0] {
		case "logging.level":
			return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
		case "ui.language":
			return []string{"de", "en"}, cobra.ShellCompDirectiveNoFileComp
		}
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}
