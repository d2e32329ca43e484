package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mark-chris/checklist/internal/config"
)

func setupHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{"CHECKLIST_SERVER_URL", "CHECKLIST_LOG_LEVEL", "CHECKLIST_LANGUAGE", "CHECKLIST_OTEL_ENDPOINT", "CHECKLIST_OTEL_DISABLED"} {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
	return home
}

func TestInitCommand(t *testing.T) {
	home := setupHome(t)

	out, err := run(t, "", "init", "--server", "https://checklist.example.com")
	if err != nil {
		t.Fatalf("init command failed: %v", err)
	}
	if !strings.Contains(out, "Configuration initialized") {
		t.Errorf("unexpected output: %s", out)
	}

	data, err := os.ReadFile(filepath.Join(home, ".checklist", "config.yaml"))
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}
	if cfg.Server.URL != "https://checklist.example.com" || cfg.UI.Language != config.DefaultLanguage {
		t.Errorf("unexpected config %+v", cfg)
	}

	_, err = run(t, "", "init")
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("expected init to refuse overwriting, got %v", err)
	}
}

func TestInitCommand_InvalidServer(t *testing.T) {
	home := setupHome(t)

	if _, err := run(t, "", "init", "--server", "ftp://x"); err == nil {
		t.Fatal("expected an invalid URL to be rejected")
	}
	if _, err := os.Stat(filepath.Join(home, ".checklist", "config.yaml")); !os.IsNotExist(err) {
		t.Errorf("expected no config file, got %v", err)
	}
}

func TestConfigShowCommand(t *testing.T) {
	home := setupHome(t)
	configDir := filepath.Join(home, ".checklist")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}

	configYAML := `server:
  url: http://test:9090
logging:
  level: debug
ui:
  language: en
`
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(configYAML), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	out, err := run(t, "", "config", "show")
	if err != nil {
		t.Fatalf("config show command failed: %v", err)
	}
	for _, part := range []string{"URL: http://test:9090", "Level: debug", "Language: en", "plain http"} {
		if !strings.Contains(out, part) {
			t.Errorf("expected %q in output:\n%s", part, out)
		}
	}
}

func TestConfigShowCommand_EnvOverride(t *testing.T) {
	setupHome(t)
	t.Setenv("CHECKLIST_SERVER_URL", "https://override.example.com")

	out, err := run(t, "", "config", "show")
	if err != nil {
		t.Fatalf("config show command failed: %v", err)
	}
	if !strings.Contains(out, "URL: https://override.example.com") {
		t.Errorf("expected env override in output:\n%s", out)
	}
	if !strings.Contains(out, "Language: de") {
		t.Errorf("expected default language in output:\n%s", out)
	}
}

func TestConfigSetCommand(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{name: "server url", key: "server.url", value: "https://checklist.example.com"},
		{name: "logging level", key: "logging.level", value: "warn"},
		{name: "language", key: "ui.language", value: "en"},
		{name: "telemetry endpoint", key: "telemetry.endpoint", value: "http://collector:4318"},
		{name: "bad telemetry endpoint", key: "telemetry.endpoint", value: "collector", wantErr: "invalid configuration"},
		{name: "bad level", key: "logging.level", value: "loud", wantErr: "invalid logging level"},
		{name: "bad language", key: "ui.language", value: "fr", wantErr: "invalid language"},
		{name: "bad url", key: "server.url", value: "not a url", wantErr: "invalid configuration"},
		{name: "unknown section", key: "profiles.directory", value: "/tmp", wantErr: "unknown config section"},
		{name: "unknown field", key: "server.port", value: "1", wantErr: "unknown server field"},
		{name: "bad format", key: "server", value: "x", wantErr: "invalid key format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupHome(t)

			out, err := run(t, "", "config", "set", tt.key, tt.value)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("config set failed: %v", err)
			}
			if !strings.Contains(out, "Updated "+tt.key) {
				t.Errorf("unexpected output: %s", out)
			}

			cfg, err := config.Load()
			if err != nil {
				t.Fatalf("failed to reload config: %v", err)
			}
			got := map[string]string{
				"server.url":         cfg.Server.URL,
				"logging.level":      cfg.Logging.Level,
				"ui.language":        cfg.UI.Language,
				"telemetry.endpoint": cfg.Telemetry.Endpoint,
			}[tt.key]
			if got != tt.value {
				t.Errorf("expected %s = %q, got %q", tt.key, tt.value, got)
			}
		})
	}
}

func TestConfigSetCommand_KeepsEnvironmentOutOfFile(t *testing.T) {
	home := setupHome(t)
	t.Setenv("CHECKLIST_SERVER_URL", "https://override.example.com")
	t.Setenv("CHECKLIST_LANGUAGE", "en")

	if _, err := run(t, "", "config", "set", "logging.level", "warn"); err != nil {
		t.Fatalf("config set failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(home, ".checklist", "config.yaml"))
	if err != nil {
		t.Fatalf("failed to read config file: %v", err)
	}
	saved := string(data)
	if strings.Contains(saved, "override.example.com") || strings.Contains(saved, "language: en") {
		t.Errorf("expected environment overrides to stay out of the file:\n%s", saved)
	}
	if !strings.Contains(saved, "level: warn") || !strings.Contains(saved, "url: http://localhost:8000") {
		t.Errorf("expected the new level and the file defaults:\n%s", saved)
	}
}

func TestConfigShowCommand_Telemetry(t *testing.T) {
	setupHome(t)
	t.Setenv("CHECKLIST_OTEL_ENDPOINT", "http://collector:4318")

	out, err := run(t, "", "config", "show")
	if err != nil {
		t.Fatalf("config show command failed: %v", err)
	}
	if !strings.Contains(out, "Endpoint: http://collector:4318") {
		t.Errorf("expected the telemetry endpoint in output:\n%s", out)
	}
}

func TestConfigKeyCompletion(t *testing.T) {
	keys, directive := configKeyCompletion(&cobra.Command{}, nil, "")
	if directive != cobra.ShellCompDirectiveNoFileComp {
		t.Errorf("unexpected directive %v", directive)
	}
	if len(keys) != 4 {
		t.Errorf("expected 4 keys, got %v", keys)
	}

	values, _ := configKeyCompletion(&cobra.Command{}, []string{"ui.language"}, "")
	if strings.Join(values, ",") != "de,en" {
		t.Errorf("unexpected language completions %v", values)
	}

	values, _ = configKeyCompletion(&cobra.Command{}, []string{"server.url", "x"}, "")
	if len(values) != 0 {
		t.Errorf("expected no completions, got %v", values)
	}
}
