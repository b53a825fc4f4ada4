package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"aerial/internal/config"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.TMDB.APIKey = "test"
	cfgVal.EPG.Enabled = false
	cfgVal.Paths.DatabasePath = filepath.Join(base, "catalog.db")
	cfgVal.Paths.BaseDir = filepath.Join(base, "inbox")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.ChannelListPath = ""
	cfg := &cfgVal

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	body, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("output %q does not contain %q", haystack, needle)
	}
}

func TestCLISeedStatusAndMaintenance(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"seed-channels"}, env.configPath)
	if err != nil {
		t.Fatalf("seed-channels: %v", err)
	}
	requireContains(t, out, "Seeded")

	out, _, err = runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Channels")
	requireContains(t, out, "never")

	out, _, err = runCLI(t, []string{"rebuild-keys"}, env.configPath)
	if err != nil {
		t.Fatalf("rebuild-keys: %v", err)
	}
	requireContains(t, out, "Rebuilt 0 of 0")

	out, _, err = runCLI(t, []string{"vacuum"}, env.configPath)
	if err != nil {
		t.Fatalf("vacuum: %v", err)
	}
	requireContains(t, out, "Catalog compacted")
}

func TestCLIJobsWithEPGDisabled(t *testing.T) {
	env := setupCLITestEnv(t)

	for _, job := range []string{"daily", "hourly", "weekly"} {
		out, _, err := runCLI(t, []string{job}, env.configPath)
		if err != nil {
			t.Fatalf("%s: %v", job, err)
		}
		requireContains(t, out, "job finished")
	}
}

func TestCLIIngestRequiresKnownChannel(t *testing.T) {
	env := setupCLITestEnv(t)

	path := filepath.Join(env.baseDir, "grelha.xlsx")
	if err := os.WriteFile(path, []byte("stub"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, _, err := runCLI(t, []string{"ingest", path}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "cannot infer channel") {
		t.Fatalf("expected channel inference error, got %v", err)
	}
}

func TestCLISetMatchFlagValidation(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"set-match", "1", "2"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "--movie or --series") {
		t.Fatalf("expected flag validation error, got %v", err)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("TMDB_KEY", "test")

	tmp := t.TempDir()
	target := filepath.Join(tmp, "config.toml")
	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	out, _, err = runCLI(t, []string{"config", "validate"}, "")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
}

func TestConfigShowRedactsSecrets(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "[tmdb]")
	requireContains(t, out, "********")
	if strings.Contains(out, "api_key = 'test'") || strings.Contains(out, `api_key = "test"`) {
		t.Fatalf("api key leaked: %s", out)
	}
}
