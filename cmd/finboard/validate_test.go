package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunValidate_ValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
port: 8080
refresh_interval: 30m
symbols:
  - symbol: VALE
watchlists:
  - name: Brazil
    tickers: [PBR, ITUB]
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	output, err := executeCmd(t, "validate", "-c", configPath)
	if err != nil {
		t.Fatalf("validate command error = %v", err)
	}

	expectedPhrases := []string{
		"Config is valid!",
		"Port:             8080",
		"Refresh interval: 30m0s",
		"1 direct + 2 from watchlists = 3 total",
	}

	for _, phrase := range expectedPhrases {
		if !strings.Contains(output, phrase) {
			t.Errorf("output missing %q\nGot: %s", phrase, output)
		}
	}
}

func TestRunValidate_InvalidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	configContent := `
symbols:
  - symbol: VALE
  - symbol: vale
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	_, err := executeCmd(t, "validate", "-c", configPath)
	if err == nil {
		t.Fatal("validate command expected error for invalid config")
	}
	if !strings.Contains(err.Error(), "invalid config") || !strings.Contains(err.Error(), "duplicate symbol") {
		t.Errorf("error = %v, want duplicate symbol error", err)
	}
}

func TestRunValidate_MissingFile(t *testing.T) {
	_, err := executeCmd(t, "validate", "-c", "/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("validate command expected error for missing file")
	}
	if !strings.Contains(err.Error(), "failed to read config file") {
		t.Errorf("error = %v, want read error", err)
	}
}

func TestRunValidate_RequiresConfigFlag(t *testing.T) {
	_, err := executeCmd(t, "validate")
	if err == nil {
		t.Fatal("validate command expected error without --config")
	}
}

func TestRunValidate_CacheDisabled(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("cache:\n  disabled: true\n"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	output, err := executeCmd(t, "validate", "-c", configPath)
	if err != nil {
		t.Fatalf("validate command error = %v", err)
	}
	if !strings.Contains(output, "Cache:            disabled") {
		t.Errorf("output missing cache line\nGot: %s", output)
	}
}
