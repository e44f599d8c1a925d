package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAnalysisDefaults(t *testing.T) {
	t.Setenv("SCAN_MAX_UPLOAD_BYTES", "")
	t.Setenv("SCAN_MIN_BYTES_PER_PAGE", "")
	t.Setenv("NATS_SUBJECT", "")
	t.Setenv("CONFIG_FILE", "")

	cfg := Load()
	if cfg.MaxUploadBytes != 25<<20 {
		t.Fatalf("expected default upload limit 25MiB, got %d", cfg.MaxUploadBytes)
	}
	if cfg.MinBytesPerPage != 1000 {
		t.Fatalf("expected default bytes-per-page floor 1000, got %d", cfg.MinBytesPerPage)
	}
	if cfg.NATSSubject != "scans.queued" {
		t.Fatalf("expected default subject scans.queued, got %q", cfg.NATSSubject)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("SCAN_MAX_UPLOAD_BYTES", "1048576")
	t.Setenv("SCAN_MIN_BYTES_PER_PAGE", "500")
	t.Setenv("SCORER_ENABLED", "false")
	t.Setenv("CONFIG_FILE", "")

	cfg := Load()
	if cfg.MaxUploadBytes != 1048576 {
		t.Fatalf("expected upload limit override, got %d", cfg.MaxUploadBytes)
	}
	if cfg.MinBytesPerPage != 500 {
		t.Fatalf("expected bytes-per-page override, got %d", cfg.MinBytesPerPage)
	}
	if cfg.ScorerEnabled {
		t.Fatalf("expected scorer disabled")
	}
}

func TestLoadInvalidIntFallsBack(t *testing.T) {
	t.Setenv("SCAN_MIN_BYTES_PER_PAGE", "not-a-number")
	t.Setenv("CONFIG_FILE", "")

	cfg := Load()
	if cfg.MinBytesPerPage != 1000 {
		t.Fatalf("expected fallback on unparsable value, got %d", cfg.MinBytesPerPage)
	}
}

func TestLoadAppliesYAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "api_port: \"9191\"\nmin_bytes_per_page: 750\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("API_PORT", "8080")

	cfg := Load()
	if cfg.APIPort != "9191" {
		t.Fatalf("expected yaml overlay to win, got %q", cfg.APIPort)
	}
	if cfg.MinBytesPerPage != 750 {
		t.Fatalf("expected yaml bytes-per-page 750, got %d", cfg.MinBytesPerPage)
	}
}
