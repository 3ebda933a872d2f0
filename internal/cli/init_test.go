package cli

import (
	"os"
	"path/filepath"
	"testing"

	"ledger/internal/config"
	"ledger/internal/log"
)

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("LEDGER_TEST_VALUE=from-dotenv\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LEDGER_TEST_VALUE", "")
	os.Unsetenv("LEDGER_TEST_VALUE")

	LoadEnvFile(path)
	if got := os.Getenv("LEDGER_TEST_VALUE"); got != "from-dotenv" {
		t.Fatalf("LEDGER_TEST_VALUE = %q", got)
	}

	// Missing files are ignored.
	LoadEnvFile(filepath.Join(t.TempDir(), "missing.env"))
}

func TestSetupLogger(t *testing.T) {
	cfg := &config.Config{LogLevel: "debug", LogFormat: "json"}
	logger := SetupLogger(cfg, log.ComponentNotifier)
	if logger.Component() != log.ComponentNotifier {
		t.Fatalf("component = %q", logger.Component())
	}
}
