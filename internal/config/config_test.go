package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/fiducial-tools-mcp/internal/detection"
	"github.com/ironsheep/fiducial-tools-mcp/internal/logger"
)

var configKeys = []string{
	"FIDUCIAL_MCP_LOG_LEVEL",
	"FIDUCIAL_HISTORY_DB",
	"FIDUCIAL_UNIT",
	"FIDUCIAL_BAND_WIDTH",
	"FIDUCIAL_VERTICAL_CROP_EXTRA",
	"FIDUCIAL_PEAK_WIDTH_MAX",
	"FIDUCIAL_PEAK_DIST_MAX",
	"FIDUCIAL_DARK_MARKS",
}

// isolateEnv unsets every config variable for the duration of the test and
// points FIDUCIAL_ENV_FILE at envFile.
func isolateEnv(t *testing.T, envFile string) {
	t.Helper()
	for _, k := range configKeys {
		// Setenv registers the restore; the variable must then be absent,
		// not empty, for the .env file to apply.
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	t.Setenv("FIDUCIAL_ENV_FILE", envFile)
}

func TestLoad_Defaults(t *testing.T) {
	isolateEnv(t, filepath.Join(t.TempDir(), "missing.env"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LogLevel != logger.LevelInfo {
		t.Errorf("LogLevel: got %v", cfg.LogLevel)
	}
	if cfg.HistoryDB != "" || cfg.Unit != "" || cfg.BandWidth != 0 || cfg.DarkMarks {
		t.Errorf("unexpected overrides: %+v", cfg)
	}

	p := cfg.Params()
	def := detection.DefaultParams()
	if p.Unit != def.Unit || p.BandWidth != def.BandWidth || p.Limits != def.Limits || p.Polarity != def.Polarity {
		t.Errorf("Params should equal the defaults, got %+v", p)
	}
}

func TestLoad_Environment(t *testing.T) {
	isolateEnv(t, filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("FIDUCIAL_MCP_LOG_LEVEL", "debug")
	t.Setenv("FIDUCIAL_HISTORY_DB", "/var/lib/fiducial/history.db")
	t.Setenv("FIDUCIAL_UNIT", "nm")
	t.Setenv("FIDUCIAL_BAND_WIDTH", "1500")
	t.Setenv("FIDUCIAL_VERTICAL_CROP_EXTRA", "25")
	t.Setenv("FIDUCIAL_PEAK_WIDTH_MAX", " 60 ")
	t.Setenv("FIDUCIAL_PEAK_DIST_MAX", "not-a-number")
	t.Setenv("FIDUCIAL_DARK_MARKS", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LogLevel != logger.LevelDebug || cfg.HistoryDB != "/var/lib/fiducial/history.db" {
		t.Errorf("got %+v", cfg)
	}

	p := cfg.Params()
	if p.Unit != "nm" || p.BandWidth != 1500 || p.VerticalCropExtra != 25 {
		t.Errorf("Params overrides: got %+v", p)
	}
	if p.Limits.PeakWidthMax != 60 {
		t.Errorf("PeakWidthMax: got %d, want 60", p.Limits.PeakWidthMax)
	}
	if p.Limits.PeakDistMax != detection.DefaultSpikeLimits().PeakDistMax {
		t.Errorf("invalid integer should keep the default, got %d", p.Limits.PeakDistMax)
	}
	if p.Polarity != detection.PolarityDark {
		t.Error("FIDUCIAL_DARK_MARKS should select dark polarity")
	}
}

func TestLoad_EnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "fiducial.env")
	content := "FIDUCIAL_UNIT=um\nFIDUCIAL_BAND_WIDTH=800\nFIDUCIAL_DARK_MARKS=1\n"
	if err := os.WriteFile(envFile, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	isolateEnv(t, envFile)
	// Set in the environment, so the file value is ignored.
	t.Setenv("FIDUCIAL_BAND_WIDTH", "1200")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Unit != "um" || !cfg.DarkMarks {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.BandWidth != 1200 {
		t.Errorf("environment should take precedence: got %d", cfg.BandWidth)
	}
}

func TestLoad_UnreadableEnvFile(t *testing.T) {
	// A directory exists but cannot be parsed as a .env file.
	isolateEnv(t, t.TempDir())

	if _, err := Load(); err == nil {
		t.Error("expected an error for an unreadable env file")
	}
}
