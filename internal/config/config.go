// Package config loads runtime settings from the environment.
//
// A .env file in the working directory (or the file named by
// FIDUCIAL_ENV_FILE) is read first; variables already present in the
// environment take precedence over it.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/ironsheep/fiducial-tools-mcp/internal/detection"
	"github.com/ironsheep/fiducial-tools-mcp/internal/logger"
)

// Config holds settings shared by the MCP server and the CLI.
type Config struct {
	LogLevel logger.Level

	// HistoryDB is the SQLite file for measurement history. Empty disables
	// history.
	HistoryDB string

	// Detection overrides. Zero values leave the built-in defaults alone.
	Unit              string
	BandWidth         int
	VerticalCropExtra int
	PeakWidthMax      int
	PeakDistMax       int
	DarkMarks         bool
}

// Load reads the optional .env file and the environment.
func Load() (*Config, error) {
	envFile := getEnv("FIDUCIAL_ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	return &Config{
		LogLevel:          logger.ParseLevel(getEnv("FIDUCIAL_MCP_LOG_LEVEL", "info")),
		HistoryDB:         getEnv("FIDUCIAL_HISTORY_DB", ""),
		Unit:              getEnv("FIDUCIAL_UNIT", ""),
		BandWidth:         getEnvAsInt("FIDUCIAL_BAND_WIDTH", 0),
		VerticalCropExtra: getEnvAsInt("FIDUCIAL_VERTICAL_CROP_EXTRA", 0),
		PeakWidthMax:      getEnvAsInt("FIDUCIAL_PEAK_WIDTH_MAX", 0),
		PeakDistMax:       getEnvAsInt("FIDUCIAL_PEAK_DIST_MAX", 0),
		DarkMarks:         getEnvAsBool("FIDUCIAL_DARK_MARKS", false),
	}, nil
}

// Params returns the detection defaults with this configuration's
// overrides applied.
func (c *Config) Params() detection.Params {
	p := detection.DefaultParams()
	if c.Unit != "" {
		p.Unit = c.Unit
	}
	if c.BandWidth > 0 {
		p.BandWidth = c.BandWidth
	}
	if c.VerticalCropExtra > 0 {
		p.VerticalCropExtra = c.VerticalCropExtra
	}
	if c.PeakWidthMax > 0 {
		p.Limits.PeakWidthMax = c.PeakWidthMax
	}
	if c.PeakDistMax > 0 {
		p.Limits.PeakDistMax = c.PeakDistMax
	}
	if c.DarkMarks {
		p.Polarity = detection.PolarityDark
	}
	return p
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}
