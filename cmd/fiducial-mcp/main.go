package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ironsheep/fiducial-tools-mcp/internal/config"
	"github.com/ironsheep/fiducial-tools-mcp/internal/logger"
	"github.com/ironsheep/fiducial-tools-mcp/internal/server"
	"github.com/ironsheep/fiducial-tools-mcp/internal/store"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("fiducial-tools-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("fiducial-tools-mcp - MCP server for fiducial mark measurement")
			fmt.Println()
			fmt.Println("Usage: fiducial-tools-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables (also read from .env):")
			fmt.Println("  FIDUCIAL_MCP_LOG_LEVEL=debug        Log level: debug, info, warning, error")
			fmt.Println("  FIDUCIAL_HISTORY_DB=path.db         Enable measurement history in SQLite")
			fmt.Println("  FIDUCIAL_UNIT=microns               Default distance unit")
			fmt.Println("  FIDUCIAL_BAND_WIDTH=2000            Default horizontal band width")
			fmt.Println("  FIDUCIAL_VERTICAL_CROP_EXTRA=50     Default refined crop margin")
			fmt.Println("  FIDUCIAL_PEAK_WIDTH_MAX=80          Default spike width limit")
			fmt.Println("  FIDUCIAL_PEAK_DIST_MAX=1000         Default spike position limit")
			fmt.Println("  FIDUCIAL_DARK_MARKS=true            Marks are darker than the background")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	lg := logger.NewStderr(cfg.LogLevel)
	lg.Debug("Fiducial MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)

	opts := []server.Option{
		server.WithLogger(lg),
		server.WithDefaults(cfg.Params()),
	}
	if cfg.HistoryDB != "" {
		db, err := store.Open(cfg.HistoryDB)
		if err != nil {
			log.Fatalf("History error: %v", err)
		}
		defer db.Close()
		lg.Info("measurement history: %s", cfg.HistoryDB)
		opts = append(opts, server.WithHistory(db))
	}

	srv := server.New(opts...)
	if err := srv.Run(); err != nil {
		lg.Error("Server error: %v", err)
		os.Exit(1)
	}
}
