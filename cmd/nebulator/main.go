package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ironsheep/nebulator/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	inputDir := flag.String("input", "input", "directory of grayscale source images")
	outputDir := flag.String("output", "output", "directory for exported sprites")
	settingsPath := flag.String("settings", "nebulator.json", "path of the durable settings file")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Usage = usage
	flag.Parse()

	if *showVersion {
		fmt.Printf("nebulator %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if os.Getenv("NEBULATOR_LOG_LEVEL") == "debug" {
		log.Printf("Nebulator v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
		log.Printf("input=%s output=%s settings=%s", *inputDir, *outputDir, *settingsPath)
	}

	srv, err := server.New(server.Config{
		InputDir:     *inputDir,
		OutputDir:    *outputDir,
		SettingsPath: *settingsPath,
	})
	if err != nil {
		log.Fatalf("Startup error: %v", err)
	}
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "nebulator - MCP server turning grayscale nebula renders into RGBA sprites")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Usage: nebulator [options]")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Options:")
	flag.PrintDefaults()
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Environment variables:")
	fmt.Fprintln(os.Stderr, "  NEBULATOR_LOG_LEVEL=debug    Enable debug logging")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "This server communicates via MCP protocol over stdin/stdout.")
	fmt.Fprintln(os.Stderr, "Configure it in your MCP client (e.g., Claude Desktop).")
}
