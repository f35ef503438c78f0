package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/evidex/evidex/cmd/evidex/internal"
	"github.com/evidex/evidex/internal/config"
	"github.com/joho/godotenv"
)

// main 启动 evidex 命令行工具，解析参数并执行对应子命令。
// 若参数无效或缺少子命令则打印用法并退出。
func main() {
	if len(os.Args) < 2 {
		internal.PrintUsage()
		os.Exit(1)
	}

	// Pick up EVIDEX_* keys from a local .env if present
	_ = godotenv.Load()

	// Parse global flags and find subcommand
	configPath := ""
	dataDir := ""
	args := os.Args[1:]

	// Handle special flags that don't require subcommand
	for _, arg := range args {
		if arg == "-h" || arg == "-help" || arg == "--help" {
			internal.PrintUsage()
			os.Exit(0)
		}
		if arg == "-v" || arg == "-version" || arg == "--version" {
			fmt.Printf("evidex version %s\n", internal.Version)
			os.Exit(0)
		}
	}

	// Find the subcommand (first non-flag argument that is a valid subcommand)
	validSubcommands := map[string]bool{
		"serve":  true,
		"ingest": true,
		"ask":    true,
		"stats":  true,
	}

	subcommandIndex := -1
	for i, arg := range args {
		if !strings.HasPrefix(arg, "-") {
			if validSubcommands[arg] {
				subcommandIndex = i
				break
			}
			// Not a known subcommand, might be a value for a flag
		}
	}

	if subcommandIndex == -1 {
		fmt.Fprintf(os.Stderr, "Error: No subcommand specified\n\n")
		internal.PrintUsage()
		os.Exit(1)
	}

	// Parse global flags (before subcommand)
	globalFlags := args[:subcommandIndex]
	for i := 0; i < len(globalFlags); i++ {
		flag := globalFlags[i]
		if flag == "-config" || flag == "--config" {
			if i+1 < len(globalFlags) {
				configPath = globalFlags[i+1]
				i++ // skip next arg
			}
		} else if flag == "-data" || flag == "--data" {
			if i+1 < len(globalFlags) {
				dataDir = globalFlags[i+1]
				i++ // skip next arg
			}
		} else if strings.HasPrefix(flag, "-") {
			fmt.Fprintf(os.Stderr, "Error: Unknown global flag: %s\n\n", flag)
			internal.PrintUsage()
			os.Exit(1)
		}
	}

	// Load configuration
	cfg, err := internal.LoadConfig(configPath)
	if err != nil {
		if config.IsConfigNotFound(err) {
			notFoundErr := err.(*config.ConfigNotFoundError)
			created, createErr := config.WriteDefaultTemplate(notFoundErr.RequestedPath)
			if createErr != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
				fmt.Fprintf(os.Stderr, "Also failed to create default config at %s: %v\n\n", notFoundErr.RequestedPath, createErr)
				internal.PrintConfigExample()
				os.Exit(1)
			}
			if created {
				fmt.Fprintf(os.Stderr, "Created default config at %s\n", notFoundErr.RequestedPath)
			}
			// The defaults point at a local ollama instance and need no
			// API key, so the fresh template is immediately usable
			cfg, err = internal.LoadConfig(notFoundErr.RequestedPath)
			if err != nil {
				log.Fatalf("Failed to load config: %v\n", err)
			}
		} else {
			log.Fatalf("Failed to load config: %v\n", err)
		}
	}

	// Override data dir if specified
	if dataDir != "" {
		cfg.Storage.DataDir = dataDir
	}
	resolvedDir, err := internal.ResolveDataDir(cfg.Storage.DataDir)
	if err != nil {
		log.Fatalf("Failed to resolve data directory: %v\n", err)
	}
	cfg.Storage.DataDir = resolvedDir

	// Execute subcommand
	subcommand := args[subcommandIndex]
	subcommandArgs := args[subcommandIndex+1:]

	if subcommand == "serve" || subcommand == "ingest" {
		if err := internal.SetupLogging(subcommand, cfg.Storage.DataDir); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to initialize log file: %v\n", err)
		}
	}

	switch subcommand {
	case "serve":
		handleServe(cfg, subcommandArgs)
	case "ingest":
		handleIngest(cfg, subcommandArgs)
	case "ask":
		handleAsk(cfg, subcommandArgs)
	case "stats":
		handleStats(cfg, subcommandArgs)
	default:
		fmt.Printf("Unknown subcommand: %s\n\n", subcommand)
		internal.PrintUsage()
		os.Exit(1)
	}
}
