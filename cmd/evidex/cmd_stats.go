package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/evidex/evidex/internal/config"
	"github.com/evidex/evidex/internal/retrieval"
)

// handleStats implements the stats subcommand
func handleStats(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	var jsonOutput bool
	fs.BoolVar(&jsonOutput, "json", false, "Output as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `USAGE:
    evidex stats [options]

DESCRIPTION:
    Show statistics about the current report session.

OPTIONS:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
EXAMPLES:
    # Show human-readable statistics
    evidex stats

    # JSON output
    evidex stats -json
`)
	}

	if err := fs.Parse(args); err != nil {
		log.Fatalf("Failed to parse arguments: %v", err)
	}

	engine, err := retrieval.NewEngine(cfg)
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}
	defer engine.Close()

	stats, err := engine.SessionStats()
	if err != nil {
		log.Fatalf("Failed to read session stats: %v", err)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(stats, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	if !stats.Active {
		fmt.Println("No report session. Run 'evidex ingest <report.zip>' first.")
		return
	}

	fmt.Println("📊 Session Statistics")
	fmt.Println()
	fmt.Printf("Report:     %s\n", stats.Filename)
	fmt.Printf("Built at:   %s\n", stats.BuiltAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Printf("Dimension:  %6d\n", stats.Dimension)
	fmt.Println()
	fmt.Printf("Chunks:     %6d\n", stats.Chunks)
	fmt.Printf("Chats:      %6d\n", stats.Chats)
	fmt.Printf("Calls:      %6d\n", stats.Calls)
	fmt.Printf("Contacts:   %6d\n", stats.Contacts)
	fmt.Println()
	fmt.Printf("Store size: %s\n", formatBytes(stats.StoreSizeBytes))
}

// formatBytes renders a byte count in a human-friendly unit
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
