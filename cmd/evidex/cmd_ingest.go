package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/evidex/evidex/internal/config"
	"github.com/evidex/evidex/internal/retrieval"
)

// handleIngest implements the ingest subcommand
func handleIngest(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)

	var quiet bool
	fs.BoolVar(&quiet, "quiet", false, "Disable the progress bar")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `USAGE:
    evidex ingest [options] <report.zip>

DESCRIPTION:
    Process a device extraction report archive and build the retrieval
    session for it. This will:
      1. Locate the XML report inside the archive
      2. Detect the report schema and extract chat/call/contact records
      3. Render each record into a text chunk
      4. Embed every chunk and build the vector index
      5. Persist the index and chunk store for querying

    Ingesting a new report fully replaces the previous session.

OPTIONS:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
EXAMPLES:
    # Ingest a report archive
    evidex ingest extraction-2024-03.zip

    # Without a progress bar (for scripts and CI)
    evidex ingest -quiet extraction-2024-03.zip
`)
	}

	if err := fs.Parse(args); err != nil {
		log.Fatalf("Failed to parse arguments: %v", err)
	}

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: report archive path is required\n\n")
		fs.Usage()
		os.Exit(1)
	}
	path := fs.Arg(0)

	archive, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Failed to read report archive: %v", err)
	}

	engine, err := retrieval.NewEngine(cfg)
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}
	defer engine.Close()

	fmt.Printf("🏗️  Processing report: %s\n\n", path)

	reporter := retrieval.NewBuildProgress(!quiet && retrieval.DefaultProgressEnabled())
	result, err := engine.BuildSessionWithProgress(context.Background(), archive, filepath.Base(path), reporter)
	if err != nil {
		log.Fatalf("Ingest failed: %v", err)
	}

	fmt.Println("✅ Report processed and ready for analysis!")
	fmt.Printf("\n⏱️  Duration: %v\n", result.Duration)
	fmt.Println("\n📊 Statistics:")
	fmt.Printf("   Chunks:   %6d\n", result.Chunks)
	fmt.Printf("   Chats:    %6d\n", result.Chats)
	fmt.Printf("   Calls:    %6d\n", result.Calls)
	fmt.Printf("   Contacts: %6d\n", result.Contacts)
}
