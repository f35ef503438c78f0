package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/evidex/evidex/internal/config"
	"github.com/evidex/evidex/internal/retrieval"
)

// handleAsk implements the ask subcommand
func handleAsk(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)

	var quiet bool
	fs.BoolVar(&quiet, "quiet", false, "Disable the spinner")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `USAGE:
    evidex ask [options] "<question>"

DESCRIPTION:
    Ask a question about the most recently ingested report. The closest
    chunks are retrieved from the session and the generation model
    answers strictly from that context.

OPTIONS:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
EXAMPLES:
    # Ask about the report
    evidex ask "Who did the owner call on March 3rd?"

    # Count things
    evidex ask "How many messages mention the harbor?"
`)
	}

	if err := fs.Parse(args); err != nil {
		log.Fatalf("Failed to parse arguments: %v", err)
	}

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: question is required\n\n")
		fs.Usage()
		os.Exit(1)
	}
	question := fs.Arg(0)

	engine, err := retrieval.NewEngine(cfg)
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}
	defer engine.Close()

	stop := retrieval.StartSpinner(!quiet && retrieval.DefaultProgressEnabled(), "thinking")
	answer, err := engine.Answer(context.Background(), question)
	stop()
	if err != nil {
		log.Fatalf("Query failed: %v", err)
	}

	fmt.Println(answer)
}
