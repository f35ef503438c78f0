package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/evidex/evidex/cmd/evidex/internal"
	"github.com/evidex/evidex/internal/config"
	"github.com/evidex/evidex/internal/retrieval"
	"github.com/evidex/evidex/internal/server"
)

// handleServe implements the serve subcommand
func handleServe(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)

	var host string
	var port int
	var origins internal.StringList

	fs.StringVar(&host, "host", "", "Bind address (default from config)")
	fs.IntVar(&port, "port", 0, "Listen port (default from config)")
	fs.Var(&origins, "origin", "Additional allowed CORS origin (repeatable)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `USAGE:
    evidex serve [options]

DESCRIPTION:
    Start the HTTP API. Endpoints:
      POST /upload   multipart field "file" holding a report archive
      POST /query    {"question": "..."}
      GET  /stats    current session statistics
      GET  /healthz  liveness probe

    A previously ingested report is recovered from the data directory,
    so questions keep working across server restarts.

OPTIONS:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
EXAMPLES:
    # Serve on the configured address (default 127.0.0.1:8000)
    evidex serve

    # Serve on all interfaces, port 9000
    evidex serve -host 0.0.0.0 -port 9000

    # Allow a deployed frontend
    evidex serve -origin https://analyst.example.com
`)
	}

	if err := fs.Parse(args); err != nil {
		log.Fatalf("Failed to parse arguments: %v", err)
	}

	if host != "" {
		cfg.Server.Host = host
	}
	if port != 0 {
		cfg.Server.Port = port
	}
	cfg.Server.AllowedOrigins = append(cfg.Server.AllowedOrigins, origins...)

	engine, err := retrieval.NewEngine(cfg)
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}
	defer engine.Close()

	srv := server.New(cfg, engine)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
