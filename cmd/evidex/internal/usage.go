package internal

import (
	"fmt"
	"os"
	"strings"
)

const Version = "0.4.2"

// PrintUsage 向 stderr 输出 evidex 的用法与可用子命令列表。
func PrintUsage() {
	fmt.Fprintf(os.Stderr, `evidex - Question-Answering over Device Extraction Reports

Version: %s

USAGE:
    evidex [global options] <command> [command options]

GLOBAL OPTIONS:
    -config <path>
        Path to config file (default: ~/.evidex/config/evidex.yaml)

    -data <dir>
        Override the session data directory

    -v, -version
        Show version information

    -h, -help
        Show this help message

COMMANDS:
    serve
        Start the HTTP API (upload and query endpoints)

    ingest
        Process a report archive and build the retrieval session

    ask
        Ask a question about the ingested report

    stats
        Show session statistics

EXAMPLES:
    # Start the API server
    evidex serve

    # Process a device extraction report
    evidex ingest extraction-2024-03.zip

    # Ask about its contents
    evidex ask "Who did the owner message most often?"

    # Keep two cases side by side
    evidex -data ~/cases/phone-a ingest phone-a.zip

    # Show statistics
    evidex stats

For detailed help on each command, use:
    evidex <command> -help
`, Version)
}

// StringList is a flag.Value that collects multiple strings
type StringList []string

// String 返回 StringList 的逗号连接形式。
// 满足 fmt.Stringer 与 flag.Value 接口要求。
func (s *StringList) String() string {
	return strings.Join(*s, ",")
}

// Set 将单个字符串追加到 StringList 并返回错误（始终为 nil）。
// 该方法用于实现 flag.Value 接口，允许多次 -flag 传入。
func (s *StringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}
