package report

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Sentinel errors for report parsing. The transport layer maps these to
// user-visible error payloads.
var (
	// ErrNoReportFound means the archive holds no usable XML report member.
	ErrNoReportFound = errors.New("no xml report found in archive")

	// ErrMalformedReport means the archive or its report member could not
	// be parsed.
	ErrMalformedReport = errors.New("malformed report")

	// ErrUnsupportedFormat means no known schema marker was detected in
	// the report.
	ErrUnsupportedFormat = errors.New("unknown or unsupported report format")
)

// DefaultMemberPattern matches any zip member with an .xml extension,
// at any depth.
const DefaultMemberPattern = "**/*.xml"

// Parser locates the XML report inside an uploaded archive and
// normalizes it into Records.
type Parser struct {
	memberPattern string
}

// NewParser creates a parser. An empty pattern falls back to
// DefaultMemberPattern.
func NewParser(memberPattern string) *Parser {
	if memberPattern == "" {
		memberPattern = DefaultMemberPattern
	}
	return &Parser{memberPattern: memberPattern}
}

// Parse extracts all records from a report archive. The first archive
// member matching the member pattern is parsed as XML, and the schema
// marker found in the document selects the extractor: a Chats element
// means Schema A, an sms_messages element means Schema B. Output order
// is chats, then calls, then contacts, document order within each kind.
func (p *Parser) Parse(archive []byte) ([]Record, error) {
	content, err := p.reportMember(archive)
	if err != nil {
		return nil, err
	}

	root, err := parseDocument(content)
	if err != nil {
		return nil, err
	}

	switch {
	case root.find("Chats") != nil:
		return parseSchemaA(root), nil
	case root.find("sms_messages") != nil:
		return parseSchemaB(root), nil
	default:
		return nil, ErrUnsupportedFormat
	}
}

// reportMember returns the content of the first member whose lowercased
// name matches the member pattern. An empty member is treated the same
// as a missing one.
func (p *Parser) reportMember(archive []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, fmt.Errorf("%w: open archive: %v", ErrMalformedReport, err)
	}

	for _, member := range zr.File {
		match, err := doublestar.Match(p.memberPattern, strings.ToLower(member.Name))
		if err != nil {
			return nil, fmt.Errorf("invalid member pattern %q: %w", p.memberPattern, err)
		}
		if !match {
			continue
		}

		rc, err := member.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: open member %s: %v", ErrMalformedReport, member.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: read member %s: %v", ErrMalformedReport, member.Name, err)
		}
		if len(content) == 0 {
			return nil, ErrNoReportFound
		}
		return content, nil
	}

	return nil, ErrNoReportFound
}
