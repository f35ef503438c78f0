package report

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// element is a schema-agnostic XML node. Schema detection and record
// extraction navigate the document through find/findAll, which walk the
// subtree in document order.
type element struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Chardata string     `xml:",chardata"`
	Children []element  `xml:",any"`
}

// parseDocument parses raw XML into an element tree
func parseDocument(content []byte) (*element, error) {
	var root element
	if err := xml.Unmarshal(content, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReport, err)
	}
	return &root, nil
}

// find returns the first element named name in the subtree rooted at e,
// including e itself, or nil when none exists
func (e *element) find(name string) *element {
	if e.XMLName.Local == name {
		return e
	}
	for i := range e.Children {
		if found := e.Children[i].find(name); found != nil {
			return found
		}
	}
	return nil
}

// findAll returns every element named name in the subtree, in document
// order
func (e *element) findAll(name string) []*element {
	var out []*element
	if e.XMLName.Local == name {
		out = append(out, e)
	}
	for i := range e.Children {
		out = append(out, e.Children[i].findAll(name)...)
	}
	return out
}

// attr returns the value of the named attribute, or ""
func (e *element) attr(name string) string {
	for _, a := range e.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// text returns the trimmed concatenation of all character data in the
// subtree
func (e *element) text() string {
	var b strings.Builder
	e.collectText(&b)
	return strings.TrimSpace(b.String())
}

func (e *element) collectText(b *strings.Builder) {
	b.WriteString(e.Chardata)
	for i := range e.Children {
		e.Children[i].collectText(b)
	}
}

// findText returns the trimmed text of the first descendant named name.
// Absent elements yield Unknown; present but empty elements yield the
// empty string.
func (e *element) findText(name string) string {
	found := e.find(name)
	if found == nil {
		return Unknown
	}
	return found.text()
}
