package report

import (
	"encoding/json"
	"fmt"
)

// Project renders a record into the single chunk string used for
// embedding and retrieval. The rendering is pure and total: every kind
// has a fixed format, and anything else falls back to a canonical JSON
// dump of the raw fields.
func Project(r Record) string {
	switch r.Kind {
	case KindChat:
		return fmt.Sprintf("Chat from %s at %s: %s", r.Sender, r.Timestamp, r.Content)
	case KindCall:
		return fmt.Sprintf("Call log at %s: %s call with %s", r.Timestamp, r.Direction, r.Counterparty)
	case KindContact:
		return fmt.Sprintf("Contact entry: Name is %s, Number is %s", r.Name, r.Number)
	default:
		return projectOther(r)
	}
}

// projectOther dumps an unrecognized record as JSON. json.Marshal sorts
// map keys, so the rendering is deterministic.
func projectOther(r Record) string {
	fields := make(map[string]string, len(r.Extra)+1)
	for k, v := range r.Extra {
		fields[k] = v
	}
	kind := r.Kind
	if kind == "" {
		kind = KindOther
	}
	fields["kind"] = kind

	data, _ := json.Marshal(fields)
	return string(data)
}

// ProjectAll renders records in order; chunk i is the projection of
// record i. This positional correspondence carries through the vector
// index and chunk store.
func ProjectAll(records []Record) []string {
	chunks := make([]string, len(records))
	for i, r := range records {
		chunks[i] = Project(r)
	}
	return chunks
}
