package report

// Record kind constants
const (
	KindChat    = "chat"
	KindCall    = "call"
	KindContact = "contact"
	KindOther   = "other"
)

// Unknown is the sentinel value for fields the source schema omits.
// Records never carry absent values, so rendering never deals with
// missing data.
const Unknown = "Unknown"

// Record is one normalized entry extracted from a report: a chat
// message, a call log entry or a contact. Only the fields covered by
// the record's kind are populated.
type Record struct {
	Kind string `json:"kind"`

	// Chat fields (Timestamp is shared with Call)
	Timestamp string `json:"timestamp,omitempty"`
	Sender    string `json:"sender,omitempty"`
	Content   string `json:"content,omitempty"`

	// Call fields
	Direction    string `json:"direction,omitempty"`
	Counterparty string `json:"counterparty,omitempty"`

	// Contact fields
	Name   string `json:"name,omitempty"`
	Number string `json:"number,omitempty"`

	// Extra carries the raw fields of an unrecognized record shape.
	// Only the defensive KindOther rendering path reads it.
	Extra map[string]string `json:"extra,omitempty"`
}

// CountKinds returns the number of chat, call and contact records.
func CountKinds(records []Record) (chats, calls, contacts int) {
	for _, r := range records {
		switch r.Kind {
		case KindChat:
			chats++
		case KindCall:
			calls++
		case KindContact:
			contacts++
		}
	}
	return chats, calls, contacts
}
