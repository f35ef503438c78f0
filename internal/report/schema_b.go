package report

// deviceOwnerSender labels outgoing Schema B messages, which carry no
// sender field of their own.
const deviceOwnerSender = "Device Owner"

// parseSchemaB extracts chats and calls from a Schema B document. The
// sender field is only meaningful on incoming messages; everything else
// is attributed to the device owner. Schema B reports carry no contacts.
func parseSchemaB(root *element) []Record {
	records := make([]Record, 0)

	for _, msg := range root.findAll("sms") {
		sender := deviceOwnerSender
		if msg.findText("direction") == "incoming" {
			sender = msg.findText("sender")
		}
		records = append(records, Record{
			Kind:      KindChat,
			Timestamp: msg.findText("timestamp"),
			Sender:    sender,
			Content:   msg.findText("body"),
		})
	}

	for _, call := range root.findAll("call_record") {
		records = append(records, Record{
			Kind:         KindCall,
			Timestamp:    call.findText("date"),
			Direction:    call.findText("type"),
			Counterparty: call.findText("number"),
		})
	}

	return records
}
