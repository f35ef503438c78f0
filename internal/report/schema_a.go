package report

// parseSchemaA extracts chats, calls and contacts from a Schema A
// document. Sender and counterparty come from the Party element tagged
// role="From"; when several are present the last one wins.
func parseSchemaA(root *element) []Record {
	records := make([]Record, 0)

	for _, msg := range root.findAll("Message") {
		records = append(records, Record{
			Kind:      KindChat,
			Timestamp: msg.findText("TimeStamp"),
			Sender:    fromParty(msg),
			Content:   msg.findText("Body"),
		})
	}

	for _, call := range root.findAll("Call") {
		records = append(records, Record{
			Kind:         KindCall,
			Timestamp:    call.findText("TimeStamp"),
			Direction:    call.findText("Direction"),
			Counterparty: fromParty(call),
		})
	}

	for _, contact := range root.findAll("Contact") {
		records = append(records, Record{
			Kind:   KindContact,
			Name:   contact.findText("Name"),
			Number: contact.findText("Phone"),
		})
	}

	return records
}

// fromParty returns the text of the last Party element carrying
// role="From", or Unknown when no such party exists
func fromParty(e *element) string {
	sender := Unknown
	for _, party := range e.findAll("Party") {
		if party.attr("role") == "From" {
			sender = party.text()
		}
	}
	return sender
}
