// Package ledger reads historical transaction exports (purchase and sales
// line-item ledgers) into raw rows and groups them into logical documents.
package ledger

import "strings"

// Kind selects the column contract of a ledger export.
type Kind string

const (
	KindPurchase Kind = "purchase"
	KindSales    Kind = "sales"
)

// Row is one raw line of a ledger export. All fields are kept as strings;
// numeric parsing happens during normalization so a malformed cell only
// affects its own line item.
type Row struct {
	DocumentID string
	PartyName  string
	PartyHint  string
	Date       string
	ItemCode   string
	ItemName   string
	ItemGroup  string
	Quantity   string
	Rate       string
}

// Group is all rows sharing one document id.
type Group struct {
	DocumentID string
	Rows       []Row
}

// FirstNonBlank scans the group for the first row where get returns a
// non-blank value. Continuation rows often leave header fields (party name,
// date) empty, so the header value may sit on any row of the group.
func (g Group) FirstNonBlank(get func(Row) string) string {
	for _, row := range g.Rows {
		if v := strings.TrimSpace(get(row)); v != "" {
			return v
		}
	}
	return ""
}
