package ledger

import "strings"

// ForwardFillDocumentIDs copies the nearest preceding non-blank document id
// into blank ones. Sales exports leave the id blank on continuation rows of
// a multi-line invoice.
func ForwardFillDocumentIDs(rows []Row) []Row {
	out := make([]Row, len(rows))
	last := ""
	for i, row := range rows {
		id := strings.TrimSpace(row.DocumentID)
		if id == "" {
			id = last
		} else {
			last = id
		}
		row.DocumentID = id
		out[i] = row
	}
	return out
}

// GroupByDocument partitions rows by document id, preserving the order of
// first appearance of each id. Rows still lacking an id after forward fill
// are dropped.
func GroupByDocument(rows []Row) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, row := range rows {
		id := strings.TrimSpace(row.DocumentID)
		if id == "" {
			continue
		}
		i, ok := index[id]
		if !ok {
			i = len(groups)
			index[id] = i
			groups = append(groups, Group{DocumentID: id})
		}
		groups[i].Rows = append(groups[i].Rows, row)
	}
	return groups
}
