package ledger

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Column headers are a fixed contract with the upstream export tool.
const (
	colDocumentID  = "ID"
	colSupplier    = "Supplier"
	colCustomer    = "Customer Name"
	colCustomerRef = "Customer"
	colDate        = "Date"
	colItemCode    = "Item (Items)"
	colItemName    = "Item Name (Items)"
	colItemGroup   = "Item Group (Items)"
	colAcceptedQty = "Accepted Qty (Items)"
	colQuantity    = "Quantity (Items)"
	colRate        = "Rate (Items)"
)

// ReadFile reads a ledger export into raw rows. The format is picked by file
// extension: .csv via encoding/csv, .xlsx via excelize (first sheet).
func ReadFile(path string, kind Kind) ([]Row, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(path, kind)
	case ".xlsx":
		return readXLSX(path, kind)
	default:
		return nil, fmt.Errorf("unsupported ledger format %q", filepath.Ext(path))
	}
}

func readCSV(path string, kind Kind) ([]Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read ledger %s: %w", path, err)
	}
	return rowsFromRecords(records, kind)
}

func readXLSX(path string, kind Kind) ([]Row, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", path, err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("ledger %s has no sheets", path)
	}
	records, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read ledger %s: %w", path, err)
	}
	return rowsFromRecords(records, kind)
}

func rowsFromRecords(records [][]string, kind Kind) ([]Row, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("ledger is empty")
	}

	index := make(map[string]int, len(records[0]))
	for i, header := range records[0] {
		index[strings.TrimSpace(header)] = i
	}
	if _, ok := index[colDocumentID]; !ok {
		return nil, fmt.Errorf("ledger missing %q column", colDocumentID)
	}

	cell := func(record []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		if isBlank(record) {
			continue
		}
		row := Row{
			DocumentID: cell(record, colDocumentID),
			Date:       cell(record, colDate),
			ItemCode:   cell(record, colItemCode),
			ItemName:   cell(record, colItemName),
			Rate:       cell(record, colRate),
		}
		switch kind {
		case KindPurchase:
			row.PartyName = cell(record, colSupplier)
			row.ItemGroup = cell(record, colItemGroup)
			row.Quantity = cell(record, colAcceptedQty)
		case KindSales:
			row.PartyName = cell(record, colCustomer)
			row.PartyHint = cell(record, colCustomerRef)
			row.Quantity = cell(record, colQuantity)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
