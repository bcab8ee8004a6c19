// Package importer replays historical purchase and sales ledgers into the
// inventory system as canonical invoices, resolving products, suppliers and
// customers to stable ids on the way and creating them on first sight.
package importer

import (
	"github.com/shopspring/decimal"

	"github.com/mmdatafocus/ihome_import/ledger"
)

// EntityRef is the cached, non-authoritative handle to an entity owned by
// the system of record.
type EntityRef struct {
	ID   string
	SKU  string
	Name string
}

// LineItem is one normalized invoice line.
type LineItem struct {
	Product     EntityRef
	ProductName string
	Quantity    decimal.Decimal
	UnitAmount  decimal.Decimal
	Total       decimal.Decimal
}

// Document is a logical invoice assembled from one ledger group. It lives in
// memory only: built, submitted once, discarded.
type Document struct {
	Kind       ledger.Kind
	DocumentID string
	Party      EntityRef
	Lines      []LineItem
	Subtotal   decimal.Decimal
	Total      decimal.Decimal
	Date       string
	Notes      string
}

// remoteEntity is the subset of a list/create response the importer needs.
type remoteEntity struct {
	ID   string `json:"id"`
	SKU  string `json:"sku"`
	Name string `json:"name"`
}

// remoteDocument is the subset of a document list response used by the
// replay guard.
type remoteDocument struct {
	ID            string `json:"id"`
	InvoiceNumber string `json:"invoiceNumber"`
}

type productPayload struct {
	Name        string          `json:"name" validate:"required"`
	SKU         string          `json:"sku"`
	Category    string          `json:"category"`
	Quantity    int             `json:"quantity"`
	CostPrice   decimal.Decimal `json:"costPrice"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
}

type supplierPayload struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type customerPayload struct {
	Name string `json:"name" validate:"required"`
	Type string `json:"type" validate:"oneof=individual company"`
}

type partyRef struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
}

type purchaseItemPayload struct {
	ProductID   string          `json:"productId" validate:"required"`
	ProductName string          `json:"productName"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unitCost"`
	Total       decimal.Decimal `json:"total"`
}

type salesItemPayload struct {
	ProductID   string          `json:"productId" validate:"required"`
	ProductName string          `json:"productName"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Total       decimal.Decimal `json:"total"`
}

type purchasePayload struct {
	InvoiceNumber string                `json:"invoiceNumber" validate:"required"`
	Supplier      partyRef              `json:"supplier"`
	Items         []purchaseItemPayload `json:"items" validate:"min=1,dive"`
	Status        string                `json:"status"`
	Subtotal      decimal.Decimal       `json:"subtotal"`
	Total         decimal.Decimal       `json:"total"`
	Notes         string                `json:"notes"`
}

type salesPayload struct {
	InvoiceNumber string             `json:"invoiceNumber" validate:"required"`
	Customer      partyRef           `json:"customer"`
	Items         []salesItemPayload `json:"items" validate:"min=1,dive"`
	Type          string             `json:"type"`
	Status        string             `json:"status"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	Total         decimal.Decimal    `json:"total"`
	Notes         string             `json:"notes"`
}
