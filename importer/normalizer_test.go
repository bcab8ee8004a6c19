package importer

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mmdatafocus/ihome_import/ledger"
)

func TestCleanSKU(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{"1020.0", "1020"},
		{"1020", "1020"},
		{"nan", ""},
		{" 77.0 ", "77"},
		{"", ""},
		{"AB-12.0", "AB-12"},
	}
	for _, tc := range cases {
		if got := cleanSKU(tc.in); got != tc.expected {
			t.Fatalf("cleanSKU(%q) expected %q, got %q", tc.in, tc.expected, got)
		}
	}
}

func TestNormalizeLineQuantityDefaults(t *testing.T) {
	backend := newFakeBackend(t)
	srv := backend.server()
	resolver := newResolver(newAPIClient(srv.URL), testLogger())
	ctx := context.Background()

	row := ledger.Row{ItemCode: "10", ItemName: "Fan", Rate: "5"}

	purchase := normalizeLine(ctx, row, ledger.KindPurchase, resolver)
	if purchase.Skipped {
		t.Fatalf("purchase line skipped: %s", purchase.Reason)
	}
	if !purchase.Line.Quantity.IsZero() {
		t.Fatalf("purchase quantity default expected 0, got %s", purchase.Line.Quantity)
	}

	sales := normalizeLine(ctx, row, ledger.KindSales, resolver)
	if sales.Skipped {
		t.Fatalf("sales line skipped: %s", sales.Reason)
	}
	if sales.Line.Quantity.String() != "1" {
		t.Fatalf("sales quantity default expected 1, got %s", sales.Line.Quantity)
	}
}

func TestNormalizeLineAsymmetricDefaultPricing(t *testing.T) {
	cases := []struct {
		kind          ledger.Kind
		expectedCost  string
		expectedPrice string
	}{
		{ledger.KindPurchase, "10", "13"},
		{ledger.KindSales, "7", "10"},
	}
	for _, tc := range cases {
		backend := newFakeBackend(t)
		srv := backend.server()
		resolver := newResolver(newAPIClient(srv.URL), testLogger())

		row := ledger.Row{ItemCode: "42", ItemName: "Heater", Quantity: "2", Rate: "10"}
		result := normalizeLine(context.Background(), row, tc.kind, resolver)
		if result.Skipped {
			t.Fatalf("%s line skipped: %s", tc.kind, result.Reason)
		}

		var payload struct {
			CostPrice json.Number `json:"costPrice"`
			Price     json.Number `json:"price"`
			Category  string      `json:"category"`
		}
		if err := json.Unmarshal(backend.payloads["/products"][0], &payload); err != nil {
			t.Fatalf("decode product payload: %v", err)
		}
		if payload.CostPrice.String() != tc.expectedCost {
			t.Fatalf("%s: expected cost %s, got %s", tc.kind, tc.expectedCost, payload.CostPrice)
		}
		if payload.Price.String() != tc.expectedPrice {
			t.Fatalf("%s: expected price %s, got %s", tc.kind, tc.expectedPrice, payload.Price)
		}
	}
}

func TestNormalizeLineProductCreateDefaults(t *testing.T) {
	backend := newFakeBackend(t)
	srv := backend.server()
	resolver := newResolver(newAPIClient(srv.URL), testLogger())

	row := ledger.Row{ItemCode: "nan", ItemName: "Mystery Part", Rate: "4"}
	result := normalizeLine(context.Background(), row, ledger.KindSales, resolver)
	if result.Skipped {
		t.Fatalf("line skipped: %s", result.Reason)
	}

	var payload struct {
		SKU         string      `json:"sku"`
		Category    string      `json:"category"`
		Quantity    json.Number `json:"quantity"`
		Description string      `json:"description"`
	}
	if err := json.Unmarshal(backend.payloads["/products"][0], &payload); err != nil {
		t.Fatalf("decode product payload: %v", err)
	}
	if payload.SKU != "" {
		t.Fatalf("expected nan code to become empty sku, got %q", payload.SKU)
	}
	if payload.Category != "Uncategorized" {
		t.Fatalf("expected default category, got %q", payload.Category)
	}
	if payload.Quantity.String() != "0" {
		t.Fatalf("expected zero initial quantity, got %s", payload.Quantity)
	}
	if payload.Description != "Created during history import" {
		t.Fatalf("unexpected description %q", payload.Description)
	}
}

func TestNormalizeLineSkipsBlankItemName(t *testing.T) {
	backend := newFakeBackend(t)
	srv := backend.server()
	resolver := newResolver(newAPIClient(srv.URL), testLogger())

	row := ledger.Row{ItemCode: "10", ItemName: "   ", Rate: "5"}
	result := normalizeLine(context.Background(), row, ledger.KindSales, resolver)
	if !result.Skipped {
		t.Fatal("expected blank item name to be skipped")
	}
	if result.Reason != "missing item name" {
		t.Fatalf("unexpected skip reason %q", result.Reason)
	}
	if got := backend.createCalls["/products"]; got != 0 {
		t.Fatalf("expected no product create, got %d", got)
	}
}

func TestNormalizeLineSkipsUnresolvedProduct(t *testing.T) {
	backend := newFakeBackend(t)
	backend.failCreate["/products"] = true
	srv := backend.server()
	resolver := newResolver(newAPIClient(srv.URL), testLogger())

	row := ledger.Row{ItemCode: "10", ItemName: "Fan", Rate: "5"}
	result := normalizeLine(context.Background(), row, ledger.KindPurchase, resolver)
	if !result.Skipped {
		t.Fatal("expected unresolved product to be skipped")
	}
	if result.Reason != "product unresolved" {
		t.Fatalf("unexpected skip reason %q", result.Reason)
	}
}

func TestNormalizeLineTotal(t *testing.T) {
	backend := newFakeBackend(t)
	srv := backend.server()
	resolver := newResolver(newAPIClient(srv.URL), testLogger())

	row := ledger.Row{ItemCode: "10", ItemName: "Cable", Quantity: "3", Rate: "2.5"}
	result := normalizeLine(context.Background(), row, ledger.KindPurchase, resolver)
	if result.Skipped {
		t.Fatalf("line skipped: %s", result.Reason)
	}
	if result.Line.Total.String() != "7.5" {
		t.Fatalf("expected total 7.5, got %s", result.Line.Total)
	}
	if result.Line.UnitAmount.String() != "2.5" {
		t.Fatalf("expected unit amount 2.5, got %s", result.Line.UnitAmount)
	}
}

func TestNormalizeLineMalformedNumbersFallBack(t *testing.T) {
	backend := newFakeBackend(t)
	srv := backend.server()
	resolver := newResolver(newAPIClient(srv.URL), testLogger())

	row := ledger.Row{ItemCode: "10", ItemName: "Fan", Quantity: "abc", Rate: "x"}
	result := normalizeLine(context.Background(), row, ledger.KindSales, resolver)
	if result.Skipped {
		t.Fatalf("line skipped: %s", result.Reason)
	}
	if result.Line.Quantity.String() != "1" {
		t.Fatalf("expected quantity fallback 1, got %s", result.Line.Quantity)
	}
	if !result.Line.UnitAmount.IsZero() {
		t.Fatalf("expected rate fallback 0, got %s", result.Line.UnitAmount)
	}
}
