package importer

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmdatafocus/ihome_import/ledger"
)

// Purchase ledgers carry cost; the selling price of a freshly created
// product is estimated with a markup. Sales ledgers carry price; cost is
// estimated with a margin. Existing products are never touched.
var (
	purchaseMarkup = decimal.NewFromFloat(1.3)
	salesMargin    = decimal.NewFromFloat(0.7)
)

// lineResult is the explicit outcome of normalizing one ledger row: either
// a line item or a skip with its reason.
type lineResult struct {
	Line    LineItem
	Skipped bool
	Reason  string
}

func skipLine(reason string) lineResult {
	return lineResult{Skipped: true, Reason: reason}
}

// normalizeLine converts a raw ledger row into a line item: cleans the SKU,
// applies per-ledger numeric defaults, resolves the product and derives the
// line total. Rows that cannot be resolved are skipped, not failed.
func normalizeLine(ctx context.Context, row ledger.Row, kind ledger.Kind, resolver *Resolver) lineResult {
	name := strings.TrimSpace(row.ItemName)
	if name == "" {
		return skipLine("missing item name")
	}

	sku := cleanSKU(row.ItemCode)

	// Sales rows default to one unit (line-level returns and adjustments
	// arrive without a quantity); purchase rows pass through as zero.
	defaultQty := decimal.Zero
	if kind == ledger.KindSales {
		defaultQty = decimal.NewFromInt(1)
	}
	qty := parseDecimal(row.Quantity, defaultQty)
	rate := parseDecimal(row.Rate, decimal.Zero)

	defaults := productDefaults{Category: strings.TrimSpace(row.ItemGroup)}
	if kind == ledger.KindPurchase {
		defaults.Cost = rate
		defaults.Price = rate.Mul(purchaseMarkup)
	} else {
		defaults.Cost = rate.Mul(salesMargin)
		defaults.Price = rate
	}

	ref := resolver.ResolveProduct(ctx, sku, name, defaults)
	if ref == nil {
		return skipLine("product unresolved")
	}

	return lineResult{Line: LineItem{
		Product:     *ref,
		ProductName: name,
		Quantity:    qty,
		UnitAmount:  rate,
		Total:       qty.Mul(rate),
	}}
}

// cleanSKU undoes two artifacts of numeric parsing upstream: a trailing
// ".0" on integer codes and the literal "nan" for absent ones.
func cleanSKU(raw string) string {
	sku := strings.TrimSpace(raw)
	if sku == "nan" {
		return ""
	}
	return strings.TrimSuffix(sku, ".0")
}

func parseDecimal(raw string, def decimal.Decimal) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "nan" {
		return def
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return def
	}
	return d
}
