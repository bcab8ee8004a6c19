package importer

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mmdatafocus/ihome_import/config"
	"github.com/mmdatafocus/ihome_import/ledger"
)

// Counts tallies document outcomes for one ledger pass.
type Counts struct {
	Created int
	Failed  int
	Skipped int
}

func (c *Counts) add(status SubmitStatus) {
	switch status {
	case StatusCreated:
		c.Created++
	case StatusFailed:
		c.Failed++
	default:
		c.Skipped++
	}
}

// Summary is the end-of-run tally, one Counts per ledger.
type Summary struct {
	Purchases Counts
	Sales     Counts
}

// Runner sequences the two ledger passes over one shared resolver, so a
// product discovered while importing purchases is reused, not recreated,
// when the same SKU or name appears in sales.
type Runner struct {
	resolver  *Resolver
	submitter *submitter
	client    *apiClient
	logger    *logrus.Logger

	// allowDuplicateReplay preserves the historical behaviour of blindly
	// re-creating documents on a second run. When false, invoice numbers
	// already present in the system of record are skipped.
	allowDuplicateReplay bool
}

func NewRunner(baseURL string) *Runner {
	logger := config.GetLogger()
	client := newAPIClient(baseURL)
	return &Runner{
		resolver:             newResolver(client, logger),
		submitter:            newSubmitter(client, logger),
		client:               client,
		logger:               logger,
		allowDuplicateReplay: config.AllowDuplicateReplay(),
	}
}

// Run imports purchases first, then sales. Ordering only reduces duplicate
// creation pressure on the product cache; resolution is self-sufficient in
// either pass.
func (r *Runner) Run(ctx context.Context, purchaseRows, salesRows []ledger.Row) Summary {
	var summary Summary
	summary.Purchases = r.runLedger(ctx, ledger.KindPurchase, purchaseRows)
	summary.Sales = r.runLedger(ctx, ledger.KindSales, salesRows)

	r.logger.WithFields(logrus.Fields{
		"purchases_created": summary.Purchases.Created,
		"purchases_failed":  summary.Purchases.Failed,
		"purchases_skipped": summary.Purchases.Skipped,
		"sales_created":     summary.Sales.Created,
		"sales_failed":      summary.Sales.Failed,
		"sales_skipped":     summary.Sales.Skipped,
	}).Info("import run finished")
	return summary
}

func (r *Runner) runLedger(ctx context.Context, kind ledger.Kind, rows []ledger.Row) Counts {
	var counts Counts
	if len(rows) == 0 {
		return counts
	}

	groups := ledger.GroupByDocument(ledger.ForwardFillDocumentIDs(rows))
	r.logger.WithFields(logrus.Fields{
		"ledger":    string(kind),
		"rows":      len(rows),
		"documents": len(groups),
	}).Info("importing ledger")

	var alreadyImported map[string]bool
	if !r.allowDuplicateReplay {
		seen, err := r.client.listInvoiceNumbers(ctx, documentPath(kind))
		if err != nil {
			// Treated as an empty remote set; the guard is best effort.
			config.LogError(r.logger, "importer", "runLedger", "replay guard "+string(kind), nil, err)
		} else {
			alreadyImported = seen
		}
	}

	for _, group := range groups {
		result := r.importDocument(ctx, kind, group, alreadyImported)
		counts.add(result.Status)

		fields := logrus.Fields{
			"ledger":   string(kind),
			"document": group.DocumentID,
			"status":   string(result.Status),
		}
		if result.RemoteID != "" {
			fields["remoteId"] = result.RemoteID
		}
		if result.Reason != "" {
			fields["reason"] = result.Reason
		}
		r.logger.WithFields(fields).Info("document processed")
	}

	r.logger.WithFields(logrus.Fields{
		"ledger":  string(kind),
		"created": counts.Created,
		"failed":  counts.Failed,
		"skipped": counts.Skipped,
	}).Info("ledger import finished")
	return counts
}

func (r *Runner) importDocument(ctx context.Context, kind ledger.Kind, group ledger.Group, alreadyImported map[string]bool) SubmitResult {
	if alreadyImported[group.DocumentID] {
		return SubmitResult{Status: StatusSkipped, Reason: "already imported"}
	}

	partyName := group.FirstNonBlank(func(row ledger.Row) string { return row.PartyName })
	if partyName == "" {
		return SubmitResult{Status: StatusSkipped, Reason: "no party name"}
	}
	date := group.FirstNonBlank(func(row ledger.Row) string { return row.Date })

	var party *EntityRef
	if kind == ledger.KindPurchase {
		party = r.resolver.ResolveSupplier(ctx, partyName)
	} else {
		hint := group.FirstNonBlank(func(row ledger.Row) string { return row.PartyHint })
		party = r.resolver.ResolveCustomer(ctx, partyName, hint)
	}
	if party == nil {
		return SubmitResult{Status: StatusSkipped, Reason: "party unresolved"}
	}

	doc := Document{
		Kind:       kind,
		DocumentID: group.DocumentID,
		Party:      *party,
		Date:       date,
		Notes:      fmt.Sprintf("Imported from %s. Date: %s", group.DocumentID, date),
	}
	for _, row := range group.Rows {
		result := normalizeLine(ctx, row, kind, r.resolver)
		if result.Skipped {
			r.logger.WithFields(logrus.Fields{
				"ledger":   string(kind),
				"document": group.DocumentID,
				"item":     row.ItemName,
				"reason":   result.Reason,
			}).Info("line item skipped")
			continue
		}
		doc.Lines = append(doc.Lines, result.Line)
		doc.Subtotal = doc.Subtotal.Add(result.Line.Total)
	}
	doc.Total = doc.Subtotal

	return r.submitter.submit(ctx, doc)
}
