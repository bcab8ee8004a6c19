package importer

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/mmdatafocus/ihome_import/config"
	"github.com/mmdatafocus/ihome_import/ledger"
)

type SubmitStatus string

const (
	StatusCreated SubmitStatus = "created"
	StatusSkipped SubmitStatus = "skipped"
	StatusFailed  SubmitStatus = "failed"
)

// SubmitResult records the outcome of one document. Failures never abort
// the batch; the runner only counts them.
type SubmitResult struct {
	Status   SubmitStatus
	RemoteID string
	Reason   string
}

type submitter struct {
	client   *apiClient
	validate *validator.Validate
	logger   *logrus.Logger
}

func newSubmitter(client *apiClient, logger *logrus.Logger) *submitter {
	return &submitter{
		client:   client,
		validate: validator.New(),
		logger:   logger,
	}
}

func documentPath(kind ledger.Kind) string {
	if kind == ledger.KindPurchase {
		return "/purchases"
	}
	return "/invoices"
}

// submit sends one assembled document to the system of record. An empty
// document is suppressed without a remote call.
func (s *submitter) submit(ctx context.Context, doc Document) SubmitResult {
	if len(doc.Lines) == 0 {
		return SubmitResult{Status: StatusSkipped, Reason: "no resolvable line items"}
	}

	payload := buildPayload(doc)
	if err := s.validate.Struct(payload); err != nil {
		config.LogError(s.logger, "importer", "submit", "validate "+doc.DocumentID, nil, err)
		return SubmitResult{Status: StatusFailed, Reason: err.Error()}
	}

	remoteID, err := s.client.createDocument(ctx, documentPath(doc.Kind), payload)
	if err != nil {
		config.LogError(s.logger, "importer", "submit", "create "+doc.DocumentID, nil, err)
		return SubmitResult{Status: StatusFailed, Reason: err.Error()}
	}
	return SubmitResult{Status: StatusCreated, RemoteID: remoteID}
}

func buildPayload(doc Document) any {
	if doc.Kind == ledger.KindPurchase {
		items := make([]purchaseItemPayload, len(doc.Lines))
		for i, line := range doc.Lines {
			items[i] = purchaseItemPayload{
				ProductID:   line.Product.ID,
				ProductName: line.ProductName,
				Quantity:    line.Quantity,
				UnitCost:    line.UnitAmount,
				Total:       line.Total,
			}
		}
		return purchasePayload{
			InvoiceNumber: doc.DocumentID,
			Supplier:      partyRef{ID: doc.Party.ID, Name: doc.Party.Name},
			Items:         items,
			Status:        "received",
			Subtotal:      doc.Subtotal,
			Total:         doc.Total,
			Notes:         doc.Notes,
		}
	}

	items := make([]salesItemPayload, len(doc.Lines))
	for i, line := range doc.Lines {
		items[i] = salesItemPayload{
			ProductID:   line.Product.ID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitAmount,
			Total:       line.Total,
		}
	}
	return salesPayload{
		InvoiceNumber: doc.DocumentID,
		Customer:      partyRef{ID: doc.Party.ID, Name: doc.Party.Name},
		Items:         items,
		Type:          "invoice",
		Status:        "paid",
		Subtotal:      doc.Subtotal,
		Total:         doc.Total,
		Notes:         doc.Notes,
	}
}
