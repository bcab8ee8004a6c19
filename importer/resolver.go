package importer

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/mmdatafocus/ihome_import/config"
)

type entityClass string

const (
	classProduct  entityClass = "product"
	classSupplier entityClass = "supplier"
	classCustomer entityClass = "customer"
)

func (c entityClass) listPath() string {
	switch c {
	case classProduct:
		return "/products"
	case classSupplier:
		return "/suppliers"
	default:
		return "/customers"
	}
}

// entityCache is the two-tier reconciliation cache for one entity class:
// primary key (SKU) first, display name second. warmed flips after the one
// bulk fetch allowed per class per run.
type entityCache struct {
	bySKU  map[string]EntityRef
	byName map[string]EntityRef
	warmed bool
}

func newEntityCache() *entityCache {
	return &entityCache{
		bySKU:  make(map[string]EntityRef),
		byName: make(map[string]EntityRef),
	}
}

func (c *entityCache) lookup(sku, name string) (EntityRef, bool) {
	if sku != "" {
		if ref, ok := c.bySKU[sku]; ok {
			return ref, true
		}
	}
	if name != "" {
		if ref, ok := c.byName[name]; ok {
			return ref, true
		}
	}
	return EntityRef{}, false
}

func (c *entityCache) insert(ref EntityRef) {
	if ref.SKU != "" {
		c.bySKU[ref.SKU] = ref
	}
	if ref.Name != "" {
		c.byName[ref.Name] = ref
	}
}

// Resolver maps loosely-identified entities (SKU or name) to stable ids in
// the system of record, creating them on first sight. State is scoped to one
// run and shared across the purchase and sales passes.
type Resolver struct {
	client *apiClient
	logger *logrus.Logger
	caches map[entityClass]*entityCache
}

func newResolver(client *apiClient, logger *logrus.Logger) *Resolver {
	return &Resolver{
		client: client,
		logger: logger,
		caches: map[entityClass]*entityCache{
			classProduct:  newEntityCache(),
			classSupplier: newEntityCache(),
			classCustomer: newEntityCache(),
		},
	}
}

// productDefaults carries the attributes used only when a product has to be
// created fresh. Cost and price are estimated from the ledger side that
// discovered the product.
type productDefaults struct {
	Category string
	Cost     decimal.Decimal
	Price    decimal.Decimal
}

// ResolveProduct returns the stable reference for a product, creating it if
// neither the SKU nor the name is known. A nil result means the product
// could not be resolved and the dependent line item must be skipped.
func (r *Resolver) ResolveProduct(ctx context.Context, sku, name string, defaults productDefaults) *EntityRef {
	category := defaults.Category
	if category == "" {
		category = "Uncategorized"
	}
	return r.resolve(ctx, classProduct, sku, name, productPayload{
		Name:        name,
		SKU:         sku,
		Category:    category,
		Quantity:    0,
		CostPrice:   defaults.Cost,
		Price:       defaults.Price,
		Description: "Created during history import",
	})
}

// ResolveSupplier resolves a supplier by name, creating it when absent. A
// nil result skips the dependent document.
func (r *Resolver) ResolveSupplier(ctx context.Context, name string) *EntityRef {
	return r.resolve(ctx, classSupplier, "", name, supplierPayload{Name: name})
}

// ResolveCustomer resolves a customer by name, creating it when absent. The
// raw ledger reference hints whether the customer is a company.
func (r *Resolver) ResolveCustomer(ctx context.Context, name, rawHint string) *EntityRef {
	customerType := "individual"
	if strings.Contains(rawHint, "Company") {
		customerType = "company"
	}
	return r.resolve(ctx, classCustomer, "", name, customerPayload{
		Name: name,
		Type: customerType,
	})
}

func (r *Resolver) resolve(ctx context.Context, class entityClass, sku, name string, createPayload any) *EntityRef {
	cache := r.caches[class]

	if ref, ok := cache.lookup(sku, name); ok {
		return &ref
	}

	if !cache.warmed {
		r.warm(ctx, class)
		if ref, ok := cache.lookup(sku, name); ok {
			return &ref
		}
	}

	if strings.TrimSpace(name) == "" {
		return nil
	}

	r.logger.WithFields(logrus.Fields{
		"entity": string(class),
		"sku":    sku,
		"name":   name,
	}).Info("creating missing entity")

	created, err := r.client.createEntity(ctx, class.listPath(), createPayload)
	if err != nil {
		config.LogError(r.logger, "importer", "resolve", "create "+string(class), name, err)
		return nil
	}

	ref := EntityRef{ID: created.ID, SKU: created.SKU, Name: created.Name}
	if ref.Name == "" {
		ref.Name = name
	}
	cache.insert(ref)
	return &ref
}

// warm performs the single bulk fetch allowed per entity class per run. A
// failed fetch counts as an empty remote set; resolution proceeds to the
// create path.
func (r *Resolver) warm(ctx context.Context, class entityClass) {
	cache := r.caches[class]
	cache.warmed = true

	entities, err := r.client.listEntities(ctx, class.listPath())
	if err != nil {
		config.LogError(r.logger, "importer", "warm", "list "+string(class), nil, err)
		return
	}
	for _, e := range entities {
		cache.insert(EntityRef{ID: e.ID, SKU: strings.TrimSpace(e.SKU), Name: e.Name})
	}
	r.logger.WithFields(logrus.Fields{
		"entity": string(class),
		"count":  len(entities),
	}).Info("loaded entity lookup cache")
}
