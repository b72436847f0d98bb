package port

import (
	"context"

	"pricewave/internal/core/domain"
)

// CatalogGateway is the outbound port to the external store catalog. It
// resolves target products for a filter (pagination handled internally,
// completed lists returned) and applies price mutations per product with
// throttle-aware retry.
type CatalogGateway interface {
	// FetchTargets returns the products, with variants, matching the filter.
	FetchTargets(ctx context.Context, shop string, filter domain.TargetFilter) ([]domain.Product, error)
	// Mutate updates the given variants of one product. Transport-level and
	// API-level failures are folded into the result; throttling is retried
	// internally before being reported as a failure.
	Mutate(ctx context.Context, shop string, productID string, items []MutateItem) MutateResult

	// Filter option listings for building target specifications.
	Collections(ctx context.Context, shop string) ([]domain.Collection, error)
	Vendors(ctx context.Context, shop string) ([]string, error)
	ProductTypes(ctx context.Context, shop string) ([]string, error)
}

// MutateItem is one variant-level price change inside a Mutate call.
// CompareAtPrice is written when non-nil; ClearCompareAt explicitly nulls
// the compare-at field (used when reverting a campaign that stamped it).
type MutateItem struct {
	VariantID      string
	Price          string
	CompareAtPrice *string
	ClearCompareAt bool
}

// MutateResult reports the outcome of one Mutate call.
type MutateResult struct {
	Success bool
	Errors  []string
}

// BillingGate is the subscription-status oracle consulted before running a
// scheduled campaign.
type BillingGate interface {
	HasActiveSubscription(ctx context.Context, shop string) (bool, error)
}
