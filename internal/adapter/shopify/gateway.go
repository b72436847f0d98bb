package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"pricewave/internal/core/domain"
	"pricewave/internal/core/port"
)

// Retry policy for mutations: only throttling is retried, with exponential
// backoff (1s, 2s, 4s). API-reported business errors fail fast so real
// data problems are never masked as transient ones.
const (
	maxRetries     = 3
	baseRetryDelay = time.Second
)

const maxRetriesMsg = "Shopify API throttled: max retries reached"

// Gateway implements port.CatalogGateway on top of the Admin GraphQL API.
// Pagination is resolved internally; callers receive completed lists.
type Gateway struct {
	api    graphQLClient
	logger *slog.Logger
	sleep  func(time.Duration)
}

// NewGateway creates a Gateway using the given client.
func NewGateway(client *Client, logger *slog.Logger) *Gateway {
	return &Gateway{api: client, logger: logger, sleep: time.Sleep}
}

type pageInfo struct {
	HasNextPage bool    `json:"hasNextPage"`
	EndCursor   *string `json:"endCursor"`
}

type variantEdge struct {
	Node struct {
		ID    string `json:"id"`
		Title string `json:"title"`
		Price string `json:"price"`
	} `json:"node"`
}

type productNode struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Variants struct {
		Edges []variantEdge `json:"edges"`
	} `json:"variants"`
}

type productConnection struct {
	Edges []struct {
		Node productNode `json:"node"`
	} `json:"edges"`
	PageInfo pageInfo `json:"pageInfo"`
}

// FetchTargets resolves the filter into a completed product list. The
// legacy collection-id field is honoured as a fallback; an empty filter
// falls back to the whole catalog.
func (g *Gateway) FetchTargets(ctx context.Context, shop string, filter domain.TargetFilter) ([]domain.Product, error) {
	switch {
	case filter.Type == domain.FilterAll,
		filter.CollectionID == "" && filter.Value == "":
		return g.fetchAllProducts(ctx, shop)
	case filter.Type == domain.FilterCollection && filter.CollectionID != "":
		return g.fetchProductsByCollection(ctx, shop, filter.CollectionID)
	case filter.Value != "":
		return g.fetchProductsByQuery(ctx, shop, filter.Type, filter.Value)
	default:
		return g.fetchAllProducts(ctx, shop)
	}
}

func (g *Gateway) fetchAllProducts(ctx context.Context, shop string) ([]domain.Product, error) {
	return g.paginateProducts(ctx, shop, allProductsQuery, nil, func(data json.RawMessage) (*productConnection, error) {
		var payload struct {
			Products productConnection `json:"products"`
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		return &payload.Products, nil
	})
}

func (g *Gateway) fetchProductsByCollection(ctx context.Context, shop, collectionID string) ([]domain.Product, error) {
	vars := map[string]any{"collectionId": collectionID}
	return g.paginateProducts(ctx, shop, productsByCollectionQuery, vars, func(data json.RawMessage) (*productConnection, error) {
		var payload struct {
			Collection *struct {
				Products productConnection `json:"products"`
			} `json:"collection"`
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		if payload.Collection == nil {
			return &productConnection{}, nil
		}
		return &payload.Collection.Products, nil
	})
}

func (g *Gateway) fetchProductsByQuery(ctx context.Context, shop string, ft domain.FilterType, value string) ([]domain.Product, error) {
	var queryString string
	switch ft {
	case domain.FilterVendor:
		queryString = fmt.Sprintf("vendor:'%s'", value)
	case domain.FilterProductType:
		queryString = fmt.Sprintf("product_type:'%s'", value)
	case domain.FilterTag:
		queryString = fmt.Sprintf("tag:'%s'", value)
	default:
		return []domain.Product{}, nil
	}

	vars := map[string]any{"query": queryString}
	return g.paginateProducts(ctx, shop, productsByQueryQuery, vars, func(data json.RawMessage) (*productConnection, error) {
		var payload struct {
			Products productConnection `json:"products"`
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		return &payload.Products, nil
	})
}

func (g *Gateway) paginateProducts(ctx context.Context, shop, query string, baseVars map[string]any, extract func(json.RawMessage) (*productConnection, error)) ([]domain.Product, error) {
	products := make([]domain.Product, 0)
	var cursor *string
	for {
		vars := map[string]any{"cursor": cursor}
		for k, v := range baseVars {
			vars[k] = v
		}
		resp, err := g.api.Do(ctx, shop, query, vars)
		if err != nil {
			return nil, err
		}
		if len(resp.Errors) > 0 {
			return nil, fmt.Errorf("fetch products: %s", resp.Errors[0].Message)
		}
		conn, err := extract(resp.Data)
		if err != nil {
			return nil, err
		}
		for _, edge := range conn.Edges {
			p := domain.Product{ID: edge.Node.ID, Title: edge.Node.Title}
			for _, ve := range edge.Node.Variants.Edges {
				p.Variants = append(p.Variants, domain.Variant{
					ID:    ve.Node.ID,
					Title: ve.Node.Title,
					Price: ve.Node.Price,
				})
			}
			products = append(products, p)
		}
		if !conn.PageInfo.HasNextPage || conn.PageInfo.EndCursor == nil {
			return products, nil
		}
		cursor = conn.PageInfo.EndCursor
	}
}

// Mutate bulk-updates the variants of one product. Throttling, whether an
// HTTP 429 or a THROTTLED error embedded in a 200 response, is retried up
// to 3 attempts total; any other API-reported error returns immediately.
func (g *Gateway) Mutate(ctx context.Context, shop string, productID string, items []port.MutateItem) port.MutateResult {
	variants := make([]map[string]any, 0, len(items))
	for _, item := range items {
		v := map[string]any{"id": item.VariantID, "price": item.Price}
		switch {
		case item.ClearCompareAt:
			v["compareAtPrice"] = nil
		case item.CompareAtPrice != nil:
			v["compareAtPrice"] = *item.CompareAtPrice
		}
		variants = append(variants, v)
	}
	vars := map[string]any{"productId": productID, "variants": variants}

	for attempt := 0; attempt < maxRetries; attempt++ {
		resp, err := g.api.Do(ctx, shop, bulkUpdateVariantsMutation, vars)
		if err != nil {
			if !errors.Is(err, errThrottled) {
				return port.MutateResult{Errors: []string{err.Error()}}
			}
			if attempt < maxRetries-1 {
				g.backoff(attempt, shop, productID)
				continue
			}
			return port.MutateResult{Errors: []string{maxRetriesMsg}}
		}

		if resp.Throttled() {
			if attempt < maxRetries-1 {
				g.backoff(attempt, shop, productID)
				continue
			}
			return port.MutateResult{Errors: []string{maxRetriesMsg}}
		}

		var payload struct {
			ProductVariantsBulkUpdate *struct {
				UserErrors []struct {
					Message string `json:"message"`
				} `json:"userErrors"`
			} `json:"productVariantsBulkUpdate"`
		}
		if uerr := json.Unmarshal(resp.Data, &payload); uerr != nil || payload.ProductVariantsBulkUpdate == nil {
			return port.MutateResult{Errors: []string{"No response data"}}
		}
		if len(payload.ProductVariantsBulkUpdate.UserErrors) > 0 {
			msgs := make([]string, 0, len(payload.ProductVariantsBulkUpdate.UserErrors))
			for _, ue := range payload.ProductVariantsBulkUpdate.UserErrors {
				msgs = append(msgs, ue.Message)
			}
			return port.MutateResult{Errors: msgs}
		}
		return port.MutateResult{Success: true}
	}

	return port.MutateResult{Errors: []string{"Max retries exceeded"}}
}

func (g *Gateway) backoff(attempt int, shop, productID string) {
	delay := baseRetryDelay << attempt
	g.logger.Warn("throttled, backing off",
		slog.String("shop", shop),
		slog.String("product_id", productID),
		slog.Duration("delay", delay),
		slog.Int("attempt", attempt+1),
	)
	g.sleep(delay)
}

// Collections lists all collections of the shop.
func (g *Gateway) Collections(ctx context.Context, shop string) ([]domain.Collection, error) {
	collections := make([]domain.Collection, 0)
	var cursor *string
	for {
		resp, err := g.api.Do(ctx, shop, collectionsQuery, map[string]any{"cursor": cursor})
		if err != nil {
			return nil, err
		}
		var payload struct {
			Collections struct {
				Edges []struct {
					Node domain.Collection `json:"node"`
				} `json:"edges"`
				PageInfo pageInfo `json:"pageInfo"`
			} `json:"collections"`
		}
		if err = json.Unmarshal(resp.Data, &payload); err != nil {
			return nil, err
		}
		for _, edge := range payload.Collections.Edges {
			collections = append(collections, edge.Node)
		}
		if !payload.Collections.PageInfo.HasNextPage || payload.Collections.PageInfo.EndCursor == nil {
			return collections, nil
		}
		cursor = payload.Collections.PageInfo.EndCursor
	}
}

// Vendors lists distinct product vendors, sorted.
func (g *Gateway) Vendors(ctx context.Context, shop string) ([]string, error) {
	vendors, _, err := g.fetchVendorsAndTypes(ctx, shop)
	return vendors, err
}

// ProductTypes lists distinct product types, sorted.
func (g *Gateway) ProductTypes(ctx context.Context, shop string) ([]string, error) {
	_, types, err := g.fetchVendorsAndTypes(ctx, shop)
	return types, err
}

func (g *Gateway) fetchVendorsAndTypes(ctx context.Context, shop string) ([]string, []string, error) {
	resp, err := g.api.Do(ctx, shop, vendorsAndTypesQuery, nil)
	if err != nil {
		return nil, nil, err
	}
	var payload struct {
		Shop struct {
			ProductVendors struct {
				Edges []struct {
					Node string `json:"node"`
				} `json:"edges"`
			} `json:"productVendors"`
			ProductTypes struct {
				Edges []struct {
					Node string `json:"node"`
				} `json:"edges"`
			} `json:"productTypes"`
		} `json:"shop"`
	}
	if err = json.Unmarshal(resp.Data, &payload); err != nil {
		return nil, nil, err
	}

	collect := func(edges []struct {
		Node string `json:"node"`
	}) []string {
		out := make([]string, 0, len(edges))
		for _, e := range edges {
			if e.Node != "" {
				out = append(out, e.Node)
			}
		}
		sort.Strings(out)
		return out
	}
	return collect(payload.Shop.ProductVendors.Edges), collect(payload.Shop.ProductTypes.Edges), nil
}
