package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricewave/internal/core/domain"
	"pricewave/internal/core/port"
)

// scriptedAPI replays canned responses and records every call.
type scriptedAPI struct {
	responses []func() (*Response, error)
	calls     int
	variables []map[string]any
}

func (s *scriptedAPI) Do(ctx context.Context, shop, query string, variables map[string]any) (*Response, error) {
	idx := s.calls
	s.calls++
	s.variables = append(s.variables, variables)
	if idx >= len(s.responses) {
		return nil, fmt.Errorf("unexpected call %d", idx)
	}
	return s.responses[idx]()
}

func newTestGateway(api *scriptedAPI) (*Gateway, *[]time.Duration) {
	var slept []time.Duration
	g := &Gateway{
		api:    api,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		sleep:  func(d time.Duration) { slept = append(slept, d) },
	}
	return g, &slept
}

func okMutation() (*Response, error) {
	return &Response{Data: json.RawMessage(`{"productVariantsBulkUpdate":{"userErrors":[]}}`)}, nil
}

func throttledResponse() (*Response, error) {
	r := &Response{Data: json.RawMessage(`{}`)}
	r.Errors = []ResponseError{{Message: "Throttled"}}
	r.Errors[0].Extensions.Code = "THROTTLED"
	return r, nil
}

func TestMutateRetriesThrottlingThenSucceeds(t *testing.T) {
	api := &scriptedAPI{responses: []func() (*Response, error){
		throttledResponse,
		throttledResponse,
		okMutation,
	}}
	g, slept := newTestGateway(api)

	res := g.Mutate(context.Background(), "demo.myshopify.com", "p1", []port.MutateItem{{VariantID: "v1", Price: "9.99"}})
	assert.True(t, res.Success)
	assert.Empty(t, res.Errors)
	assert.Equal(t, 3, api.calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *slept)
}

func TestMutateExhaustsRetriesOnPersistentThrottling(t *testing.T) {
	api := &scriptedAPI{responses: []func() (*Response, error){
		throttledResponse,
		throttledResponse,
		throttledResponse,
		okMutation, // must never be reached
	}}
	g, slept := newTestGateway(api)

	res := g.Mutate(context.Background(), "demo.myshopify.com", "p1", []port.MutateItem{{VariantID: "v1", Price: "9.99"}})
	assert.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "max retries")
	assert.Equal(t, 3, api.calls, "never more than 3 attempts total")
	assert.Len(t, *slept, 2, "no pause after the final attempt")
}

func TestMutateRetriesHTTP429(t *testing.T) {
	api := &scriptedAPI{responses: []func() (*Response, error){
		func() (*Response, error) { return nil, fmt.Errorf("demo: %w", errThrottled) },
		okMutation,
	}}
	g, _ := newTestGateway(api)

	res := g.Mutate(context.Background(), "demo.myshopify.com", "p1", nil)
	assert.True(t, res.Success)
	assert.Equal(t, 2, api.calls)
}

func TestMutateBusinessErrorFailsFast(t *testing.T) {
	api := &scriptedAPI{responses: []func() (*Response, error){
		func() (*Response, error) {
			return &Response{Data: json.RawMessage(`{"productVariantsBulkUpdate":{"userErrors":[{"field":"price","message":"Price must be positive"}]}}`)}, nil
		},
	}}
	g, slept := newTestGateway(api)

	res := g.Mutate(context.Background(), "demo.myshopify.com", "p1", nil)
	assert.False(t, res.Success)
	assert.Equal(t, []string{"Price must be positive"}, res.Errors)
	assert.Equal(t, 1, api.calls, "validation errors are never retried")
	assert.Empty(t, *slept)
}

func TestMutateTransportErrorFailsFast(t *testing.T) {
	api := &scriptedAPI{responses: []func() (*Response, error){
		func() (*Response, error) { return nil, fmt.Errorf("connection refused") },
	}}
	g, _ := newTestGateway(api)

	res := g.Mutate(context.Background(), "demo.myshopify.com", "p1", nil)
	assert.False(t, res.Success)
	assert.Equal(t, 1, api.calls)
}

func TestMutateSerialisesCompareAt(t *testing.T) {
	api := &scriptedAPI{responses: []func() (*Response, error){okMutation}}
	g, _ := newTestGateway(api)

	compareAt := "29.99"
	g.Mutate(context.Background(), "demo.myshopify.com", "p1", []port.MutateItem{
		{VariantID: "v1", Price: "19.99", CompareAtPrice: &compareAt},
		{VariantID: "v2", Price: "9.99", ClearCompareAt: true},
		{VariantID: "v3", Price: "4.99"},
	})

	variants := api.variables[0]["variants"].([]map[string]any)
	require.Len(t, variants, 3)
	assert.Equal(t, "29.99", variants[0]["compareAtPrice"])
	val, present := variants[1]["compareAtPrice"]
	assert.True(t, present)
	assert.Nil(t, val, "clearing sends an explicit null")
	_, present = variants[2]["compareAtPrice"]
	assert.False(t, present)
}

func productsPage(ids []string, next bool, cursor string) func() (*Response, error) {
	return func() (*Response, error) {
		edges := ""
		for i, id := range ids {
			if i > 0 {
				edges += ","
			}
			edges += fmt.Sprintf(`{"node":{"id":"%s","title":"P %s","variants":{"edges":[{"node":{"id":"%s-v","title":"Default","price":"10.00"}}]}}}`, id, id, id)
		}
		data := fmt.Sprintf(`{"products":{"edges":[%s],"pageInfo":{"hasNextPage":%t,"endCursor":"%s"}}}`, edges, next, cursor)
		return &Response{Data: json.RawMessage(data)}, nil
	}
}

func TestFetchTargetsPaginatesAll(t *testing.T) {
	api := &scriptedAPI{responses: []func() (*Response, error){
		productsPage([]string{"p1", "p2"}, true, "cur1"),
		productsPage([]string{"p3"}, false, ""),
	}}
	g, _ := newTestGateway(api)

	products, err := g.FetchTargets(context.Background(), "demo.myshopify.com", domain.TargetFilter{Type: domain.FilterAll})
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, "p3", products[2].ID)
	assert.Equal(t, "10.00", products[0].Variants[0].Price)
	assert.Equal(t, 2, api.calls)
}

func TestFetchTargetsVendorQuery(t *testing.T) {
	api := &scriptedAPI{responses: []func() (*Response, error){
		productsPage([]string{"p1"}, false, ""),
	}}
	g, _ := newTestGateway(api)

	_, err := g.FetchTargets(context.Background(), "demo.myshopify.com", domain.TargetFilter{
		Type: domain.FilterVendor, Value: "Acme",
	})
	require.NoError(t, err)
	assert.Equal(t, "vendor:'Acme'", api.variables[0]["query"])
}

func TestBillingDetectsActiveSubscription(t *testing.T) {
	active := &scriptedAPI{responses: []func() (*Response, error){
		func() (*Response, error) {
			return &Response{Data: json.RawMessage(`{"appInstallation":{"activeSubscriptions":[{"status":"CANCELLED"},{"status":"ACTIVE"}]}}`)}, nil
		},
	}}
	b := &Billing{api: active}
	ok, err := b.HasActiveSubscription(context.Background(), "demo.myshopify.com")
	require.NoError(t, err)
	assert.True(t, ok)

	none := &scriptedAPI{responses: []func() (*Response, error){
		func() (*Response, error) {
			return &Response{Data: json.RawMessage(`{"appInstallation":{"activeSubscriptions":[]}}`)}, nil
		},
	}}
	b = &Billing{api: none}
	ok, err = b.HasActiveSubscription(context.Background(), "demo.myshopify.com")
	require.NoError(t, err)
	assert.False(t, ok)
}
