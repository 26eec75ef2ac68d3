package catalog

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runLookup(t *testing.T, args string) any {
	t.Helper()
	spec := LookupOrderSpec(NewOrderService(testOrders()), NewProductService(testProducts()))
	result, err := spec.Run(context.Background(), json.RawMessage(args))
	require.NoError(t, err)
	return result
}

func TestLookupOrderToolReturnsOrderWithTracking(t *testing.T) {
	result := runLookup(t, `{"email": "JOHN.DOE@EXAMPLE.COM", "order_number": "w001"}`)

	lookup, ok := result.(LookupOrderResult)
	require.True(t, ok)
	assert.True(t, lookup.Found)
	assert.Equal(t, " John Doe", lookup.CustomerName)
	assert.Equal(t, StatusDelivered, lookup.OrderStatus)
	assert.Equal(t, "TRK123456789", lookup.TrackingNumber)
	assert.Equal(t, "https://tools.usps.com/go/TrackConfirmAction?tLabels=TRK123456789", lookup.TrackingURL)

	require.Len(t, lookup.Products, 2)
	assert.Equal(t, "SOBP001", lookup.Products[0].SKU)
	assert.Equal(t, "Bhavish's Backcountry Blaze Backpack", lookup.Products[0].Name)
}

func TestLookupOrderToolReportsNotFound(t *testing.T) {
	result := runLookup(t, `{"email": "nobody@example.com", "order_number": "#W001"}`)

	failure, ok := result.(lookupOrderError)
	require.True(t, ok)
	assert.Equal(t, "Order not found", failure.Error)
}

func TestLookupOrderToolOmitsTrackingWhenAbsent(t *testing.T) {
	result := runLookup(t, `{"email": "alice.johnson@example.com", "order_number": "#W003"}`)

	lookup, ok := result.(LookupOrderResult)
	require.True(t, ok)
	assert.True(t, lookup.Found)
	assert.Equal(t, StatusFulfilled, lookup.OrderStatus)
	assert.Empty(t, lookup.TrackingNumber)
	assert.Empty(t, lookup.TrackingURL)

	payload, err := json.Marshal(lookup)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"found":true`)
	assert.NotContains(t, string(payload), "tracking_url")
	assert.NotContains(t, string(payload), "tracking_number")
}

func TestLookupOrderToolListsUnknownSKUsLast(t *testing.T) {
	orders := []Order{{
		CustomerName:    "Eve Example",
		Email:           "eve@example.com",
		OrderNumber:     "#W042",
		ProductsOrdered: []string{"SOZZ999", "SOBP001"},
		Status:          StatusInTransit,
	}}
	spec := LookupOrderSpec(NewOrderService(orders), NewProductService(testProducts()))

	result, err := spec.Run(context.Background(), json.RawMessage(`{"email": "eve@example.com", "order_number": "#W042"}`))
	require.NoError(t, err)

	lookup, ok := result.(LookupOrderResult)
	require.True(t, ok)
	require.Len(t, lookup.Products, 2)
	assert.Equal(t, "SOBP001", lookup.Products[0].SKU)
	assert.Equal(t, "SOZZ999", lookup.Products[1].SKU)
	assert.Equal(t, "Product SOZZ999 (not found in catalog)", lookup.Products[1].Name)
}

func TestLookupOrderToolRejectsMalformedArgs(t *testing.T) {
	spec := LookupOrderSpec(NewOrderService(testOrders()), NewProductService(testProducts()))

	_, err := spec.Run(context.Background(), json.RawMessage(`{"email": "a@b.com", "order": "#W001"}`))
	assert.Error(t, err)
}

func TestRecommendProductsTool(t *testing.T) {
	spec := RecommendProductsSpec(NewProductService(testProducts()))

	result, err := spec.Run(context.Background(), json.RawMessage(`{"query": "hiking backpack"}`))
	require.NoError(t, err)

	recs, ok := result.(RecommendProductsResult)
	require.True(t, ok)
	require.NotZero(t, recs.Count)
	assert.Len(t, recs.Recommendations, recs.Count)
	assert.Equal(t, "SOBP001", recs.Recommendations[0].SKU)
	assert.True(t, recs.Recommendations[0].InStock)
	assert.NotEmpty(t, recs.Recommendations[0].Tags)
}

func TestRecommendProductsToolMarksOutOfStock(t *testing.T) {
	spec := RecommendProductsSpec(NewProductService(testProducts()))

	result, err := spec.Run(context.Background(), json.RawMessage(`{"query": "lantern"}`))
	require.NoError(t, err)

	recs, ok := result.(RecommendProductsResult)
	require.True(t, ok)
	require.NotZero(t, recs.Count)

	var lantern *Recommendation
	for i := range recs.Recommendations {
		if recs.Recommendations[i].SKU == "SOLT010" {
			lantern = &recs.Recommendations[i]
		}
	}
	require.NotNil(t, lantern)
	assert.False(t, lantern.InStock)
}

func TestRecommendProductsToolFallsBack(t *testing.T) {
	svc := NewProductService(testProducts())
	spec := RecommendProductsSpec(svc)

	result, err := spec.Run(context.Background(), json.RawMessage(`{"query": "xyzzy"}`))
	require.NoError(t, err)

	recs, ok := result.(RecommendProductsResult)
	require.True(t, ok)
	assert.Equal(t, min(MaxRecommendations, svc.Len()), recs.Count)
}
