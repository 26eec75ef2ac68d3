package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sierra-outfitters/sierra-agent/internal/tools"
)

const orderNotFoundMessage = "Order not found"

// LookupOrderArgs are the arguments for the lookup_order tool.
type LookupOrderArgs struct {
	Email       string `json:"email" jsonschema_description:"Customer's email address"`
	OrderNumber string `json:"order_number" jsonschema_description:"Order number (with # prefix, like #W001)"`
}

// OrderLine pairs an ordered SKU with its resolved catalog name.
type OrderLine struct {
	SKU  string `json:"sku"`
	Name string `json:"name"`
}

// LookupOrderResult is the payload returned to the model for a found
// order. Tracking fields appear only when the order has a tracking
// number.
type LookupOrderResult struct {
	Found          bool        `json:"found"`
	CustomerName   string      `json:"customer_name"`
	OrderStatus    string      `json:"order_status"`
	Products       []OrderLine `json:"products"`
	TrackingURL    string      `json:"tracking_url,omitempty"`
	TrackingNumber string      `json:"tracking_number,omitempty"`
}

type lookupOrderError struct {
	Error string `json:"error"`
}

// LookupOrderSpec binds the lookup_order tool to the order and product
// services.
func LookupOrderSpec(orders *OrderService, products *ProductService) tools.Spec {
	return tools.Spec{
		Name:        "lookup_order",
		Description: "Look up customer order status and tracking information using email and order number.",
		Parameters:  tools.GenerateSchema[LookupOrderArgs](),
		Run: func(_ context.Context, raw json.RawMessage) (any, error) {
			var args LookupOrderArgs
			if err := tools.UnmarshalArgs(raw, &args); err != nil {
				return nil, err
			}

			order, ok := orders.Lookup(args.Email, args.OrderNumber)
			if !ok {
				return lookupOrderError{Error: orderNotFoundMessage}, nil
			}

			// Resolved lines first, SKUs missing from the catalog after.
			lines := make([]OrderLine, 0, len(order.ProductsOrdered))
			var missing []string
			for _, sku := range order.ProductsOrdered {
				p, found := products.BySKU(sku)
				if !found {
					missing = append(missing, sku)
					continue
				}
				lines = append(lines, OrderLine{SKU: sku, Name: p.ProductName})
			}
			for _, sku := range missing {
				lines = append(lines, OrderLine{
					SKU:  sku,
					Name: fmt.Sprintf("Product %s (not found in catalog)", sku),
				})
			}

			result := LookupOrderResult{
				Found:        true,
				CustomerName: order.CustomerName,
				OrderStatus:  order.Status,
				Products:     lines,
			}
			if order.HasTracking() {
				result.TrackingURL = order.TrackingURL()
				result.TrackingNumber = *order.TrackingNumber
			}
			return result, nil
		},
	}
}

// RecommendProductsArgs are the arguments for the recommend_products
// tool.
type RecommendProductsArgs struct {
	Query string `json:"query" jsonschema_description:"Search query describing what the customer is looking for (e.g., 'hiking backpack', 'cold weather gear', 'waterproof jacket'). Include multiple keywords or terms if searching broadly."`
}

// Recommendation is one product entry in the tool response.
type Recommendation struct {
	Name        string   `json:"name"`
	SKU         string   `json:"sku"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	InStock     bool     `json:"in_stock"`
}

// RecommendProductsResult lists catalog matches for a query.
type RecommendProductsResult struct {
	Recommendations []Recommendation `json:"recommendations"`
	Count           int              `json:"count"`
}

// RecommendProductsSpec binds the recommend_products tool to the
// product service.
func RecommendProductsSpec(products *ProductService) tools.Spec {
	return tools.Spec{
		Name: "recommend_products",
		Description: fmt.Sprintf(
			"Search for and recommend various products based on any and all customer needs and interests. Returns up to %d product recommendations.",
			MaxRecommendations),
		Parameters: tools.GenerateSchema[RecommendProductsArgs](),
		Run: func(_ context.Context, raw json.RawMessage) (any, error) {
			var args RecommendProductsArgs
			if err := tools.UnmarshalArgs(raw, &args); err != nil {
				return nil, err
			}

			matches := products.Search(args.Query)
			recs := make([]Recommendation, 0, len(matches))
			for _, p := range matches {
				recs = append(recs, Recommendation{
					Name:        p.ProductName,
					SKU:         p.SKU,
					Description: p.Description,
					Tags:        p.Tags,
					InStock:     p.InStock(),
				})
			}
			return RecommendProductsResult{Recommendations: recs, Count: len(recs)}, nil
		},
	}
}
