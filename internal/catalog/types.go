// Package catalog stores the Sierra Outfitters order and product data
// in SQLite and exposes the lookup services the agent tools are built
// on. Seed data ships as JSON files; Store ingests them once at startup
// and the services treat the catalog as read-only afterwards.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

const trackingURLBase = "https://tools.usps.com/go/TrackConfirmAction?tLabels="

// Order mirrors one record of data/orders.json. Field names match the
// seed file keys exactly.
type Order struct {
	CustomerName    string   `json:"CustomerName"`
	Email           string   `json:"Email"`
	OrderNumber     string   `json:"OrderNumber"`
	ProductsOrdered []string `json:"ProductsOrdered"`
	Status          string   `json:"Status"`
	TrackingNumber  *string  `json:"TrackingNumber"`
}

// HasTracking reports whether a tracking number has been assigned.
func (o Order) HasTracking() bool {
	return o.TrackingNumber != nil && *o.TrackingNumber != ""
}

// TrackingURL returns the USPS tracking link, or "" without tracking.
func (o Order) TrackingURL() string {
	if !o.HasTracking() {
		return ""
	}
	return trackingURLBase + *o.TrackingNumber
}

// Product mirrors one record of data/products.json.
type Product struct {
	ProductName string   `json:"ProductName"`
	SKU         string   `json:"SKU"`
	Inventory   int      `json:"Inventory"`
	Description string   `json:"Description"`
	Tags        []string `json:"Tags"`
}

// InStock reports whether any inventory remains.
func (p Product) InStock() bool {
	return p.Inventory > 0
}

// searchText is the haystack for keyword matching.
func (p Product) searchText() string {
	return strings.ToLower(p.ProductName + " " + p.Description + " " + strings.Join(p.Tags, " "))
}

// LoadOrders reads an orders seed file.
func LoadOrders(path string) ([]Order, error) {
	var orders []Order
	if err := loadJSON(path, &orders); err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	return orders, nil
}

// LoadProducts reads a products seed file.
func LoadProducts(path string) ([]Product, error) {
	var products []Product
	if err := loadJSON(path, &products); err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	return products, nil
}

func loadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
